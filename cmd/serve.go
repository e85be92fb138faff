package cmd

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/config"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/relay"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/room"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/server"
)

var flagPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay server",
	Long: `Run the relay server that pairs devices by room code and forwards
transfers between them. Rooms, sessions, and in-flight chunks live in
memory only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Options{Port: flagPort})
		if err != nil {
			return err
		}

		hub := relay.NewHub(room.NewRegistry(cfg.RoomCapacity), slog.Default())
		go hub.Run(context.Background())

		addr := ":" + cfg.Port
		slog.Info("starting relay server", "addr", addr)
		return http.ListenAndServe(addr, server.Routes(hub))
	},
}

func init() {
	serveCmd.Flags().StringVarP(&flagPort, "port", "p", "", "listen port (default 3000)")
	rootCmd.AddCommand(serveCmd)
}
