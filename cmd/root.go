package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/logging"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "winddrop",
	Short: "Pair two devices with a room code and exchange text, links, and files",
	Long: `Winddrop connects exactly two devices through a short room code and
relays ephemeral text, links, and files between them over a persistent
connection. Nothing is stored: the relay forwards payloads and forgets
them, and all transfer state dies with the room.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() {
	logging.Init()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
