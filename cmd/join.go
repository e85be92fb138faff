package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/client"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/config"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/files"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/ui"
)

var flagOutputDir string

var joinCmd = &cobra.Command{
	Use:   "join <code>",
	Short: "Join a room by code and receive whatever the peer sends",
	Long: `Join the room with the given 6-character code and stay connected,
printing received text and links and writing received files to disk,
until the peer leaves or the connection drops.

Examples:
  winddrop join ABC123
  winddrop join abc123 --output ~/Downloads`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJoin(strings.ToUpper(strings.ReplaceAll(args[0], " ", "")))
	},
}

func runJoin(code string) error {
	cfg, err := config.Load(config.Options{ServerAddr: flagServer})
	if err != nil {
		return err
	}

	c, err := client.Dial(cfg.WebSocketURL(), clientOptions(cfg))
	if err != nil {
		return err
	}
	defer c.Close()

	joined, err := c.JoinRoom(context.Background(), code)
	if err != nil {
		return err
	}

	ui.PrintSuccess("joined room " + protocol.FormatRoomCode(joined.Code))
	fmt.Println(ui.RenderDeviceTable(joined.Devices))

	return receiveLoop(c)
}

// receiveLoop handles inbound events until the room dissolves or the
// connection drops.
func receiveLoop(c *client.Client) error {
	for {
		select {
		case ev := <-c.Events():
			switch ev.Type {
			case client.EventRoomUpdated:
				fmt.Println(ui.RenderDeviceTable(ev.Room.Devices))

			case client.EventRoomLeft:
				ui.PrintMuted("room closed")
				return nil

			case client.EventTransferReceived:
				printIncoming(ev.Transfer)

			case client.EventTransferComplete:
				if err := writeReceivedFile(c, ev.TransferID); err != nil {
					ui.PrintError(err.Error())
				}

			case client.EventTransferFailed:
				ui.PrintError(fmt.Sprintf("transfer failed: %v", ev.Err))
			}

		case <-c.Done():
			return nil
		}
	}
}

func printIncoming(t protocol.Transfer) {
	switch t.Kind {
	case protocol.TransferText:
		ui.PrintTitle("text received:")
		fmt.Println(t.Content)
	case protocol.TransferLink:
		ui.PrintTitle("link received:")
		fmt.Println(t.Content)
	case protocol.TransferFile:
		ui.PrintMuted(fmt.Sprintf("receiving %s (%s)...", t.FileName, files.FormatSize(t.FileSize)))
	}
}

func writeReceivedFile(c *client.Client, transferID string) error {
	assembled, ok := c.TakeFile(transferID)
	if !ok {
		return nil
	}

	name := assembled.Transfer.FileName
	if flagOutputDir != "" {
		if err := os.MkdirAll(flagOutputDir, 0755); err != nil {
			return err
		}
		name = filepath.Join(flagOutputDir, name)
	}
	name = files.UniqueFilename(name)

	if err := os.WriteFile(name, assembled.Data, 0644); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("saved %s (%s)", name, files.FormatSize(int64(len(assembled.Data)))))
	return nil
}

func init() {
	joinCmd.Flags().StringVar(&flagServer, "server", "", "relay server host:port")
	joinCmd.Flags().StringVarP(&flagOutputDir, "output", "o", "", "directory to write received files to")
	rootCmd.AddCommand(joinCmd)
}
