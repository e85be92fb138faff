package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/client"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/config"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/files"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/ui"
)

var (
	flagServer string
	flagName   string
	flagMobile bool
	flagText   string
	flagLink   string
)

var sendCmd = &cobra.Command{
	Use:   "send [files...]",
	Short: "Create a room and send files or text to the device that joins",
	Long: `Create a room, print its code, and wait for a peer to join with it.
Once the peer is in, the given files and/or text are relayed to it.

Examples:
  winddrop send file1.txt file2.pdf
  winddrop send --text "meet at 6"
  winddrop send --link https://example.com report.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && flagText == "" && flagLink == "" {
			return fmt.Errorf("nothing to send: specify files, --text, or --link")
		}
		return runSend(args)
	},
}

func runSend(filePaths []string) error {
	var fileInfos []files.FileInfo
	if len(filePaths) > 0 {
		infos, err := files.ValidateFiles(filePaths)
		if err != nil {
			return err
		}
		fileInfos = infos
		displayFileTable(fileInfos)
	}

	cfg, err := config.Load(config.Options{ServerAddr: flagServer})
	if err != nil {
		return err
	}

	c, err := client.Dial(cfg.WebSocketURL(), clientOptions(cfg))
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	created, err := c.CreateRoom(ctx)
	if err != nil {
		return err
	}

	ui.PrintTitle("Room ready. Share this code with the receiving device:")
	ui.PrintRoomCode(protocol.FormatRoomCode(created.Code))
	ui.PrintMuted("Waiting for a device to join...")

	peer, err := waitForPeer(c)
	if err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("%s joined", peer.Name))

	if flagText != "" {
		if _, err := c.SendText(flagText, peer.ID); err != nil {
			return err
		}
		ui.PrintSuccess("text sent")
	}
	if flagLink != "" {
		if _, err := c.SendLink(flagLink, peer.ID); err != nil {
			return err
		}
		ui.PrintSuccess("link sent")
	}

	for _, info := range fileInfos {
		if err := sendOneFile(ctx, c, info, peer.ID); err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("%s sent (%s)", info.Name, files.FormatSize(info.Size)))
	}

	return c.LeaveRoom(ctx)
}

func sendOneFile(ctx context.Context, c *client.Client, info files.FileInfo, receiverID string) error {
	f, err := os.Open(info.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = c.SendFile(ctx, f, info.Name, info.Type, info.Size, receiverID)
	return err
}

// waitForPeer blocks until a second device is in the room and returns
// it.
func waitForPeer(c *client.Client) (protocol.Device, error) {
	for {
		select {
		case ev := <-c.Events():
			if ev.Type != client.EventRoomUpdated {
				continue
			}
			for _, d := range ev.Room.Devices {
				if d.ID != c.Device().ID {
					return d, nil
				}
			}
		case <-c.Done():
			return protocol.Device{}, fmt.Errorf("connection closed while waiting for peer")
		}
	}
}

func clientOptions(cfg *config.Config) client.Options {
	kind := protocol.DeviceDesktop
	if flagMobile {
		kind = protocol.DeviceMobile
	}
	return client.Options{
		DeviceName: flagName,
		DeviceKind: kind,
		AckTimeout: cfg.AckTimeout,
		MaxRetries: cfg.MaxRetries,
	}
}

func displayFileTable(infos []files.FileInfo) {
	items := make([]ui.FileTableItem, len(infos))
	for i, f := range infos {
		items[i] = ui.FileTableItem{Index: i + 1, Name: f.Name, Size: f.Size, Type: f.Type}
	}
	fmt.Println(ui.RenderFileTable(items))
}

func init() {
	sendCmd.Flags().StringVar(&flagServer, "server", "", "relay server host:port")
	sendCmd.Flags().StringVar(&flagName, "name", "", "device name shown to the peer")
	sendCmd.Flags().BoolVar(&flagMobile, "mobile", false, "use the mobile chunk size tier")
	sendCmd.Flags().StringVar(&flagText, "text", "", "text to send once the peer joins")
	sendCmd.Flags().StringVar(&flagLink, "link", "", "link to send once the peer joins")
	rootCmd.AddCommand(sendCmd)
}
