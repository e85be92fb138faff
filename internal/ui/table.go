package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/files"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
)

// FileTableItem represents one file row.
type FileTableItem struct {
	Index int
	Name  string
	Size  int64
	Type  string
}

// RenderFileTable renders the files about to be sent.
func RenderFileTable(items []FileTableItem) string {
	if len(items) == 0 {
		return MutedStyle.Render("No files")
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.Index),
			truncate(item.Name, 50),
			files.FormatSize(item.Size),
			truncate(item.Type, 20),
		})
	}

	return render([]string{"#", "Name", "Size", "Type"}, rows)
}

// RenderDeviceTable renders current room membership.
func RenderDeviceTable(devices []protocol.Device) string {
	if len(devices) == 0 {
		return MutedStyle.Render("No devices")
	}

	rows := make([][]string, 0, len(devices))
	for i, d := range devices {
		role := ""
		if d.IsHost {
			role = "host"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			truncate(d.Name, 30),
			string(d.Kind),
			role,
		})
	}

	return render([]string{"#", "Device", "Kind", "Role"}, rows)
}

func render(headers []string, rows [][]string) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...).
		Rows(rows...)
	return tbl.Render()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
