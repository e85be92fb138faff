package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Primary = lipgloss.Color("#38bdf8") // sky
	Success = lipgloss.Color("#10B981") // emerald
	Warning = lipgloss.Color("#F59E0B") // amber
	Error   = lipgloss.Color("#EF4444") // red
	Muted   = lipgloss.Color("#6B7280") // gray
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	CodeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)
)

func PrintTitle(msg string) {
	fmt.Println(TitleStyle.Render(msg))
}

func PrintSuccess(msg string) {
	fmt.Println(SuccessStyle.Render("✓ " + msg))
}

func PrintError(msg string) {
	fmt.Println(ErrorStyle.Render("✗ " + msg))
}

func PrintWarning(msg string) {
	fmt.Println(WarningStyle.Render("! " + msg))
}

func PrintMuted(msg string) {
	fmt.Println(MutedStyle.Render(msg))
}

// PrintRoomCode renders the room code in a bordered box, spaced for
// readability.
func PrintRoomCode(code string) {
	fmt.Println(CodeStyle.Render(code))
}
