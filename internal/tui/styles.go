package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pbutterworth/gochlorinator/internal/version"
)

// Application branding constants
const (
	AppName   = "CHLORINATOR DASHBOARD"
	GitHubURL = "github.com/pbutterworth/gochlorinator"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#00B7C3") // Teal
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor   = lipgloss.Color("#FFFFFF") // White
	SubtleColor = lipgloss.Color("#626262") // Gray
	BorderColor = lipgloss.Color("#00B7C3") // Teal (same as primary)
)

// Common styles
var (
	// Title style for section headers
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	// Label style for field names
	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(24)

	// Value style for field values
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// Good/OK value style
	OkStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	// Warning value style
	WarnStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	// Error message style
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// Help text style
	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// Section box style
	SectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1).
			MarginRight(1)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

// BuildHeaderContent creates header content with app name and version
func BuildHeaderContent(device string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(device)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderSection renders a titled field box.
func RenderSection(title string, rows []string) string {
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return SectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(title), body))
}
