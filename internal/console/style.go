package console

import "github.com/charmbracelet/lipgloss"

var (
	cyan    = lipgloss.Color("#00E5FF")
	gold    = lipgloss.Color("#FFB500")
	green   = lipgloss.Color("#2AFFAA")
	red     = lipgloss.Color("#FF5555")
	muted   = lipgloss.Color("#6C7280")
	primary = lipgloss.Color("#ECEFF4")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(gold).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cyan).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle   = lipgloss.NewStyle().Foreground(muted).Width(22)
	valueStyle   = lipgloss.NewStyle().Foreground(primary)
	successStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(red).Bold(true)
	sigStyle     = lipgloss.NewStyle().Foreground(cyan)
	helpStyle    = lipgloss.NewStyle().Foreground(muted).MarginTop(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(muted).
			Padding(0, 1).
			MarginBottom(1)
)
