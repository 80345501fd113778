package main

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	BulletStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingRight(1)
	TextStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	DimTextStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	SpinnerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	TimestampStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(2)
	ItemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	RemovedItemStyle  = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("8")).Strikethrough(true)
	SelectedItemStyle = lipgloss.NewStyle().PaddingLeft(0).Foreground(lipgloss.Color("3"))
	HeaderStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).PaddingLeft(2)
	FormatStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	ErrorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ErrorPanelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("196")).Padding(0, 1)
	SuccessStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	ContentStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
)
