package main

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	BulletStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingRight(1)
	TextStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	DimTextStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	HeaderStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).PaddingLeft(2)
	TimestampStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	ItemStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	LinkedItemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	SelectedItemStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	MarkerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ErrorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	SuccessStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
