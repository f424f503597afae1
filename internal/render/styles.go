package render

import "github.com/charmbracelet/lipgloss"

var (
	colorDestructive = lipgloss.Color("#e53935")
	colorSuccess     = lipgloss.Color("#8BC34A")
	colorWarning     = lipgloss.Color("#FFC107")
	colorInfo        = lipgloss.Color("#2196F3")
	colorMuted       = lipgloss.Color("#8a94a6")
	colorPrimary     = lipgloss.Color("#4db6ac")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	barStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorDestructive)
)

var badgeColors = map[string]lipgloss.Color{
	"pending":  colorWarning,
	"approved": colorSuccess,
	"declined": colorDestructive,
	"unread":   colorInfo,
	"read":     colorMuted,
	"low":      colorWarning,
	"expired":  colorDestructive,
	"expiring": colorWarning,
}
