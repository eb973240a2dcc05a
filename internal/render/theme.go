package render

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
)

// TitleStyle is used for the listing header and message subjects.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// SectionStyle marks the Internal/External group headers.
var SectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue)

// IDStyle highlights short IDs so they stand out for the next command.
var IDStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// SenderStyle is used for sender names in listings and headers.
var SenderStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)

// PreviewStyle dims the body preview under each listing entry.
var PreviewStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// HintStyle is used for the command-hint lines.
var HintStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle is used for user-facing failure lines.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// SuccessStyle is used for confirmation lines.
var SuccessStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// RuleStyle draws separator rules.
var RuleStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle)
