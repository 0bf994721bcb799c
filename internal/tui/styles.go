package tui

import "github.com/rgehrsitz/inss-calc/internal/tui/tuistyles"

// Re-export styles from tuistyles to avoid import cycles with components
var (
	AppStyle         = tuistyles.AppStyle
	TitleStyle       = tuistyles.TitleStyle
	SubtitleStyle    = tuistyles.SubtitleStyle
	MetricLabelStyle = tuistyles.MetricLabelStyle
	ErrorStyle       = tuistyles.ErrorStyle
	WarningStyle     = tuistyles.WarningStyle
)
