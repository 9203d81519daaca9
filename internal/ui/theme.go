package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// ThemeProvider reports whether the desktop uses a dark theme
type ThemeProvider interface {
	Dark() bool
}

// FyneTheme asks the fyne settings for the theme variant
type FyneTheme struct {
	App fyne.App
}

func (t FyneTheme) Dark() bool {
	return t.App.Settings().ThemeVariant() == theme.VariantDark
}

// StaticTheme always reports the same variant
type StaticTheme bool

func (t StaticTheme) Dark() bool {
	return bool(t)
}
