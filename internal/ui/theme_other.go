//go:build !windows

package ui

import "fyne.io/fyne/v2"

// NewThemeProvider returns the provider used for tray icons on this platform
func NewThemeProvider(a fyne.App) ThemeProvider {
	return FyneTheme{App: a}
}
