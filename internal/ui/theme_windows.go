//go:build windows

package ui

import (
	"fyne.io/fyne/v2"
	"golang.org/x/sys/windows/registry"
)

// SystemTheme reads the taskbar theme, which can differ from the app theme
type SystemTheme struct{}

func (SystemTheme) Dark() bool {
	k, err := registry.OpenKey(registry.CURRENT_USER, `Software\Microsoft\Windows\CurrentVersion\Themes\Personalize`, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue("SystemUsesLightTheme")
	if err != nil {
		return false
	}
	return v == 0
}

// NewThemeProvider returns the provider used for tray icons on this platform
func NewThemeProvider(a fyne.App) ThemeProvider {
	return SystemTheme{}
}
