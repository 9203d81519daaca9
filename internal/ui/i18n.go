package ui

import (
	"embed"

	"fyne.io/fyne/v2/lang"
)

//go:embed translations
var translations embed.FS

// LoadTranslations registers the bundled translations; fyne picks the system locale
func LoadTranslations() error {
	return lang.AddTranslationsFS(translations, "translations")
}
