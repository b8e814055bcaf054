// Package theme configures the ttk styles of the preview window.
package theme

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const (
	ColorBg      = "#f7f9fb"
	ColorSurface = "#ffffff"
	ColorPrimary = "#2563eb"
	ColorDanger  = "#dc2626"
	ColorAccent  = "#10b981"
)

// style names used with Style("danger.TButton") etc.
const (
	StyleDangerButton = "danger.TButton"
	StyleAccentLabel  = "accent.TLabel"
	StyleStateLabel   = "state.TLabel"
)

// InitStyles activates the base theme and configures the named styles.
func InitStyles() {
	_ = ActivateTheme("azure light")
	App.Configure(Background(ColorBg))

	StyleConfigure(StyleDangerButton,
		Background(ColorDanger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleAccentLabel,
		Foreground(ColorPrimary),
		Background(ColorSurface),
		Padding("2p 1p"),
	)
	StyleConfigure(StyleStateLabel,
		Foreground("white"),
		Background(ColorAccent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}
