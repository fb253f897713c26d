package core

// Color is a named palette entry: the sticky fill plus the darker "fold"
// accent drawn on the note corner.
type Color struct {
	Name string
	Hex  string
	Fold string
}

// Palette is the fixed set of note colors. The first entry is the default.
var Palette = []Color{
	{Name: "Amarelo", Hex: "#fff8c6", Fold: "#f3e58d"},
	{Name: "Verde", Hex: "#c6f8cf", Fold: "#8de5a0"},
	{Name: "Azul", Hex: "#c6e5f8", Fold: "#8dc8f3"},
	{Name: "Rosa", Hex: "#f8c6d4", Fold: "#f38da8"},
	{Name: "Laranja", Hex: "#f8e0c6", Fold: "#f3c48d"},
	{Name: "Roxo", Hex: "#e0c6f8", Fold: "#c48df3"},
}

// DefaultColor returns the palette's first entry.
func DefaultColor() Color {
	return Palette[0]
}

// NormalizeColor maps a stored fill value onto the palette: known fills pass
// through, anything missing or unknown falls back to the default.
func NormalizeColor(hex string) string {
	for _, c := range Palette {
		if c.Hex == hex {
			return hex
		}
	}
	return DefaultColor().Hex
}

// FoldFor returns the fold accent for a fill color, defaulting alongside
// NormalizeColor for unknown fills.
func FoldFor(hex string) string {
	for _, c := range Palette {
		if c.Hex == hex {
			return c.Fold
		}
	}
	return DefaultColor().Fold
}
