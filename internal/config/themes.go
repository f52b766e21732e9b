package config

import (
	"sort"

	"server_kagero/internal/dataType"
)

// Palette is the fixed theme table for the blocked page.
var Palette = map[string]dataType.Theme{
	"default": {
		Name:       "default",
		Primary:    "#2563eb",
		Background: "#f8fafc",
		Text:       "#0f172a",
		Accent:     "#60a5fa",
	},
	"midnight": {
		Name:       "midnight",
		Primary:    "#818cf8",
		Background: "#0f172a",
		Text:       "#e2e8f0",
		Accent:     "#38bdf8",
	},
	"slate": {
		Name:       "slate",
		Primary:    "#475569",
		Background: "#e2e8f0",
		Text:       "#1e293b",
		Accent:     "#94a3b8",
	},
	"crimson": {
		Name:       "crimson",
		Primary:    "#dc2626",
		Background: "#fef2f2",
		Text:       "#450a0a",
		Accent:     "#f87171",
	},
	"forest": {
		Name:       "forest",
		Primary:    "#16a34a",
		Background: "#f0fdf4",
		Text:       "#14532d",
		Accent:     "#4ade80",
	},
}

// Themes returns the palette in stable name order.
func Themes() []dataType.Theme {
	names := make([]string, 0, len(Palette))
	for name := range Palette {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]dataType.Theme, 0, len(names))
	for _, name := range names {
		out = append(out, Palette[name])
	}
	return out
}

// LookupTheme resolves a theme name, falling back to the default entry.
func LookupTheme(name string) dataType.Theme {
	if t, ok := Palette[name]; ok {
		return t
	}
	return Palette["default"]
}
