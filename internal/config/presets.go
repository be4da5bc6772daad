package config

import (
	"KeplerLens/internal/cleaner"
	"KeplerLens/internal/render"
)

// Data sources a preset can draw from.
const (
	SourceSynthetic = "synthetic"
	SourceArchive   = "archive"
)

// Preset bundles the per-script choices of source, cleaning, labels, file
// naming, and marker style. Title and FileName are render.Fill templates.
type Preset struct {
	Name            string
	Source          string
	RequiresQuarter bool
	AllowsQuarter   bool
	FirstOnly       bool
	Cleaning        []cleaner.Step
	Title           string
	FileName        string
	XLabel          string
	YLabel          string
	Style           render.Style
}

var presets = map[string]Preset{
	"synthetic": {
		Name:          "synthetic",
		Source:        SourceSynthetic,
		AllowsQuarter: true,
		Title:         "Kepler Light Curve for KEPID {id}",
		FileName:      "light_curve_{id}.png",
		XLabel:        "Time (days)",
		YLabel:        "Normalized Flux",
		Style:         render.Style{Color: "royalblue", Radius: 2, Alpha: 0.7, WidthIn: 12, HeightIn: 6},
	},
	"full": {
		Name:   "full",
		Source: SourceArchive,
		Cleaning: []cleaner.Step{
			{Op: cleaner.OpRemoveNaNs},
			{Op: cleaner.OpRemoveOutliers, Sigma: 20},
		},
		Title:    "Full Kepler Light Curve for {name} (KIC {id})",
		FileName: "light_curve_{clean}_{id}.png",
		XLabel:   "Time - BKJD",
		YLabel:   "Normalized Flux",
		Style:    render.Style{Color: "darkslateblue", Radius: 1, Alpha: 0.5, WidthIn: 15, HeightIn: 5},
	},
	"real": {
		Name:            "real",
		Source:          SourceArchive,
		RequiresQuarter: true,
		AllowsQuarter:   true,
		Cleaning: []cleaner.Step{
			{Op: cleaner.OpRemoveNaNs},
			{Op: cleaner.OpNormalize},
			{Op: cleaner.OpRemoveOutliers, Sigma: 5},
		},
		Title:    "Real Kepler Light Curve for KIC {id} (Quarter {q})",
		FileName: "real_light_curve_{id}_Q{q}.png",
		XLabel:   "Time - BKJD",
		YLabel:   "Normalized Flux",
		Style:    render.Style{Color: "midnightblue", Radius: 1, Alpha: 0.6, WidthIn: 15, HeightIn: 5},
	},
	"quick": {
		Name:            "quick",
		Source:          SourceArchive,
		RequiresQuarter: true,
		AllowsQuarter:   true,
		FirstOnly:       true,
		Cleaning: []cleaner.Step{
			{Op: cleaner.OpRemoveNaNs},
			{Op: cleaner.OpNormalize},
			{Op: cleaner.OpRemoveOutliers, Sigma: 5},
		},
		Title:    "Kepler Light Curve for {name} (Quarter {q})",
		FileName: "light_curve_{clean}_{id}_Q{q}.png",
		XLabel:   "Time - BKJD",
		YLabel:   "Normalized Flux",
		Style:    render.Style{Color: "firebrick", Radius: 2, Alpha: 0.7, WidthIn: 15, HeightIn: 5},
	},
}

// LookupPreset returns a copy of the named preset.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, ErrUnknownPreset
	}
	p.Cleaning = append([]cleaner.Step(nil), p.Cleaning...)
	return p, nil
}
