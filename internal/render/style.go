package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1"

	"KeplerLens/internal/model"
)

// Palette maps the marker colour names used by the presets to hex values.
var Palette = map[string]string{
	"royalblue":     "#4169e1",
	"darkslateblue": "#483d8b",
	"midnightblue":  "#191970",
	"firebrick":     "#b22222",
	"black":         "#000000",
	"gray":          "#808080",
}

// Style controls marker appearance and canvas size.
type Style struct {
	Color    string  `yaml:"color"`  // palette name or any CSS colour colors.Parse accepts
	Radius   float64 `yaml:"radius"` // marker radius in points
	Alpha    float64 `yaml:"alpha"`  // marker opacity in (0, 1]
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
}

// Validate checks that the style can be drawn.
func (s Style) Validate() error {
	if _, err := s.MarkerColor(); err != nil {
		return err
	}
	if !(s.Radius > 0) {
		return errors.Wrapf(model.ErrInvalidParameter, "marker radius must be positive, got %v", s.Radius)
	}
	if !(s.WidthIn > 0) || !(s.HeightIn > 0) {
		return errors.Wrapf(model.ErrInvalidParameter, "canvas size must be positive, got %vx%v", s.WidthIn, s.HeightIn)
	}
	return nil
}

// MarkerColor resolves Color and Alpha into a non-premultiplied colour.
func (s Style) MarkerColor() (color.NRGBA, error) {
	if !(s.Alpha > 0 && s.Alpha <= 1) {
		return color.NRGBA{}, errors.Wrapf(model.ErrInvalidParameter, "alpha must be in (0, 1], got %v", s.Alpha)
	}
	name := strings.ToLower(strings.TrimSpace(s.Color))
	if hex, ok := Palette[name]; ok {
		name = hex
	}
	c, err := colors.Parse(name)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(model.ErrInvalidParameter, "marker color %q: %v", s.Color, err)
	}
	rgb := c.ToRGB()
	return color.NRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: uint8(math.Round(s.Alpha * 255))}, nil
}
