package render

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KeplerLens/internal/model"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testStyle() Style {
	return Style{Color: "royalblue", Radius: 2, Alpha: 0.7, WidthIn: 4, HeightIn: 2}
}

func testCurve(t *testing.T) *model.LightCurve {
	t.Helper()
	lc, err := model.NewLightCurve([]float64{0, 1, 2, 3}, []float64{1, 0.99, 1.01, 1})
	require.NoError(t, err)
	return lc
}

func TestScatterRenderer_WritesPNG(t *testing.T) {
	r, err := NewScatterRenderer(testStyle())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "light_curve_8462852.png")
	require.NoError(t, r.Render(testCurve(t), Labels{Title: "t", XLabel: "Time (days)", YLabel: "Normalized Flux"}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestScatterRenderer_OverwritesExistingFile(t *testing.T) {
	r, err := NewScatterRenderer(testStyle())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	require.NoError(t, r.Render(testCurve(t), Labels{}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestScatterRenderer_EmptyDataset(t *testing.T) {
	r, err := NewScatterRenderer(testStyle())
	require.NoError(t, err)
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.png")

	err = r.Render(model.Empty(), Labels{}, path)
	assert.True(t, errors.Is(err, model.ErrEmptyDataset))

	nanOnly, err := model.NewLightCurve([]float64{0, 1}, []float64{math.NaN(), math.Inf(1)})
	require.NoError(t, err)
	err = r.Render(nanOnly, Labels{}, path)
	assert.True(t, errors.Is(err, model.ErrEmptyDataset))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestScatterRenderer_WriteError(t *testing.T) {
	r, err := NewScatterRenderer(testStyle())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "missing", "out.png")
	err = r.Render(testCurve(t), Labels{}, path)
	assert.True(t, errors.Is(err, model.ErrWriteError))
}

func TestStyle_MarkerColor(t *testing.T) {
	tests := []struct {
		name    string
		style   Style
		want    [4]uint8
		wantErr bool
	}{
		{"palette name", Style{Color: "firebrick", Alpha: 1}, [4]uint8{0xb2, 0x22, 0x22, 255}, false},
		{"hex", Style{Color: "#191970", Alpha: 0.6}, [4]uint8{0x19, 0x19, 0x70, 153}, false},
		{"case and space", Style{Color: " RoyalBlue ", Alpha: 0.5}, [4]uint8{0x41, 0x69, 0xe1, 128}, false},
		{"unknown", Style{Color: "no-such-colour", Alpha: 1}, [4]uint8{}, true},
		{"zero alpha", Style{Color: "black", Alpha: 0}, [4]uint8{}, true},
		{"alpha above one", Style{Color: "black", Alpha: 1.5}, [4]uint8{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.style.MarkerColor()
			if tt.wantErr {
				assert.True(t, errors.Is(err, model.ErrInvalidParameter))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, [4]uint8{c.R, c.G, c.B, c.A})
		})
	}
}

func TestNewScatterRenderer_RejectsBadStyle(t *testing.T) {
	_, err := NewScatterRenderer(Style{Color: "black", Alpha: 1, Radius: 0, WidthIn: 1, HeightIn: 1})
	assert.True(t, errors.Is(err, model.ErrInvalidParameter))

	_, err = NewScatterRenderer(Style{Color: "black", Alpha: 1, Radius: 1, WidthIn: 0, HeightIn: 1})
	assert.True(t, errors.Is(err, model.ErrInvalidParameter))
}

func TestFill(t *testing.T) {
	star := model.StarIdentifier{CatalogID: 8462852, Name: "Tabby's Star"}

	assert.Equal(t, "light_curve_TabbysStar_8462852_Q16.png", Fill("light_curve_{clean}_{id}_Q{q}.png", star, 16))
	assert.Equal(t, "Full Kepler Light Curve for Tabby's Star (KIC 8462852)", Fill("Full Kepler Light Curve for {name} (KIC {id})", star, model.AllQuarters))
	assert.Equal(t, "kplr008462852", Fill("kplr{kic}", star, 0))
	assert.Equal(t, "Kepler Light Curve for KIC 42 (Quarter 0)", Fill("Kepler Light Curve for {name} (Quarter {q})", model.StarIdentifier{CatalogID: 42}, 0))
}

func TestFill_EmptyPlaceholderDropsSeparator(t *testing.T) {
	unnamed := model.StarIdentifier{CatalogID: 8462852}

	assert.Equal(t, "light_curve_8462852_Q16.png", Fill("light_curve_{clean}_{id}_Q{q}.png", unnamed, 16))
	assert.Equal(t, "light_curve_8462852.png", Fill("light_curve_{clean}_{id}.png", unnamed, model.AllQuarters))
	assert.Equal(t, "8462852.png", Fill("{clean}_{id}.png", unnamed, 16))
	assert.Equal(t, "Q.png", Fill("Q{q}.png", unnamed, model.AllQuarters))

	// Names made only of punctuation clean to nothing as well.
	assert.Equal(t, "light_curve_8462852.png", Fill("light_curve_{clean}_{id}.png", model.StarIdentifier{CatalogID: 8462852, Name: "'!'"}, model.AllQuarters))
}
