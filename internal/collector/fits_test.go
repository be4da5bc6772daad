package collector

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KeplerLens/internal/model"
)

type keplerRow struct {
	Time    float64 `fits:"TIME"`
	SAPFlux float32 `fits:"SAP_FLUX"`
	PDCSAP  float32 `fits:"PDCSAP_FLUX"`
}

// buildFITS writes a primary HDU followed by a binary table named extName.
func buildFITS(t *testing.T, extName string, rows []keplerRow) []byte {
	t.Helper()
	var buf bytes.Buffer
	f, err := fitsio.Create(&buf)
	require.NoError(t, err)

	phdu, err := fitsio.NewPrimaryHDU(nil)
	require.NoError(t, err)
	require.NoError(t, f.Write(phdu))

	cols := []fitsio.Column{
		{Name: "TIME", Format: "D"},
		{Name: "SAP_FLUX", Format: "E"},
		{Name: "PDCSAP_FLUX", Format: "E"},
	}
	table, err := fitsio.NewTable(extName, cols, fitsio.BINARY_TBL)
	require.NoError(t, err)
	for i := range rows {
		require.NoError(t, table.Write(&rows[i]))
	}
	require.NoError(t, f.Write(table))
	require.NoError(t, table.Close())
	require.NoError(t, f.Close())
	return buf.Bytes()
}

// streamOnly hides Seek and friends, like an HTTP response body.
type streamOnly struct{ r io.Reader }

func (s streamOnly) Read(p []byte) (int, error) { return s.r.Read(p) }

func TestDecodeFITS_LightCurveTable(t *testing.T) {
	nan32 := float32(math.NaN())
	data := buildFITS(t, "LIGHTCURVE", []keplerRow{
		{Time: 1500, SAPFlux: 90, PDCSAP: 100},
		{Time: 1501, SAPFlux: 91, PDCSAP: nan32},
		{Time: 1502, SAPFlux: 92, PDCSAP: 102},
	})

	lc, err := DecodeFITS(streamOnly{bytes.NewReader(data)})
	require.NoError(t, err)
	assert.Equal(t, "BKJD", lc.TimeFormat)
	assert.Equal(t, []float64{1500, 1501, 1502}, lc.Time())

	flux := lc.Flux()
	require.Len(t, flux, 3)
	assert.Equal(t, 100.0, flux[0])
	assert.True(t, math.IsNaN(flux[1]))
	assert.Equal(t, 102.0, flux[2])
}

func TestDecodeFITS_MissingLightCurveTable(t *testing.T) {
	data := buildFITS(t, "APERTURE", []keplerRow{{Time: 1, PDCSAP: 1}})

	_, err := DecodeFITS(streamOnly{bytes.NewReader(data)})
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestDecodeFITS_NotFITS(t *testing.T) {
	_, err := DecodeFITS(strings.NewReader("<html>not a fits file</html>"))
	assert.Error(t, err)
}

func TestArchiveFetcher_DecodesFITSProducts(t *testing.T) {
	data := buildFITS(t, "LIGHTCURVE", []keplerRow{
		{Time: 1500, PDCSAP: 200},
		{Time: 1501, PDCSAP: 400},
		{Time: 1502, PDCSAP: 200},
	})
	srv, _ := newArchiveServer(t, map[string]string{
		"kplr008462852-2013098041711_llc.fits": string(data),
	})
	f := NewArchiveFetcher(srv.URL, "", 0)

	lc, err := f.Fetch(t.Context(), model.Query{Star: tabby, Quarter: 16})
	require.NoError(t, err)
	assert.Equal(t, []float64{1500, 1501, 1502}, lc.Time())
	assert.Equal(t, []float64{1, 2, 1}, lc.Flux())
}
