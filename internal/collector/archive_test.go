package collector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KeplerLens/internal/model"
)

// decodeText reads "time flux" lines; test products are served in this
// format instead of FITS.
func decodeText(r io.Reader) (*model.LightCurve, error) {
	var times, flux []float64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, err
		}
		times = append(times, t)
		flux = append(flux, f)
	}
	lc, err := model.NewLightCurve(times, flux)
	if err != nil {
		return nil, err
	}
	lc.TimeFormat = "BKJD"
	return lc, nil
}

const tabbyDir = "/0084/008462852/"

func newArchiveServer(t *testing.T, products map[string]string) (*httptest.Server, *int) {
	t.Helper()
	downloads := 0
	mux := http.NewServeMux()
	mux.HandleFunc(tabbyDir, func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, tabbyDir)
		if name == "" {
			var b strings.Builder
			b.WriteString("<html><body><pre>\n")
			for n := range products {
				fmt.Fprintf(&b, "<a href=\"%s\">%s</a>\n", n, n)
			}
			b.WriteString("<a href=\"kplr008462852-2013098041711_slc.fits\">short cadence</a>\n")
			b.WriteString("</pre></body></html>")
			_, _ = io.WriteString(w, b.String())
			return
		}
		body, ok := products[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		downloads++
		_, _ = io.WriteString(w, body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &downloads
}

func newTestFetcher(baseURL string) *ArchiveFetcher {
	f := NewArchiveFetcher(baseURL, "", 5*time.Second)
	f.Decode = decodeText
	return f
}

var tabby = model.StarIdentifier{CatalogID: 8462852, Name: "Tabby's Star"}

func TestArchiveFetcher_SearchByQuarter(t *testing.T) {
	srv, _ := newArchiveServer(t, map[string]string{
		"kplr008462852-2013098041711_llc.fits": "1 100\n",
		"kplr008462852-2013011073258_llc.fits": "0 100\n",
	})
	f := newTestFetcher(srv.URL)

	products, err := f.Search(context.Background(), model.Query{Star: tabby, Quarter: 16})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 16, products[0].Quarter)
	assert.Equal(t, srv.URL+tabbyDir+"kplr008462852-2013098041711_llc.fits", products[0].URL)
}

func TestArchiveFetcher_SearchAllQuartersSorted(t *testing.T) {
	srv, _ := newArchiveServer(t, map[string]string{
		"kplr008462852-2013098041711_llc.fits": "",
		"kplr008462852-2009166043257_llc.fits": "",
		"kplr008462852-2011073133259_llc.fits": "",
	})
	f := newTestFetcher(srv.URL)

	products, err := f.Search(context.Background(), model.Query{Star: tabby, Quarter: model.AllQuarters})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, []int{1, 8, 16}, []int{products[0].Quarter, products[1].Quarter, products[2].Quarter})
}

func TestArchiveFetcher_NotFound(t *testing.T) {
	srv, _ := newArchiveServer(t, map[string]string{
		"kplr008462852-2013011073258_llc.fits": "",
	})
	f := newTestFetcher(srv.URL)

	_, err := f.Search(context.Background(), model.Query{Star: tabby, Quarter: 3})
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = f.Fetch(context.Background(), model.Query{
		Star:    model.StarIdentifier{CatalogID: 1234567},
		Quarter: model.AllQuarters,
	})
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestArchiveFetcher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).Search(context.Background(), model.Query{Star: tabby, Quarter: 16})
	require.Error(t, err)
	assert.False(t, errors.Is(err, model.ErrNotFound))
}

func TestArchiveFetcher_FetchStitches(t *testing.T) {
	srv, downloads := newArchiveServer(t, map[string]string{
		"kplr008462852-2013098041711_llc.fits": "20 300\n21 600\n22 300\n",
		"kplr008462852-2013011073258_llc.fits": "10 100\n11 nan\n12 100\n13 200\n",
	})
	f := newTestFetcher(srv.URL)

	lc, err := f.Fetch(context.Background(), model.Query{Star: tabby, Quarter: model.AllQuarters})
	require.NoError(t, err)
	assert.Equal(t, 2, *downloads)
	assert.Equal(t, "BKJD", lc.TimeFormat)
	assert.Equal(t, []float64{10, 11, 12, 13, 20, 21, 22}, lc.Time())

	flux := lc.Flux()
	assert.InDelta(t, 1.0, flux[0], 1e-12)
	assert.InDelta(t, 2.0, flux[3], 1e-12)
	assert.InDelta(t, 1.0, flux[4], 1e-12)
	assert.InDelta(t, 2.0, flux[5], 1e-12)
}

func TestArchiveFetcher_FirstOnly(t *testing.T) {
	srv, downloads := newArchiveServer(t, map[string]string{
		"kplr008462852-2013098041711_llc.fits": "20 300\n",
		"kplr008462852-2013011073258_llc.fits": "10 100\n",
	})
	f := newTestFetcher(srv.URL)

	lc, err := f.Fetch(context.Background(), model.Query{Star: tabby, Quarter: model.AllQuarters, FirstOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, *downloads)
	assert.Equal(t, []float64{10}, lc.Time())
}

func TestArchiveFetcher_RejectsBadCatalogID(t *testing.T) {
	_, err := newTestFetcher("http://127.0.0.1:1").Search(context.Background(), model.Query{Quarter: 1})
	assert.True(t, errors.Is(err, model.ErrInvalidParameter))
}

func TestStitch_SkipsUnnormalisableCurves(t *testing.T) {
	nanCurve, err := model.NewLightCurve([]float64{0, 1}, []float64{nan(), nan()})
	require.NoError(t, err)
	good, err := model.NewLightCurve([]float64{2, 3}, []float64{4, 4})
	require.NoError(t, err)

	lc, err := Stitch(nanCurve, good)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, lc.Time())
	assert.Equal(t, []float64{1, 1}, lc.Flux())
}

func TestQuarterOf(t *testing.T) {
	assert.Equal(t, 16, QuarterOf("2013098041711"))
	assert.Equal(t, 0, QuarterOf("2009131105131"))
	assert.Equal(t, -1, QuarterOf("2099000000000"))
}
