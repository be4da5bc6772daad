package collector

import (
	"io"

	"github.com/astrogo/fitsio"
	"github.com/pkg/errors"

	"KeplerLens/internal/model"
)

// lightCurveRow holds the columns read from a Kepler LIGHTCURVE table.
type lightCurveRow struct {
	Time float64 `fits:"TIME"`
	Flux float32 `fits:"PDCSAP_FLUX"`
}

// DecodeFITS reads TIME and PDCSAP_FLUX from the LIGHTCURVE extension of a
// Kepler light-curve file. Time is in BKJD.
func DecodeFITS(r io.Reader) (*model.LightCurve, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, errors.Wrap(err, "open fits")
	}
	defer f.Close()

	var table *fitsio.Table
	for _, hdu := range f.HDUs() {
		if hdu.Name() != "LIGHTCURVE" {
			continue
		}
		if t, ok := hdu.(*fitsio.Table); ok {
			table = t
			break
		}
	}
	if table == nil {
		return nil, errors.Wrap(model.ErrInvalidInput, "fits: no LIGHTCURVE table")
	}

	rows, err := table.Read(0, table.NumRows())
	if err != nil {
		return nil, errors.Wrap(err, "read LIGHTCURVE rows")
	}
	defer rows.Close()

	times := make([]float64, 0, table.NumRows())
	flux := make([]float64, 0, table.NumRows())
	for rows.Next() {
		var row lightCurveRow
		if err := rows.Scan(&row); err != nil {
			return nil, errors.Wrap(err, "scan LIGHTCURVE row")
		}
		times = append(times, row.Time)
		flux = append(flux, float64(row.Flux))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate LIGHTCURVE rows")
	}

	lc, err := model.NewLightCurve(times, flux)
	if err != nil {
		return nil, err
	}
	lc.TimeFormat = "BKJD"
	return lc, nil
}
