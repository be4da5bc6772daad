package cli

import (
	"strconv"

	"github.com/pkg/errors"

	"KeplerLens/internal/model"
	"KeplerLens/internal/pipeline"
)

// parseKIC parses a positive Kepler Input Catalog ID.
func parseKIC(s string) (int64, error) {
	kic, err := strconv.ParseInt(s, 10, 64)
	if err != nil || kic <= 0 {
		return 0, errors.Wrapf(model.ErrInvalidParameter, "invalid KIC %q", s)
	}
	return kic, nil
}

func parseQuarter(s string) (int, error) {
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(model.ErrInvalidParameter, "invalid quarter %q", s)
	}
	return q, nil
}

// commandError applies the exit policy for a single run: missing data and
// empty results were already reported and end the command successfully.
func commandError(err error) error {
	switch pipeline.StatusOf(err) {
	case model.RunSucceeded, model.RunNotFound, model.RunEmpty:
		return nil
	default:
		return err
	}
}
