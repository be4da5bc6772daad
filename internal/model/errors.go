package model

import "github.com/pkg/errors"

// Error taxonomy shared by every stage of a run. Stages wrap these with
// context; callers test with errors.Is.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("no data found")
	ErrEmptyDataset     = errors.New("empty dataset")
	ErrWriteError       = errors.New("write error")
)
