package collector

// Long-cadence product timestamps of the Kepler data releases, keyed by the
// 13-digit stamp embedded in kplr<kic>-<stamp>_llc.fits.
var quarterByTimestamp = map[string]int{
	"2009131105131": 0,
	"2009166043257": 1,
	"2009259160929": 2,
	"2009350155506": 3,
	"2010078095331": 4,
	"2010009091648": 4,
	"2010174085026": 5,
	"2010265121752": 6,
	"2010355172524": 7,
	"2011073133259": 8,
	"2011177032512": 9,
	"2011271113734": 10,
	"2012004120508": 11,
	"2012088054726": 12,
	"2012179063303": 13,
	"2012277125453": 14,
	"2013011073258": 15,
	"2013098041711": 16,
	"2013131215648": 17,
}

// MaxQuarter is the last Kepler quarter.
const MaxQuarter = 17

// QuarterOf returns the quarter of a product timestamp, or -1 if unknown.
func QuarterOf(timestamp string) int {
	if q, ok := quarterByTimestamp[timestamp]; ok {
		return q
	}
	return -1
}
