// Package series loads and validates monthly demand series and computes the
// content fingerprint used as the cache key. Loaders are tolerant of messy
// numeric data: blank, NA, and unparsable entries are skipped rather than
// failing the whole file.
package series

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Accepted series length, one observation per month.
const (
	MinObservations = 12
	MaxObservations = 120
)

// Validate checks the business rules on an incoming demand series: between
// 12 and 120 observations, and at least one finite value.
func Validate(series []float64) error {
	if len(series) < MinObservations || len(series) > MaxObservations {
		return fmt.Errorf("series: need between %d and %d observations, have %d",
			MinObservations, MaxObservations, len(series))
	}
	for _, v := range series {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return nil
		}
	}
	return fmt.Errorf("series: no finite observations")
}

// Fingerprint returns the xxHash64 of the observations' bit patterns.
// Series with identical content share a fingerprint, so cached evaluations
// can be reused across runs and instances.
func Fingerprint(series []float64) uint64 {
	buf := make([]byte, 8*len(series))
	for i, v := range series {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return xxhash.Sum64(buf)
}
