/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reader

import (
	"math"

	"github.com/pkg/errors"
)

func errorsWrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

func float32FromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func float64FromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}
