package convert

import (
	"errors"
	"fmt"
	"strconv"

	"k8s.io/apimachinery/pkg/api/resource"
)

var (
	// ErrUnrecognizedUnit is returned when a quantity string matches neither
	// the decimal SI syntax nor the {Ki, Mi, Gi} binary suffix table.
	ErrUnrecognizedUnit = errors.New("unrecognized unit")

	// ErrNegativeQuantity is returned for quantities below zero.
	ErrNegativeQuantity = errors.New("negative quantity")
)

// binaryMultipliers is the only binary-prefix table the normalizer accepts.
var binaryMultipliers = map[string]float64{
	"Ki": 1 << 10,
	"Mi": 1 << 20,
	"Gi": 1 << 30,
}

// Normalize converts a raw quantity string into cores (cpu) or bytes (memory).
//
// Decimal SI syntax ("500m", "2", "1k", "250000n") is tried first. Only when
// that fails is the last two characters looked up in the binary table, so
// "500m" never reaches the binary path and "1Ki" always does.
func Normalize(raw string) (float64, error) {
	v, ok := parseDecimalSI(raw)
	if !ok {
		var err error
		v, err = parseBinarySI(raw)
		if err != nil {
			return 0, err
		}
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegativeQuantity, raw)
	}
	return v, nil
}

// parseDecimalSI accepts plain numbers, decimal SI suffixes and exponents.
// resource.ParseQuantity also understands binary suffixes; those are
// rejected here so they go through the explicit binary table.
func parseDecimalSI(raw string) (float64, bool) {
	q, err := resource.ParseQuantity(raw)
	if err != nil || q.Format == resource.BinarySI {
		return 0, false
	}
	return q.AsApproximateFloat64(), true
}

func parseBinarySI(raw string) (float64, error) {
	if len(raw) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedUnit, raw)
	}
	suffix := raw[len(raw)-2:]
	mult, ok := binaryMultipliers[suffix]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedUnit, raw)
	}
	n, err := strconv.ParseFloat(raw[:len(raw)-2], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedUnit, raw)
	}
	return n * mult, nil
}

// NormalizeOptional normalizes raw, treating an empty string as zero.
func NormalizeOptional(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return Normalize(raw)
}
