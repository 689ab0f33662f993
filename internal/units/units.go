// Package units provides shared conversions between the raw depth sample
// domain, meters, and the centimeter wire domain.
package units

import "math"

// RawToMeters converts a raw depth sample to meters using the device's
// depth scale (the size of one raw unit in meters).
func RawToMeters(raw uint16, scale float64) float64 {
	return float64(raw) * scale
}

// MetersToCm converts a distance in meters to whole centimeters, rounding
// to the nearest centimeter.
func MetersToCm(m float64) uint16 {
	return uint16(math.Round(m * 100))
}
