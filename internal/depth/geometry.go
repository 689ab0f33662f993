// Package depth reduces filtered depth frames to the obstacle distance
// array published to the flight controller.
package depth

// NumSectors is the number of equal angular sectors the horizontal field of
// view is divided into. It matches the length of the OBSTACLE_DISTANCE
// message's distances field and is fixed for the process lifetime.
const NumSectors = 72

// DistanceArray holds one distance in centimeters per sector, sector 0
// leftmost. The value maxRangeCm+1 is the sentinel for "no valid reading".
type DistanceArray [NumSectors]uint16

// SectorGeometry is derived once from the horizontal field of view: the
// angular position of sector 0 and the per-sector increment, in degrees.
type SectorGeometry struct {
	AngleOffset float64
	Increment   float64
}

// NewSectorGeometry computes the geometry for a forward-facing camera:
// sector 0 starts at -hfov/2 and offset + NumSectors*increment spans
// exactly the field of view.
func NewSectorGeometry(hfovDeg float64) SectorGeometry {
	return SectorGeometry{
		AngleOffset: -hfovDeg / 2,
		Increment:   hfovDeg / NumSectors,
	}
}
