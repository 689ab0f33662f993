package bridge

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/depthbridge/internal/depth"
	"github.com/banshee-data/depthbridge/internal/fcu"
)

// The forward-distance job averages a fixed central slice of the sweep.
const (
	forwardSectorLo = 33
	forwardSectorHi = 38
)

// NewObstacleFieldJob publishes the full 72-sector obstacle field. A tick
// with no data yet is a no-op.
func NewObstacleFieldJob(buf *DistanceBuffer, link fcu.Link, geom depth.SectorGeometry, minCm, maxCm uint16, period time.Duration) Job {
	return Job{
		Name:   "obstacle-field",
		Period: period,
		Fire: func() error {
			dist, ts, ok := buf.Snapshot()
			if !ok {
				return nil
			}
			return link.SendObstacleDistance(ts, dist, geom, minCm, maxCm)
		},
	}
}

// NewForwardDistanceJob publishes a single scalar: the mean of the central
// sectors, rounded to whole centimeters. A tick with no data yet is a no-op.
func NewForwardDistanceJob(buf *DistanceBuffer, link fcu.Link, minCm, maxCm uint16, period time.Duration) Job {
	return Job{
		Name:   "forward-distance",
		Period: period,
		Fire: func() error {
			dist, _, ok := buf.Snapshot()
			if !ok {
				return nil
			}
			center := make([]float64, 0, forwardSectorHi-forwardSectorLo)
			for _, d := range dist[forwardSectorLo:forwardSectorHi] {
				center = append(center, float64(d))
			}
			mean := stat.Mean(center, nil)
			return link.SendDistanceSensor(minCm, maxCm, uint16(math.Round(mean)))
		},
	}
}
