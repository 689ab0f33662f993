package fcu

import (
	"sync"

	"github.com/banshee-data/depthbridge/internal/depth"
)

// ObstacleSend is one recorded SendObstacleDistance call.
type ObstacleSend struct {
	TimeUsec  uint64
	Distances depth.DistanceArray
	Geom      depth.SectorGeometry
	MinCm     uint16
	MaxCm     uint16
}

// DistanceSend is one recorded SendDistanceSensor call.
type DistanceSend struct {
	MinCm     uint16
	MaxCm     uint16
	CurrentCm uint16
}

// OriginSend is one recorded origin or home-position call.
type OriginSend struct {
	LatE7 int32
	LonE7 int32
	AltMm int32
}

// MockLink records every message handed to it. Setting WriteErr makes all
// sends fail, to exercise the drop-and-continue policy.
type MockLink struct {
	mu sync.Mutex

	Obstacles []ObstacleSend
	Distances []DistanceSend
	Statuses  []string
	Origins   []OriginSend
	Homes     []OriginSend
	Timesyncs []int64

	WriteErr error
	closed   bool
}

func (m *MockLink) SendObstacleDistance(timeUsec uint64, distances depth.DistanceArray, geom depth.SectorGeometry, minCm, maxCm uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Obstacles = append(m.Obstacles, ObstacleSend{
		TimeUsec:  timeUsec,
		Distances: distances,
		Geom:      geom,
		MinCm:     minCm,
		MaxCm:     maxCm,
	})
	return nil
}

func (m *MockLink) SendDistanceSensor(minCm, maxCm, currentCm uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Distances = append(m.Distances, DistanceSend{MinCm: minCm, MaxCm: maxCm, CurrentCm: currentCm})
	return nil
}

func (m *MockLink) SendStatusText(severity Severity, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Statuses = append(m.Statuses, text)
	return nil
}

func (m *MockLink) SendGlobalOrigin(latE7, lonE7, altMm int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Origins = append(m.Origins, OriginSend{LatE7: latE7, LonE7: lonE7, AltMm: altMm})
	return nil
}

func (m *MockLink) SendHomePosition(latE7, lonE7, altMm int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Homes = append(m.Homes, OriginSend{LatE7: latE7, LonE7: lonE7, AltMm: altMm})
	return nil
}

func (m *MockLink) SendTimesync(nowNs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Timesyncs = append(m.Timesyncs, nowNs)
	return nil
}

func (m *MockLink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetWriteErr changes the injected send failure under the lock.
func (m *MockLink) SetWriteErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteErr = err
}

// Closed reports whether Close has been called.
func (m *MockLink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// ObstacleCount returns the number of recorded obstacle field sends.
func (m *MockLink) ObstacleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Obstacles)
}

// DistanceCount returns the number of recorded distance sensor sends.
func (m *MockLink) DistanceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Distances)
}

// OriginCount returns the number of recorded set-global-origin sends.
func (m *MockLink) OriginCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Origins)
}

// HomeCount returns the number of recorded set-home-position sends.
func (m *MockLink) HomeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Homes)
}
