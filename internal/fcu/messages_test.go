package fcu

import (
	"strings"
	"testing"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"github.com/banshee-data/depthbridge/internal/depth"
)

func TestObstacleDistanceMessage(t *testing.T) {
	var dist depth.DistanceArray
	for i := range dist {
		dist[i] = uint16(100 + i)
	}
	geom := depth.NewSectorGeometry(87)

	msg := obstacleDistanceMessage(123456, dist, geom, 10, 800)

	if msg.TimeUsec != 123456 {
		t.Errorf("TimeUsec = %d, want 123456", msg.TimeUsec)
	}
	if msg.Distances != [72]uint16(dist) {
		t.Error("Distances do not match the input array")
	}
	if msg.MinDistance != 10 || msg.MaxDistance != 800 {
		t.Errorf("range = [%d, %d], want [10, 800]", msg.MinDistance, msg.MaxDistance)
	}
	if msg.Increment != 0 {
		t.Errorf("Increment byte = %d, want 0 (float field carries the value)", msg.Increment)
	}
	if msg.IncrementF != float32(87.0/72) {
		t.Errorf("IncrementF = %f, want %f", msg.IncrementF, 87.0/72)
	}
	if msg.AngleOffset != -43.5 {
		t.Errorf("AngleOffset = %f, want -43.5", msg.AngleOffset)
	}
	if msg.Frame != common.MAV_FRAME_BODY_FRD {
		t.Errorf("Frame = %v, want MAV_FRAME_BODY_FRD", msg.Frame)
	}
}

func TestDistanceSensorMessage(t *testing.T) {
	msg := distanceSensorMessage(10, 800, 152)

	if msg.CurrentDistance != 152 {
		t.Errorf("CurrentDistance = %d, want 152", msg.CurrentDistance)
	}
	if msg.MinDistance != 10 || msg.MaxDistance != 800 {
		t.Errorf("range = [%d, %d], want [10, 800]", msg.MinDistance, msg.MaxDistance)
	}
	if msg.Orientation != common.MAV_SENSOR_ROTATION_NONE {
		t.Errorf("Orientation = %v, want forward (ROTATION_NONE)", msg.Orientation)
	}
	if msg.Covariance != 0 {
		t.Errorf("Covariance = %d, want 0", msg.Covariance)
	}
}

func TestStatusTextMessage(t *testing.T) {
	msg := statusTextMessage(SeverityInfo, "Camera connected.")
	if msg.Text != "D4xx: Camera connected." {
		t.Errorf("Text = %q, want prefixed text", msg.Text)
	}
	if msg.Severity != common.MAV_SEVERITY_INFO {
		t.Errorf("Severity = %v, want INFO", msg.Severity)
	}

	long := statusTextMessage(SeverityNotice, strings.Repeat("x", 100))
	if len(long.Text) != statusTextMax {
		t.Errorf("long text length = %d, want %d", len(long.Text), statusTextMax)
	}
}

func TestHomePositionMessage(t *testing.T) {
	msg := homePositionMessage(1, 151269321, 16624301, 163000)

	if msg.TargetSystem != 1 {
		t.Errorf("TargetSystem = %d, want 1", msg.TargetSystem)
	}
	if msg.Latitude != 151269321 || msg.Longitude != 16624301 || msg.Altitude != 163000 {
		t.Errorf("origin = (%d, %d, %d)", msg.Latitude, msg.Longitude, msg.Altitude)
	}
	if msg.Q != [4]float32{1, 0, 0, 0} {
		t.Errorf("Q = %v, want identity", msg.Q)
	}
	if msg.ApproachZ != 1 || msg.ApproachX != 0 || msg.ApproachY != 0 {
		t.Errorf("approach = (%f, %f, %f), want (0, 0, 1)", msg.ApproachX, msg.ApproachY, msg.ApproachZ)
	}
}

func TestGlobalOriginMessage(t *testing.T) {
	msg := globalOriginMessage(1, 151269321, 16624301, 163000)
	if msg.TargetSystem != 1 {
		t.Errorf("TargetSystem = %d, want 1", msg.TargetSystem)
	}
	if msg.Latitude != 151269321 || msg.Longitude != 16624301 || msg.Altitude != 163000 {
		t.Errorf("origin = (%d, %d, %d)", msg.Latitude, msg.Longitude, msg.Altitude)
	}
}

func TestTimesyncMessage(t *testing.T) {
	msg := timesyncMessage(42)
	if msg.Tc1 != 0 || msg.Ts1 != 42 {
		t.Errorf("timesync = (tc1=%d, ts1=%d), want (0, 42)", msg.Tc1, msg.Ts1)
	}
}
