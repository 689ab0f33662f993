package fcu

import (
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"github.com/banshee-data/depthbridge/internal/depth"
)

// Message shaping lives apart from the node so the exact wire fields are
// testable without a serial port.

func obstacleDistanceMessage(timeUsec uint64, distances depth.DistanceArray, geom depth.SectorGeometry, minCm, maxCm uint16) *common.MessageObstacleDistance {
	return &common.MessageObstacleDistance{
		TimeUsec:    timeUsec,
		SensorType:  common.MAV_DISTANCE_SENSOR_LASER,
		Distances:   distances,
		Increment:   0, // consumers read the float increment instead
		MinDistance: minCm,
		MaxDistance: maxCm,
		IncrementF:  float32(geom.Increment),
		AngleOffset: float32(geom.AngleOffset),
		Frame:       common.MAV_FRAME_BODY_FRD,
	}
}

func distanceSensorMessage(minCm, maxCm, currentCm uint16) *common.MessageDistanceSensor {
	return &common.MessageDistanceSensor{
		TimeBootMs:      0,
		MinDistance:     minCm,
		MaxDistance:     maxCm,
		CurrentDistance: currentCm,
		Type:            common.MAV_DISTANCE_SENSOR_LASER,
		Id:              0,
		Orientation:     common.MAV_SENSOR_ROTATION_NONE, // forward
		Covariance:      0,
	}
}

func statusTextMessage(severity Severity, text string) *common.MessageStatustext {
	text = statusPrefix + text
	if len(text) > statusTextMax {
		text = text[:statusTextMax]
	}
	return &common.MessageStatustext{
		Severity: severity,
		Text:     text,
	}
}

func globalOriginMessage(sysID byte, latE7, lonE7, altMm int32) *common.MessageSetGpsGlobalOrigin {
	return &common.MessageSetGpsGlobalOrigin{
		TargetSystem: sysID,
		Latitude:     latE7,
		Longitude:    lonE7,
		Altitude:     altMm,
	}
}

func homePositionMessage(sysID byte, latE7, lonE7, altMm int32) *common.MessageSetHomePosition {
	return &common.MessageSetHomePosition{
		TargetSystem: sysID,
		Latitude:     latE7,
		Longitude:    lonE7,
		Altitude:     altMm,
		X:            0,
		Y:            0,
		Z:            0,
		Q:            [4]float32{1, 0, 0, 0}, // identity orientation (w, x, y, z)
		ApproachX:    0,
		ApproachY:    0,
		ApproachZ:    1,
	}
}

func timesyncMessage(nowNs int64) *common.MessageTimesync {
	return &common.MessageTimesync{
		Tc1: 0,
		Ts1: nowNs,
	}
}
