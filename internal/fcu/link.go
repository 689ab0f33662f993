// Package fcu speaks MAVLink to the flight control unit over a serial
// endpoint. It owns message shaping for the handful of messages the bridge
// sends; everything else about the protocol stays inside gomavlib.
package fcu

import (
	"fmt"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"github.com/banshee-data/depthbridge/internal/depth"
)

// Severity mirrors the MAVLink statustext severity levels.
type Severity = common.MAV_SEVERITY

const (
	SeverityError  Severity = common.MAV_SEVERITY_ERROR
	SeverityNotice Severity = common.MAV_SEVERITY_NOTICE
	SeverityInfo   Severity = common.MAV_SEVERITY_INFO
)

// statusPrefix identifies this bridge in ground-station status lines.
const statusPrefix = "D4xx: "

// statusTextMax is the STATUSTEXT wire limit.
const statusTextMax = 50

// Link is the subset of the vehicle connection the bridge uses. The node
// implementation talks MAVLink; the mock records calls for tests.
type Link interface {
	// SendObstacleDistance publishes the full 72-sector obstacle field.
	SendObstacleDistance(timeUsec uint64, distances depth.DistanceArray, geom depth.SectorGeometry, minCm, maxCm uint16) error

	// SendDistanceSensor publishes a single forward distance reading.
	SendDistanceSensor(minCm, maxCm, currentCm uint16) error

	// SendStatusText sends a short human-readable notice to the ground station.
	SendStatusText(severity Severity, text string) error

	// SendGlobalOrigin sets the EKF global origin (1e7-scaled degrees, mm altitude).
	SendGlobalOrigin(latE7, lonE7, altMm int32) error

	// SendHomePosition sets the home position at the same origin.
	SendHomePosition(latE7, lonE7, altMm int32) error

	// SendTimesync requests a time synchronization from the FCU.
	SendTimesync(nowNs int64) error

	Close() error
}

// Config carries the connection parameters for the FCU link.
type Config struct {
	Device   string
	Baud     int
	Timeout  time.Duration
	SystemID byte
}

// Node is the gomavlib-backed Link.
type Node struct {
	node  *gomavlib.Node
	sysID byte
}

// Dial opens the MAVLink node over the configured serial endpoint.
func Dial(cfg Config) (*Node, error) {
	sysID := cfg.SystemID
	if sysID == 0 {
		sysID = 1
	}
	node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints: []gomavlib.EndpointConf{
			gomavlib.EndpointSerial{Device: cfg.Device, Baud: cfg.Baud},
		},
		Dialect:      common.Dialect,
		OutVersion:   gomavlib.V2,
		OutSystemID:  sysID,
		WriteTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("fcu: connect %s: %w", cfg.Device, err)
	}
	return &Node{node: node, sysID: sysID}, nil
}

func (n *Node) send(name string, msg interface {
	GetID() uint32
}) error {
	if err := n.node.WriteMessageAll(msg); err != nil {
		return fmt.Errorf("fcu: write %s: %w", name, err)
	}
	return nil
}

func (n *Node) SendObstacleDistance(timeUsec uint64, distances depth.DistanceArray, geom depth.SectorGeometry, minCm, maxCm uint16) error {
	return n.send("OBSTACLE_DISTANCE", obstacleDistanceMessage(timeUsec, distances, geom, minCm, maxCm))
}

func (n *Node) SendDistanceSensor(minCm, maxCm, currentCm uint16) error {
	return n.send("DISTANCE_SENSOR", distanceSensorMessage(minCm, maxCm, currentCm))
}

func (n *Node) SendStatusText(severity Severity, text string) error {
	return n.send("STATUSTEXT", statusTextMessage(severity, text))
}

func (n *Node) SendGlobalOrigin(latE7, lonE7, altMm int32) error {
	return n.send("SET_GPS_GLOBAL_ORIGIN", globalOriginMessage(n.sysID, latE7, lonE7, altMm))
}

func (n *Node) SendHomePosition(latE7, lonE7, altMm int32) error {
	return n.send("SET_HOME_POSITION", homePositionMessage(n.sysID, latE7, lonE7, altMm))
}

func (n *Node) SendTimesync(nowNs int64) error {
	return n.send("TIMESYNC", timesyncMessage(nowNs))
}

func (n *Node) Close() error {
	n.node.Close()
	return nil
}
