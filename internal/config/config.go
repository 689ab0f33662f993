// Package config holds the bridge's startup configuration. Connection
// target, baud rate, and publication frequency are overridable from flags;
// everything else is static for the process lifetime.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BridgeConfig is the root configuration. Fields are pointers so a partial
// JSON file only overrides what it names; the Get* methods supply defaults
// for everything else.
type BridgeConfig struct {
	// FCU link
	Connect        *string  `json:"connect,omitempty"`
	Baud           *int     `json:"baud,omitempty"`
	ConnectTimeout *string  `json:"connect_timeout,omitempty"` // duration string like "5s"
	PublishHz      *float64 `json:"publish_hz,omitempty"`

	// Exactly one of the two publication modes may be enabled.
	PublishObstacleField  *bool `json:"publish_obstacle_field,omitempty"`
	PublishDistanceSensor *bool `json:"publish_distance_sensor,omitempty"`

	// Depth stream
	StreamWidth  *int     `json:"stream_width,omitempty"`
	StreamHeight *int     `json:"stream_height,omitempty"`
	StreamFPS    *int     `json:"stream_fps,omitempty"`
	HFOVDeg      *float64 `json:"hfov_deg,omitempty"`
	MinRangeM    *float64 `json:"min_range_m,omitempty"`
	MaxRangeM    *float64 `json:"max_range_m,omitempty"`

	// Filter enable flags, in chain order
	FilterDecimation  *bool `json:"filter_decimation,omitempty"`
	FilterThreshold   *bool `json:"filter_threshold,omitempty"`
	FilterDisparity   *bool `json:"filter_disparity,omitempty"` // enables the to/from pair together
	FilterSpatial     *bool `json:"filter_spatial,omitempty"`
	FilterTemporal    *bool `json:"filter_temporal,omitempty"`
	FilterHoleFilling *bool `json:"filter_hole_filling,omitempty"`

	// EKF home defaults (1e7-scaled degrees, mm altitude)
	AutoSetEKFHome *bool `json:"auto_set_ekf_home,omitempty"`
	HomeLatE7      *int  `json:"home_lat_e7,omitempty"`
	HomeLonE7      *int  `json:"home_lon_e7,omitempty"`
	HomeAltMm      *int  `json:"home_alt_mm,omitempty"`
}

// Empty returns a BridgeConfig with all fields unset; the getters supply
// defaults.
func Empty() *BridgeConfig {
	return &BridgeConfig{}
}

// Load reads a BridgeConfig from a JSON file. Fields omitted from the file
// keep their defaults, so partial configs are safe.
func Load(path string) (*BridgeConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are coherent.
func (c *BridgeConfig) Validate() error {
	if c.PublishHz != nil && *c.PublishHz <= 0 {
		return fmt.Errorf("publish_hz must be positive, got %f", *c.PublishHz)
	}
	if c.HFOVDeg != nil && (*c.HFOVDeg <= 0 || *c.HFOVDeg > 360) {
		return fmt.Errorf("hfov_deg must be in (0, 360], got %f", *c.HFOVDeg)
	}
	if c.GetMinRangeM() >= c.GetMaxRangeM() {
		return fmt.Errorf("min_range_m %f must be below max_range_m %f", c.GetMinRangeM(), c.GetMaxRangeM())
	}
	if c.ConnectTimeout != nil && *c.ConnectTimeout != "" {
		if _, err := time.ParseDuration(*c.ConnectTimeout); err != nil {
			return fmt.Errorf("invalid connect_timeout %q: %w", *c.ConnectTimeout, err)
		}
	}
	// the two publication modes branch to different messages; the original
	// deployment semantics are one-or-the-other, so both is a config error
	if c.GetPublishObstacleField() && c.GetPublishDistanceSensor() {
		return fmt.Errorf("publish_obstacle_field and publish_distance_sensor are mutually exclusive")
	}
	return nil
}

// GetConnect returns the FCU device path or the default.
func (c *BridgeConfig) GetConnect() string {
	if c.Connect == nil {
		return "/dev/ttyUSB0"
	}
	return *c.Connect
}

// GetBaud returns the FCU baud rate or the default.
func (c *BridgeConfig) GetBaud() int {
	if c.Baud == nil {
		return 921600
	}
	return *c.Baud
}

// GetConnectTimeout parses and returns the link connect timeout.
func (c *BridgeConfig) GetConnectTimeout() time.Duration {
	if c.ConnectTimeout == nil || *c.ConnectTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(*c.ConnectTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetPublishHz returns the publication frequency or the default.
func (c *BridgeConfig) GetPublishHz() float64 {
	if c.PublishHz == nil {
		return 15
	}
	return *c.PublishHz
}

// GetPublishPeriod returns the publication period derived from the frequency.
func (c *BridgeConfig) GetPublishPeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.GetPublishHz())
}

// GetPublishObstacleField returns whether the 72-sector field is published.
func (c *BridgeConfig) GetPublishObstacleField() bool {
	if c.PublishObstacleField == nil {
		return true
	}
	return *c.PublishObstacleField
}

// GetPublishDistanceSensor returns whether the forward scalar is published.
func (c *BridgeConfig) GetPublishDistanceSensor() bool {
	if c.PublishDistanceSensor == nil {
		return false
	}
	return *c.PublishDistanceSensor
}

// GetStreamWidth returns the depth stream width or the default.
func (c *BridgeConfig) GetStreamWidth() int {
	if c.StreamWidth == nil {
		return 640
	}
	return *c.StreamWidth
}

// GetStreamHeight returns the depth stream height or the default.
func (c *BridgeConfig) GetStreamHeight() int {
	if c.StreamHeight == nil {
		return 480
	}
	return *c.StreamHeight
}

// GetStreamFPS returns the depth stream frame rate or the default.
func (c *BridgeConfig) GetStreamFPS() int {
	if c.StreamFPS == nil {
		return 30
	}
	return *c.StreamFPS
}

// GetHFOVDeg returns the horizontal field of view or the default.
func (c *BridgeConfig) GetHFOVDeg() float64 {
	if c.HFOVDeg == nil {
		return 87
	}
	return *c.HFOVDeg
}

// GetMinRangeM returns the minimum usable depth or the default.
func (c *BridgeConfig) GetMinRangeM() float64 {
	if c.MinRangeM == nil {
		return 0.1
	}
	return *c.MinRangeM
}

// GetMaxRangeM returns the maximum usable depth or the default.
func (c *BridgeConfig) GetMaxRangeM() float64 {
	if c.MaxRangeM == nil {
		return 8.0
	}
	return *c.MaxRangeM
}

// GetFilterDecimation returns the decimation filter enable flag.
func (c *BridgeConfig) GetFilterDecimation() bool {
	if c.FilterDecimation == nil {
		return true
	}
	return *c.FilterDecimation
}

// GetFilterThreshold returns the threshold filter enable flag.
func (c *BridgeConfig) GetFilterThreshold() bool {
	if c.FilterThreshold == nil {
		return true
	}
	return *c.FilterThreshold
}

// GetFilterDisparity returns the disparity-domain pair enable flag.
func (c *BridgeConfig) GetFilterDisparity() bool {
	if c.FilterDisparity == nil {
		return true
	}
	return *c.FilterDisparity
}

// GetFilterSpatial returns the spatial filter enable flag.
func (c *BridgeConfig) GetFilterSpatial() bool {
	if c.FilterSpatial == nil {
		return true
	}
	return *c.FilterSpatial
}

// GetFilterTemporal returns the temporal filter enable flag.
func (c *BridgeConfig) GetFilterTemporal() bool {
	if c.FilterTemporal == nil {
		return true
	}
	return *c.FilterTemporal
}

// GetFilterHoleFilling returns the hole-filling filter enable flag.
func (c *BridgeConfig) GetFilterHoleFilling() bool {
	if c.FilterHoleFilling == nil {
		return true
	}
	return *c.FilterHoleFilling
}

// GetAutoSetEKFHome returns whether home is set automatically after connect.
func (c *BridgeConfig) GetAutoSetEKFHome() bool {
	if c.AutoSetEKFHome == nil {
		return false
	}
	return *c.AutoSetEKFHome
}

// GetHomeLatE7 returns the default home latitude in 1e7-scaled degrees.
func (c *BridgeConfig) GetHomeLatE7() int32 {
	if c.HomeLatE7 == nil {
		return 151269321
	}
	return int32(*c.HomeLatE7)
}

// GetHomeLonE7 returns the default home longitude in 1e7-scaled degrees.
func (c *BridgeConfig) GetHomeLonE7() int32 {
	if c.HomeLonE7 == nil {
		return 16624301
	}
	return int32(*c.HomeLonE7)
}

// GetHomeAltMm returns the default home altitude in millimeters.
func (c *BridgeConfig) GetHomeAltMm() int32 {
	if c.HomeAltMm == nil {
		return 163000
	}
	return int32(*c.HomeAltMm)
}
