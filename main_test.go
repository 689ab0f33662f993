package main

import (
	"testing"

	"github.com/banshee-data/depthbridge/internal/bridge"
	"github.com/banshee-data/depthbridge/internal/config"
	"github.com/banshee-data/depthbridge/internal/depth"
	"github.com/banshee-data/depthbridge/internal/fcu"
)

func boolPtr(b bool) *bool { return &b }

func TestBuildChainOrder(t *testing.T) {
	chain := buildChain(config.Empty())

	want := []string{
		"Decimation Filter",
		"Threshold Filter",
		"Depth to Disparity",
		"Spatial Filter",
		"Temporal Filter",
		"Hole Filling Filter",
		"Disparity to Depth",
	}
	if len(chain) != len(want) {
		t.Fatalf("chain has %d steps, want %d", len(chain), len(want))
	}
	for i, name := range want {
		if chain[i].Name != name {
			t.Errorf("step %d = %q, want %q", i, chain[i].Name, name)
		}
		if !chain[i].Enabled {
			t.Errorf("step %q should be enabled by default", name)
		}
	}
	if err := chain.Validate(); err != nil {
		t.Errorf("default chain should validate: %v", err)
	}
}

func TestBuildChainDisparityTogglesBothTransforms(t *testing.T) {
	cfg := &config.BridgeConfig{FilterDisparity: boolPtr(false)}
	chain := buildChain(cfg)

	for _, spec := range chain {
		switch spec.Name {
		case "Depth to Disparity", "Disparity to Depth":
			if spec.Enabled {
				t.Errorf("%q should be disabled", spec.Name)
			}
		}
	}
	if err := chain.Validate(); err != nil {
		t.Errorf("chain without disparity pair should validate: %v", err)
	}
}

func TestPublishJobsDefault(t *testing.T) {
	cfg := config.Empty()
	extractor := depth.Extractor{MinRangeM: cfg.GetMinRangeM(), MaxRangeM: cfg.GetMaxRangeM()}

	jobs := publishJobs(cfg, &bridge.DistanceBuffer{}, &fcu.MockLink{}, extractor)
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	if jobs[0].Name != "obstacle-field" {
		t.Errorf("default job = %q, want obstacle-field", jobs[0].Name)
	}
	if jobs[0].Period != cfg.GetPublishPeriod() {
		t.Errorf("job period = %v, want %v", jobs[0].Period, cfg.GetPublishPeriod())
	}
}

func TestPublishJobsDistanceSensorMode(t *testing.T) {
	cfg := &config.BridgeConfig{
		PublishObstacleField:  boolPtr(false),
		PublishDistanceSensor: boolPtr(true),
	}
	extractor := depth.Extractor{MinRangeM: cfg.GetMinRangeM(), MaxRangeM: cfg.GetMaxRangeM()}

	jobs := publishJobs(cfg, &bridge.DistanceBuffer{}, &fcu.MockLink{}, extractor)
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	if jobs[0].Name != "forward-distance" {
		t.Errorf("job = %q, want forward-distance", jobs[0].Name)
	}
}

func TestPublishJobsNoneEnabled(t *testing.T) {
	cfg := &config.BridgeConfig{
		PublishObstacleField:  boolPtr(false),
		PublishDistanceSensor: boolPtr(false),
	}
	extractor := depth.Extractor{MinRangeM: cfg.GetMinRangeM(), MaxRangeM: cfg.GetMaxRangeM()}

	jobs := publishJobs(cfg, &bridge.DistanceBuffer{}, &fcu.MockLink{}, extractor)
	if len(jobs) != 0 {
		t.Fatalf("got %d jobs, want 0", len(jobs))
	}
}
