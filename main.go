// Command depthbridge reads a depth camera stream, condenses each frame to a
// 72-sector proximity sweep, and publishes it to a flight control unit over
// MAVLink for obstacle avoidance.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/depthbridge/internal/bridge"
	"github.com/banshee-data/depthbridge/internal/camera"
	"github.com/banshee-data/depthbridge/internal/config"
	"github.com/banshee-data/depthbridge/internal/depth"
	"github.com/banshee-data/depthbridge/internal/fcu"
	"github.com/banshee-data/depthbridge/internal/monitoring"
	"github.com/banshee-data/depthbridge/internal/recorder"
	"github.com/banshee-data/depthbridge/internal/timeutil"
	"github.com/banshee-data/depthbridge/internal/viz"
)

var (
	configPath = flag.String("config", "", "Path to a JSON config file")
	connect    = flag.String("connect", "", "FCU serial device (overrides config)")
	baud       = flag.Int("baud", 0, "FCU baud rate (overrides config)")
	publishHz  = flag.Float64("hz", 0, "Publication frequency in Hz (overrides config)")
	devMode    = flag.Bool("dev", false, "Run with a synthetic camera instead of hardware")
	framesPath = flag.String("frames", "", "Replay depth frames from a recording file")
	recordPath = flag.String("record", "", "Record extracted sweeps to a SQLite file")
	listen     = flag.String("listen", "", "Debug HTTP listen address (serves /preview)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("depthbridge: %v", err)
	}
}

// buildChain assembles the filter pipeline in processing order from the
// config's enable flags. The disparity pair brackets the filters that
// operate in the disparity domain.
func buildChain(cfg *config.BridgeConfig) depth.Chain {
	return depth.Chain{
		{Enabled: cfg.GetFilterDecimation(), Name: "Decimation Filter", Step: depth.NewDecimationFilter(2)},
		{Enabled: cfg.GetFilterThreshold(), Name: "Threshold Filter", Step: depth.NewThresholdFilter(cfg.GetMinRangeM(), cfg.GetMaxRangeM())},
		{Enabled: cfg.GetFilterDisparity(), Name: "Depth to Disparity", Step: depth.NewDepthToDisparity()},
		{Enabled: cfg.GetFilterSpatial(), Name: "Spatial Filter", Step: depth.NewSpatialFilter(0.5, 20)},
		{Enabled: cfg.GetFilterTemporal(), Name: "Temporal Filter", Step: depth.NewTemporalFilter(0.4)},
		{Enabled: cfg.GetFilterHoleFilling(), Name: "Hole Filling Filter", Step: depth.NewHoleFillingFilter()},
		{Enabled: cfg.GetFilterDisparity(), Name: "Disparity to Depth", Step: depth.NewDisparityToDepth()},
	}
}

// publishJobs builds the enabled publication jobs. At most one is enabled
// (Validate enforces the exclusivity); none at all is a startup error
// surfaced by NewScheduler.
func publishJobs(cfg *config.BridgeConfig, buf *bridge.DistanceBuffer, link fcu.Link, extractor depth.Extractor) []bridge.Job {
	period := cfg.GetPublishPeriod()
	var jobs []bridge.Job
	if cfg.GetPublishObstacleField() {
		geom := depth.NewSectorGeometry(cfg.GetHFOVDeg())
		jobs = append(jobs, bridge.NewObstacleFieldJob(buf, link, geom, extractor.MinCm(), extractor.MaxCm(), period))
	}
	if cfg.GetPublishDistanceSensor() {
		jobs = append(jobs, bridge.NewForwardDistanceJob(buf, link, extractor.MinCm(), extractor.MaxCm(), period))
	}
	return jobs
}

func loadConfig() (*config.BridgeConfig, error) {
	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *connect != "" {
		cfg.Connect = connect
	}
	if *baud != 0 {
		cfg.Baud = baud
	}
	if *publishHz != 0 {
		cfg.PublishHz = publishHz
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func pickDriver() (camera.Driver, error) {
	switch {
	case *devMode:
		return &camera.SyntheticDriver{}, nil
	case *framesPath != "":
		return &camera.ReplayDriver{Path: *framesPath}, nil
	default:
		return nil, fmt.Errorf("no camera source: pass -dev for a synthetic stream or -frames with a recording")
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	chain := buildChain(cfg)
	if err := chain.Validate(); err != nil {
		return err
	}

	driver, err := pickDriver()
	if err != nil {
		return err
	}

	monitoring.Logf("connecting to FCU at %s baud %d", cfg.GetConnect(), cfg.GetBaud())
	link, err := fcu.Dial(fcu.Config{
		Device:  cfg.GetConnect(),
		Baud:    cfg.GetBaud(),
		Timeout: cfg.GetConnectTimeout(),
	})
	if err != nil {
		return err
	}
	defer link.Close()

	// nudge the FCU clock relationship once at startup, then announce
	if err := link.SendTimesync(time.Now().UnixNano()); err != nil {
		monitoring.Logf("timesync: %v", err)
	}
	announce(link, cfg, chain)

	extractor := depth.Extractor{MinRangeM: cfg.GetMinRangeM(), MaxRangeM: cfg.GetMaxRangeM()}
	buf := &bridge.DistanceBuffer{}

	sched, err := bridge.NewScheduler(timeutil.RealClock{}, publishJobs(cfg, buf, link, extractor)...)
	if err != nil {
		if sendErr := link.SendStatusText(fcu.SeverityError, "No publication enabled, closing"); sendErr != nil {
			monitoring.Logf("status notice: %v", sendErr)
		}
		return err
	}

	acq := &bridge.Acquisition{
		Driver: driver,
		Specs: []camera.StreamSpec{
			{Type: camera.StreamDepth, Width: cfg.GetStreamWidth(), Height: cfg.GetStreamHeight(), Format: camera.FormatZ16, FPS: cfg.GetStreamFPS()},
		},
		Chain:          chain,
		Extractor:      extractor,
		Buffer:         buf,
		Clock:          timeutil.RealClock{},
		FrameTimeout:   5 * time.Second,
		ConnectBackoff: time.Second,
	}

	if *recordPath != "" {
		rec, err := recorder.Open(*recordPath)
		if err != nil {
			return err
		}
		defer rec.Close()
		monitoring.Logf("recording sweeps to %s, session %s", *recordPath, rec.Session())
		acq.Record = func(tsUsec uint64, dist depth.DistanceArray) {
			if err := rec.Record(tsUsec, dist); err != nil {
				monitoring.Logf("record sweep: %v", err)
			}
		}
	}

	preview := &viz.Preview{MaxRangeM: cfg.GetMaxRangeM()}
	if *listen != "" {
		acq.Preview = preview
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// acquisition owns process fate: an unrecoverable camera error ends the run
	var acqErr error
	acqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer stop()
		if err := acq.Run(acqCtx); err != nil && !errors.Is(err, context.Canceled) {
			acqErr = err
			monitoring.Logf("acquisition failed: %v", err)
		}
		monitoring.Logf("acquisition routine terminated")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
		monitoring.Logf("publish routine terminated")
	}()

	homeSetter := &bridge.HomeSetter{
		Link:      link,
		Input:     os.Stdin,
		Clock:     timeutil.RealClock{},
		Auto:      cfg.GetAutoSetEKFHome(),
		AutoDelay: 2 * time.Second,
		LatE7:     cfg.GetHomeLatE7(),
		LonE7:     cfg.GetHomeLonE7(),
		AltMm:     cfg.GetHomeAltMm(),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		homeSetter.Run(ctx)
		monitoring.Logf("home setter routine terminated")
	}()

	if *listen != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveDebug(ctx, *listen, preview, acq)
		}()
	}

	wg.Wait()

	if err := link.SendStatusText(fcu.SeverityNotice, "closing the script..."); err != nil {
		monitoring.Logf("shutdown notice: %v", err)
	}
	monitoring.Logf("graceful shutdown complete")
	return acqErr
}

// announce reports the effective configuration to the operator's ground
// station so a misconfigured bridge is visible from the GCS messages tab.
func announce(link fcu.Link, cfg *config.BridgeConfig, chain depth.Chain) {
	notices := []string{
		fmt.Sprintf("Connected to %s at %d", cfg.GetConnect(), cfg.GetBaud()),
		fmt.Sprintf("Sending at %.1f Hz", cfg.GetPublishHz()),
	}
	for _, notice := range notices {
		if err := link.SendStatusText(fcu.SeverityInfo, notice); err != nil {
			monitoring.Logf("status notice: %v", err)
		}
	}
	for _, spec := range chain {
		state := "not applied"
		if spec.Enabled {
			state = "applied"
		}
		monitoring.Logf("%s is %s", spec.Name, state)
	}
}

// serveDebug runs the debug HTTP listener until ctx is cancelled.
func serveDebug(ctx context.Context, addr string, preview *viz.Preview, acq *bridge.Acquisition) {
	mux := http.NewServeMux()
	mux.Handle("/preview", preview.Handler())
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, acq.State())
	})

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			monitoring.Logf("debug server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("debug server shutdown: %v", err)
	}
	monitoring.Logf("debug server routine stopped")
}
