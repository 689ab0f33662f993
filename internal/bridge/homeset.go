package bridge

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/banshee-data/depthbridge/internal/fcu"
	"github.com/banshee-data/depthbridge/internal/monitoring"
	"github.com/banshee-data/depthbridge/internal/timeutil"
)

// HomeSetter is the input-driven auxiliary task: it blocks on operator
// input and, on an empty line, pushes the default EKF origin and home
// position to the FCU. With Auto set it also fires once on its own after a
// short grace delay. It touches only the vehicle link, never the pipeline.
type HomeSetter struct {
	Link      fcu.Link
	Input     io.Reader
	Clock     timeutil.Clock
	Auto      bool
	AutoDelay time.Duration

	LatE7 int32
	LonE7 int32
	AltMm int32
}

// Run blocks until ctx is cancelled or the input closes.
func (h *HomeSetter) Run(ctx context.Context) {
	if h.Auto {
		// give the FCU a moment to start accepting messages after connect
		timer := h.Clock.NewTimer(h.AutoDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
			h.setHome()
		}
	}

	// scan in a goroutine so the blocking read never holds up cancellation
	lines := make(chan string)
	go func() {
		defer close(lines)
		scan := bufio.NewScanner(h.Input)
		for scan.Scan() {
			select {
			case lines <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line == "" {
				h.setHome()
			} else {
				monitoring.Logf("ignoring input %q (press Enter to set EKF home)", line)
			}
		}
	}
}

func (h *HomeSetter) setHome() {
	if err := h.Link.SendStatusText(fcu.SeverityInfo, "Set EKF home with default GPS location"); err != nil {
		monitoring.Logf("home notice: %v", err)
	}
	if err := h.Link.SendGlobalOrigin(h.LatE7, h.LonE7, h.AltMm); err != nil {
		monitoring.Logf("set global origin: %v", err)
	}
	if err := h.Link.SendHomePosition(h.LatE7, h.LonE7, h.AltMm); err != nil {
		monitoring.Logf("set home position: %v", err)
	}
}
