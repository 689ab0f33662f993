package bridge

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/depthbridge/internal/fcu"
	"github.com/banshee-data/depthbridge/internal/timeutil"
)

func newTestHomeSetter(link fcu.Link, input io.Reader) *HomeSetter {
	return &HomeSetter{
		Link:  link,
		Input: input,
		Clock: timeutil.RealClock{},
		LatE7: 151269321,
		LonE7: 16624301,
		AltMm: 163000,
	}
}

func TestHomeSetterFiresOnEmptyLine(t *testing.T) {
	link := &fcu.MockLink{}
	h := newTestHomeSetter(link, strings.NewReader("\n"))

	h.Run(context.Background()) // returns at EOF

	require.Equal(t, []string{"Set EKF home with default GPS location"}, link.Statuses)
	require.Len(t, link.Origins, 1)
	require.Len(t, link.Homes, 1)
	require.Equal(t, int32(151269321), link.Origins[0].LatE7)
	require.Equal(t, int32(16624301), link.Homes[0].LonE7)
	require.Equal(t, int32(163000), link.Homes[0].AltMm)
}

func TestHomeSetterIgnoresOtherInput(t *testing.T) {
	link := &fcu.MockLink{}
	h := newTestHomeSetter(link, strings.NewReader("help\nstatus\n"))

	h.Run(context.Background())

	require.Empty(t, link.Origins)
	require.Empty(t, link.Homes)
}

func TestHomeSetterAutoFiresAfterGraceDelay(t *testing.T) {
	link := &fcu.MockLink{}
	blocked, _ := io.Pipe() // never delivers input
	h := newTestHomeSetter(link, blocked)
	h.Auto = true
	h.AutoDelay = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return link.OriginCount() == 1 && link.HomeCount() == 1
	}, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestHomeSetterStopsOnCancel(t *testing.T) {
	link := &fcu.MockLink{}
	blocked, _ := io.Pipe()
	h := newTestHomeSetter(link, blocked)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not unwind on cancellation")
	}
}
