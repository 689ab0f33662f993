package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = fmt.Sprintf(format, v...)
	})
	Logf("hello %s", "world")
	if captured != "hello world" {
		t.Errorf("captured = %q, want %q", captured, "hello world")
	}

	// nil installs a no-op logger rather than leaving a nil func
	SetLogger(nil)
	Logf("should not panic")
}
