// Package monitoring exposes a process-wide error reporting hook. The
// scheduler and the MQTT publisher report through the package functions
// so that wiring an external backend is a single Init call at startup.
package monitoring

import (
	"sync"
	"time"
)

// Monitor receives errors and panics raised during optimization runs and
// plan publishing. Recover only takes effect when deferred directly, as in
// defer mon.Recover().
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards everything. It is the default until Init is called.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init installs the monitor used by the package functions. A nil monitor
// leaves the current one in place.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

// CaptureException reports err with optional tags. Nil errors are ignored
// so call sites do not need their own guard.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	mu.RLock()
	m := current
	mu.RUnlock()
	m.CaptureException(err, tags)
}

// Flush blocks until buffered reports are delivered or the timeout expires.
func Flush(d time.Duration) {
	mu.RLock()
	m := current
	mu.RUnlock()
	m.Flush(d)
}
