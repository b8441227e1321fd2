package dispatch

import (
	"sync"
	"time"
)

type recordMonitor struct {
	mu   sync.Mutex
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.mu.Lock()
	r.err = err
	r.tags = tags
	r.mu.Unlock()
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func (r *recordMonitor) get() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
