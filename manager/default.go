package manager

import (
	"sync"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/switches"
	"github.com/johncrim/logjam/writer"
	"github.com/johncrim/logjam/writer/backgroundwriter"
	"github.com/johncrim/logjam/writer/consolewriter"
)

var (
	defaultOnce sync.Once
	defaultMu   sync.RWMutex
	defaultTM   *TraceManager
)

// Default returns the process default TraceManager, lazily building
// one that routes every name at Info and above to the console through
// background dispatch. Intended for top-level entry points; libraries
// should accept an explicitly constructed manager instead.
func Default() *TraceManager {
	defaultOnce.Do(func() {
		tm := NewTraceManager(Config{
			Writers: []TraceWriterConfig{{
				Writer: consolewriter.Config{
					Pipeline: []writer.PipelineInitializer{backgroundwriter.Initializer{}},
				},
				Switches: switches.NewSwitchSet().
					Add("", switches.NewThresholdSwitch(core.InfoLevel)),
			}},
		})
		defaultMu.Lock()
		if defaultTM == nil {
			defaultTM = tm
		}
		defaultMu.Unlock()
	})
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultTM
}

// SetDefault replaces the process default TraceManager.
func SetDefault(tm *TraceManager) {
	defaultMu.Lock()
	defaultTM = tm
	defaultMu.Unlock()
}

// GetTracer returns a tracer from the default manager.
func GetTracer(name string) *Tracer {
	return Default().GetTracer(name)
}
