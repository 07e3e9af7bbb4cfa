package sched

import "sync"

var (
	registryMu  sync.Mutex
	systemSched *Scheduler
)

// GetSystemScheduler returns the process-wide default Scheduler,
// constructing it lazily on first call with the given nominal priority
// (Normal if omitted; the priority argument is only consulted on the
// call that triggers construction — later calls just return the
// existing instance, matching the source's static-local semantics).
// The default instance lives until process exit; nothing tears it down
// automatically.
func GetSystemScheduler(priority ...Priority) *Scheduler {
	registryMu.Lock()
	defer registryMu.Unlock()

	if systemSched != nil {
		return systemSched
	}

	p := Normal
	if len(priority) > 0 {
		p = priority[0]
	}
	cfg := defaultConfig()
	cfg.Priority = p.String()
	systemSched = New(cfg)
	return systemSched
}

// SetSystemScheduler installs a caller-provided Scheduler as the
// process-wide default, overriding any lazily-constructed instance.
func SetSystemScheduler(s *Scheduler) {
	registryMu.Lock()
	defer registryMu.Unlock()
	systemSched = s
}
