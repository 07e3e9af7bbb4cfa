package sched

// DispatchBridge is the seam a platform-specific scheduler variant would
// implement to route Schedule onto a host dispatch facility (e.g. a
// libdispatch global queue), matching the source's macos_system_scheduler
// subtype. *Scheduler itself satisfies this interface, so callers that
// only need the submission contract can depend on the interface instead
// of the concrete type.
type DispatchBridge interface {
	Schedule(task Task, priority ...Priority)
}

var _ DispatchBridge = (*Scheduler)(nil)
