//go:build !linux

package numa

// NodeCount always reports a single node on platforms without a sysfs
// NUMA topology (macOS, Windows, BSD).
func NodeCount() int { return 1 }

// PinCurrentThread is a documented no-op on platforms without
// sched_setaffinity. Workers simply run unpinned.
func PinCurrentThread(node int) error { return nil }
