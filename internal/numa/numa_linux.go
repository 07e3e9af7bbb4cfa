//go:build linux

package numa

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const sysNodePath = "/sys/devices/system/node"

// NodeCount returns the number of NUMA nodes visible to this process, by
// counting nodeN entries under /sys/devices/system/node. Returns 1 if the
// directory is absent or unreadable (no NUMA topology, e.g. a single-node
// VM or container without the sysfs mount).
func NodeCount() int {
	entries, err := os.ReadDir(sysNodePath)
	if err != nil {
		return 1
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if name, ok := strings.CutPrefix(e.Name(), "node"); ok {
			if _, err := strconv.Atoi(name); err == nil {
				count++
			}
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// PinCurrentThread pins the calling OS thread to the CPUs belonging to
// the given NUMA node via sched_setaffinity(2). The caller must have
// already locked the goroutine to its OS thread (runtime.LockOSThread)
// for this to have any lasting effect. Errors are non-fatal: a failed
// pin just means the worker runs unpinned, which is functionally
// harmless (NUMA pinning is a throughput optimization, not a
// correctness requirement).
func PinCurrentThread(node int) error {
	cpus, err := cpusForNode(node)
	if err != nil || len(cpus) == 0 {
		return err
	}
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		set.Set(cpu)
	}
	return unix.SchedSetaffinity(0, &set)
}

func cpusForNode(node int) ([]int, error) {
	dir := sysNodePath + "/node" + strconv.Itoa(node)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var cpus []int
	for _, e := range entries {
		name, ok := strings.CutPrefix(e.Name(), "cpu")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(name); err == nil {
			cpus = append(cpus, n)
		}
	}
	return cpus, nil
}
