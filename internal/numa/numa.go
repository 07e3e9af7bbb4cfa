// Package numa provides best-effort NUMA-node enumeration and worker
// pinning. It is a peripheral collaborator to the scheduler: workers run
// correctly with every function here reduced to its stub behavior, which
// is exactly what happens on platforms without NUMA support.
package numa

// AssignRoundRobin returns a slice of length n giving each worker index
// a NUMA node, distributed round-robin across the nodes actually present
// (NodeCount()). Node 0 is used for every worker when only one node is
// present (the default on platforms without NUMA support).
func AssignRoundRobin(n int) []int {
	nodes := NodeCount()
	if nodes < 1 {
		nodes = 1
	}
	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = i % nodes
	}
	return assignment
}
