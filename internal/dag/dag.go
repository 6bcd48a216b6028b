// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for dependency ordering
// and cycle detection. It backs the category graph of the composition container:
// nodes are category names and an edge from A to B means "A must be resolved
// before B".
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle contains the nodes left over once no further node could be peeled off.
		// These are the nodes on, or downstream of, the cycle.
		Cycle []string
	}

	// Graph is a directed graph for topological sorting.
	// Nodes are identified by string keys. Self-edges are ignored: a node that
	// lists itself as a dependency is not considered cyclic.
	Graph struct {
		// adjacency maps each node to its outgoing neighbors (nodes that depend on it).
		adjacency map[string][]string
		// nodes tracks all nodes in insertion order.
		nodes []string
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" must come before "to".
// Both nodes are implicitly added if they don't exist. Self-edges only register the node.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if from == to {
		return
	}
	g.adjacency[from] = append(g.adjacency[from], to)
}

// HasNode reports whether the node was added to the graph.
func (g *Graph) HasNode(name string) bool {
	return g.nodeSet[name]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Clone returns an independent copy of the graph. Mutating the copy never
// affects the receiver, which lets callers simulate edges before committing them.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		adjacency: make(map[string][]string, len(g.adjacency)),
		nodes:     slices.Clone(g.nodes),
		nodeSet:   make(map[string]bool, len(g.nodeSet)),
	}
	for node, neighbors := range g.adjacency {
		c.adjacency[node] = slices.Clone(neighbors)
	}
	for node := range g.nodeSet {
		c.nodeSet[node] = true
	}
	return c
}

// Levels peels the graph in Kahn-style rounds: each round removes every node
// whose remaining in-degree is zero. Nodes within a round are sorted
// lexicographically, so the result is identical for identical graphs no matter
// the insertion order. A round that peels nothing while nodes remain yields a
// CycleError.
func (g *Graph) Levels() ([][]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	remaining := len(g.nodes)
	peeled := make(map[string]bool, len(g.nodes))
	var levels [][]string
	for remaining > 0 {
		var round []string
		for _, node := range g.nodes {
			if !peeled[node] && inDegree[node] == 0 {
				round = append(round, node)
			}
		}

		if len(round) == 0 {
			var cycleNodes []string
			for _, node := range g.nodes {
				if !peeled[node] {
					cycleNodes = append(cycleNodes, node)
				}
			}
			slices.Sort(cycleNodes)
			return nil, &CycleError{Cycle: cycleNodes}
		}

		slices.Sort(round)
		for _, node := range round {
			peeled[node] = true
			for _, neighbor := range g.adjacency[node] {
				inDegree[neighbor]--
			}
		}
		remaining -= len(round)
		levels = append(levels, round)
	}

	return levels, nil
}

// TopologicalSort returns the flattened Levels order.
// Returns CycleError if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	if levels == nil {
		return nil, nil
	}

	result := make([]string, 0, len(g.nodes))
	for _, level := range levels {
		result = append(result, level...)
	}
	return result, nil
}
