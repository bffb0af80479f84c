// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cycle

import (
	"fmt"
	"strings"

	"github.com/wirecheck/wirecheck/services/wiring/diag"
)

// Cycle is one elementary cycle in the dependency graph. Nodes lists the
// classes in traversal order, starting at the canonical (lexicographically
// smallest) member; the closing edge back to Nodes[0] is implied.
type Cycle struct {
	Nodes []string `json:"nodes"`
}

// SelfLoop reports whether the cycle is a single class depending on itself.
func (c Cycle) SelfLoop() bool {
	return len(c.Nodes) == 1
}

// String renders the cycle as "A -> B -> A".
func (c Cycle) String() string {
	if len(c.Nodes) == 0 {
		return ""
	}
	return strings.Join(c.Nodes, " -> ") + " -> " + c.Nodes[0]
}

// key is the canonical identity used for deduplication. Two discoveries of
// the same elementary cycle through different entry nodes produce the same
// key because Nodes is rotated to start at the smallest member.
func (c Cycle) key() string {
	return strings.Join(c.Nodes, "\x00")
}

type color uint8

const (
	white color = iota // not yet visited
	gray               // on the current DFS path
	black              // fully explored
)

// Detector finds all distinct elementary cycles reachable in a graph.
//
// Description:
//
//	Depth-first search with white/gray/black coloring. Hitting a gray node
//	closes a cycle: the segment of the current path from that node onward is
//	recorded, rotated to its canonical start, and deduplicated. Traversal
//	continues past a discovered cycle, so every distinct cycle in a
//	component is found, not just the first.
//
// Thread Safety: stateless between calls; Detect allocates all traversal
// state per invocation.
type Detector struct {
	sink diag.Sink
}

// NewDetector creates a Detector reporting discovered cycles to the sink.
// A nil sink suppresses reporting; Detect still returns the cycles.
func NewDetector(sink diag.Sink) *Detector {
	return &Detector{sink: sink}
}

// Detect finds all distinct cycles in the graph.
//
// Outputs:
//
//	cycles - Every distinct elementary cycle, in discovery order. Each is
//	         also reported to the sink, self-loops with a dedicated message.
func (d *Detector) Detect(g *Graph) []Cycle {
	state := &traversal{
		colors:   make(map[string]color, g.NodeCount()),
		onPath:   make(map[string]int, 16),
		seen:     make(map[string]struct{}),
		detector: d,
	}

	for _, node := range g.Nodes() {
		if state.colors[node] == white {
			state.visit(g, node)
		}
	}
	return state.cycles
}

type traversal struct {
	colors   map[string]color
	path     []string
	onPath   map[string]int
	seen     map[string]struct{}
	cycles   []Cycle
	detector *Detector
}

func (t *traversal) visit(g *Graph, node string) {
	t.colors[node] = gray
	t.onPath[node] = len(t.path)
	t.path = append(t.path, node)

	for _, next := range g.Neighbors(node) {
		switch t.colors[next] {
		case white:
			t.visit(g, next)
		case gray:
			t.record(next)
		case black:
			// Explored subgraph; any cycle through it was already found.
		}
	}

	t.path = t.path[:len(t.path)-1]
	delete(t.onPath, node)
	t.colors[node] = black
}

// record captures the cycle closed by an edge back to entry, which is gray
// and therefore on the current path.
func (t *traversal) record(entry string) {
	start := t.onPath[entry]
	segment := t.path[start:]

	cycle := Cycle{Nodes: canonicalize(segment)}
	if _, dup := t.seen[cycle.key()]; dup {
		return
	}
	t.seen[cycle.key()] = struct{}{}
	t.cycles = append(t.cycles, cycle)
	t.detector.report(cycle)
}

func (d *Detector) report(c Cycle) {
	if d.sink == nil {
		return
	}
	if c.SelfLoop() {
		d.sink.Report(fmt.Sprintf("class %s depends on itself", c.Nodes[0]))
		return
	}
	d.sink.Report(fmt.Sprintf("dependency cycle detected: %s", c))
}

// canonicalize rotates the cycle to start at its lexicographically smallest
// node, preserving traversal order. The result is a fresh slice.
func canonicalize(nodes []string) []string {
	smallest := 0
	for i, node := range nodes {
		if node < nodes[smallest] {
			smallest = i
		}
	}
	rotated := make([]string, 0, len(nodes))
	rotated = append(rotated, nodes[smallest:]...)
	rotated = append(rotated, nodes[:smallest]...)
	return rotated
}
