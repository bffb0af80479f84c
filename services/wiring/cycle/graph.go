// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cycle builds the bean dependency graph and finds its cycles.
package cycle

import "sort"

// Graph is a directed dependency graph over beans, keyed by qualified class
// name. Nodes and edges are identified by name only; the graph never holds
// class symbols, so two references to the same class can never diverge.
//
// Thread Safety: not safe for concurrent mutation. A graph is built by one
// goroutine during a pass and is read-only afterwards.
type Graph struct {
	nodes map[string]struct{}
	edges map[string]map[string]struct{}
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[string]map[string]struct{}),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	g.nodes[name] = struct{}{}
}

// AddEdge adds a directed edge, creating both endpoints as needed.
// Duplicate edges collapse.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	adjacency, ok := g.edges[from]
	if !ok {
		adjacency = make(map[string]struct{})
		g.edges[from] = adjacency
	}
	adjacency[to] = struct{}{}
}

// HasEdge reports whether the directed edge exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edges[from][to]
	return ok
}

// Nodes returns all node names in sorted order.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Neighbors returns the edge targets of a node in sorted order. Traversal
// over sorted adjacency makes detection output deterministic across runs.
func (g *Graph) Neighbors(name string) []string {
	adjacency := g.edges[name]
	if len(adjacency) == 0 {
		return nil
	}
	targets := make([]string, 0, len(adjacency))
	for target := range adjacency {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, adjacency := range g.edges {
		count += len(adjacency)
	}
	return count
}
