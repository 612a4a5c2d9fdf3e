// Package pagerank scores graph vertices with a fixed number of PageRank
// passes.
//
// Each pass computes, for every vertex v,
//
//	raw(v) = (1-alpha) * sum(rank(p) / outDegree(p) for parents p) + alpha/N
//
// and then rescales all raw values so they sum to one. The rescaling is the
// only compensation for mass held by vertices without outgoing edges; there
// is no separate dangling-vertex redistribution.
package pagerank

import (
	"github.com/alvmarrod/rank-weaver/internal/graph"
)

// DefaultPasses is the number of passes run when none is configured
const DefaultPasses = 50

// Table maps a node ID to its rank
type Table map[string]float64

// Sum returns the total rank mass in the table
func (t Table) Sum() float64 {
	var sum float64
	for _, v := range t {
		sum += v
	}
	return sum
}

// Engine runs PageRank over a built graph
type Engine struct {
	Alpha  float64
	Passes int
	// OnPass, if set, receives each pass number (1-based) and the table it produced
	OnPass func(pass int, ranks Table)
}

// New creates an engine with teleportation probability alpha
func New(alpha float64, passes int) *Engine {
	if passes <= 0 {
		passes = DefaultPasses
	}
	return &Engine{Alpha: alpha, Passes: passes}
}

// Rank computes the final rank table for g. Callers must not rank an empty
// graph; doing so yields an empty table.
func (e *Engine) Rank(g *graph.Graph) Table {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return Table{}
	}

	position := make(map[string]int, n)
	for i, node := range nodes {
		position[node.ID] = i
	}

	// Parent positions in ID order keep the summation order, and therefore
	// the floating-point result, independent of map iteration.
	parents := make([][]int, n)
	outDegree := make([]float64, n)
	for i, node := range nodes {
		outDegree[i] = float64(node.OutDegree())
		for _, parent := range node.Parents() {
			parents[i] = append(parents[i], position[parent.ID])
		}
	}

	teleport := e.Alpha / float64(n)
	ranks := make([]float64, n)
	for i := range ranks {
		ranks[i] = 1.0 / float64(n)
	}

	for pass := 1; pass <= e.Passes; pass++ {
		raw := make([]float64, n)
		var total float64

		for i := range nodes {
			var inflow float64
			for _, p := range parents[i] {
				inflow += ranks[p] / outDegree[p]
			}
			raw[i] = (1-e.Alpha)*inflow + teleport
			total += raw[i]
		}

		for i := range raw {
			raw[i] /= total
		}
		ranks = raw

		if e.OnPass != nil {
			e.OnPass(pass, toTable(nodes, ranks))
		}
	}

	return toTable(nodes, ranks)
}

func toTable(nodes []*graph.Node, ranks []float64) Table {
	table := make(Table, len(nodes))
	for i, node := range nodes {
		table[node.ID] = ranks[i]
	}
	return table
}
