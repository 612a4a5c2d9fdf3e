package pagerank

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/alvmarrod/rank-weaver/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

// buildGraph creates nodes P1..Pn and the given edges
func buildGraph(t *testing.T, n int, edges [][2]int) *graph.Graph {
	t.Helper()
	g := graph.New()
	for i := 1; i <= n; i++ {
		g.AddNode(fmt.Sprintf("P%d", i), fmt.Sprintf("http://site/%d", i))
	}
	for _, e := range edges {
		_, err := g.AddEdge(fmt.Sprintf("P%d", e[0]), fmt.Sprintf("P%d", e[1]))
		require.NoError(t, err)
	}
	return g
}

func maxDeviationFromUniform(ranks Table) float64 {
	uniform := 1.0 / float64(len(ranks))
	var dev float64
	for _, v := range ranks {
		dev = math.Max(dev, math.Abs(v-uniform))
	}
	return dev
}

func TestRankSingleVertexStaysOne(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, 1, nil)
	e := New(0.15, DefaultPasses)

	passes := 0
	e.OnPass = func(_ int, ranks Table) {
		passes++
		assert.Equal(t, 1.0, ranks["P1"])
	}

	ranks := e.Rank(g)
	assert.Equal(t, Table{"P1": 1.0}, ranks)
	assert.Equal(t, DefaultPasses, passes)
}

func TestRankMutualPairIsHalfRegardlessOfAlpha(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, 2, [][2]int{{1, 2}, {2, 1}})
	for _, alpha := range []float64{0.01, 0.15, 0.5, 0.85, 1.0} {
		ranks := New(alpha, 50).Rank(g)
		assert.InDelta(t, 0.5, ranks["P1"], tolerance, "alpha %v", alpha)
		assert.InDelta(t, 0.5, ranks["P2"], tolerance, "alpha %v", alpha)
	}
}

func TestRankThreeCycle(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, 3, [][2]int{{1, 2}, {2, 3}, {3, 1}})
	ranks := New(0.15, 50).Rank(g)

	require.Len(t, ranks, 3)
	for id, v := range ranks {
		assert.InDelta(t, 1.0/3.0, v, 1e-6, id)
	}
}

func TestRankSinkStillSumsToOne(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, 2, [][2]int{{1, 2}})
	ranks := New(0.15, 50).Rank(g)

	assert.InDelta(t, 1.0, ranks.Sum(), tolerance)
	assert.Greater(t, ranks["P2"], ranks["P1"])

	// P1 has no parents so raw(P1) = alpha/2 every pass; the normalized
	// iteration converges to the positive root of (1-a)r^2 + a*r - a/2 = 0.
	a := 0.15
	want := (-a + math.Sqrt(a*a+2*a*(1-a))) / (2 * (1 - a))
	assert.InDelta(t, want, ranks["P1"], tolerance)
	assert.InDelta(t, 1-want, ranks["P2"], tolerance)
}

func TestRankSumsToOneAfterEveryPass(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	n := 25
	var edges [][2]int
	seen := make(map[[2]int]bool)
	for i := 0; i < 80; i++ {
		e := [2]int{rng.Intn(n) + 1, rng.Intn(n) + 1}
		if e[0] == e[1] || seen[e] {
			continue
		}
		seen[e] = true
		edges = append(edges, e)
	}
	g := buildGraph(t, n, edges)

	e := New(0.15, 50)
	var seenPasses []int
	e.OnPass = func(pass int, ranks Table) {
		seenPasses = append(seenPasses, pass)
		assert.InDelta(t, 1.0, ranks.Sum(), tolerance, "pass %d", pass)
		assert.Len(t, ranks, n)
	}

	final := e.Rank(g)
	assert.InDelta(t, 1.0, final.Sum(), tolerance)
	assert.Len(t, seenPasses, 50)
	assert.Equal(t, 1, seenPasses[0])
	assert.Equal(t, 50, seenPasses[49])
}

func TestRankHigherAlphaMovesTowardUniform(t *testing.T) {
	t.Parallel()

	// Star: everything points at P2, P2 points back at P1
	g := buildGraph(t, 4, [][2]int{{1, 2}, {3, 2}, {4, 2}, {2, 1}})

	low := maxDeviationFromUniform(New(0.15, 50).Rank(g))
	high := maxDeviationFromUniform(New(0.9, 50).Rank(g))
	full := maxDeviationFromUniform(New(1.0, 50).Rank(g))

	assert.Greater(t, low, high)
	assert.Less(t, full, 1e-12)
}

func TestRankIsDeterministic(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, 5, [][2]int{{1, 2}, {1, 3}, {2, 3}, {3, 1}, {4, 3}, {5, 4}})
	assert.Equal(t, New(0.15, 50).Rank(g), New(0.15, 50).Rank(g))
}

func TestRankRunsExactlyConfiguredPasses(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, 3, [][2]int{{1, 2}, {2, 3}, {3, 1}})
	for _, passes := range []int{1, 7} {
		e := New(0.15, passes)
		calls := 0
		e.OnPass = func(int, Table) { calls++ }
		e.Rank(g)
		assert.Equal(t, passes, calls)
	}

	assert.Equal(t, DefaultPasses, New(0.15, 0).Passes)
}

func TestRankEmptyGraph(t *testing.T) {
	t.Parallel()

	assert.Empty(t, New(0.15, 50).Rank(graph.New()))
}
