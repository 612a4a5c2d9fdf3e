package graph

import (
	"fmt"
	"sort"
)

// Build resolves recorded outlinks into a graph over indexed pages.
//
// index maps page URL to node ID and defines the vertex set; pending maps a
// source URL to its outbound URLs. Sources without an ID are ignored, as are
// destinations without an ID, self-references and repeated destinations.
// The result depends only on the two inputs.
func Build(index map[string]string, pending map[string][]string) *Graph {
	g := New()

	urls := make([]string, 0, len(index))
	for url := range index {
		urls = append(urls, url)
	}
	sort.Slice(urls, func(i, j int) bool { return index[urls[i]] < index[urls[j]] })

	for _, url := range urls {
		g.AddNode(index[url], url)
	}

	for _, source := range urls {
		sourceID := index[source]
		seen := make(map[string]struct{})

		for _, dest := range pending[source] {
			if dest == source {
				continue
			}
			if _, dup := seen[dest]; dup {
				continue
			}
			seen[dest] = struct{}{}

			destID, indexed := index[dest]
			if !indexed || destID == sourceID {
				continue
			}
			mustAddEdge(g, sourceID, destID)
		}
	}

	return g
}

// mustAddEdge adds an edge whose endpoints are known vertices
func mustAddEdge(g *Graph, fromID, toID string) {
	if _, err := g.AddEdge(fromID, toID); err != nil {
		panic(fmt.Sprintf("graph build: %v", err))
	}
}
