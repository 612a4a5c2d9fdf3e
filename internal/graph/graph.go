package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/alvmarrod/rank-weaver/internal/storage"
	"github.com/sirupsen/logrus"
)

// Node is a graph vertex for one indexed page
type Node struct {
	ID  string
	URL string
	in  map[string]*Node // source ID -> source
	out map[string]*Node // destination ID -> destination
}

// Parents returns the sources of incoming edges, sorted by ID
func (n *Node) Parents() []*Node {
	return sortedNodes(n.in)
}

// Children returns the destinations of outgoing edges, sorted by ID
func (n *Node) Children() []*Node {
	return sortedNodes(n.out)
}

// InDegree returns the number of incoming edges
func (n *Node) InDegree() int {
	return len(n.in)
}

// OutDegree returns the number of outgoing edges
func (n *Node) OutDegree() int {
	return len(n.out)
}

// Edge is a directed edge between two node IDs
type Edge struct {
	From string
	To   string
}

// Graph is a directed link graph over indexed pages
type Graph struct {
	nodes     map[string]*Node // ID -> node
	order     []string
	edgeCount int
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}

// AddNode returns the node with the given ID, creating it if needed
func (g *Graph) AddNode(id, url string) *Node {
	if node, exists := g.nodes[id]; exists {
		return node
	}

	node := &Node{
		ID:  id,
		URL: url,
		in:  make(map[string]*Node),
		out: make(map[string]*Node),
	}
	g.nodes[id] = node
	g.order = append(g.order, id)
	return node
}

// AddEdge inserts a directed edge. Self-loops are rejected and repeated
// edges collapse into one. Returns true if a new edge was added.
func (g *Graph) AddEdge(fromID, toID string) (bool, error) {
	from, exists := g.nodes[fromID]
	if !exists {
		return false, fmt.Errorf("source node %s not found", fromID)
	}
	to, exists := g.nodes[toID]
	if !exists {
		return false, fmt.Errorf("target node %s not found", toID)
	}
	if fromID == toID {
		return false, fmt.Errorf("self-loop on node %s", fromID)
	}
	if _, dup := from.out[toID]; dup {
		return false, nil
	}

	from.out[toID] = to
	to.in[fromID] = from
	g.edgeCount++
	return true, nil
}

// Node returns a node by ID, or nil
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in insertion order
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges ordered by source then destination
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edgeCount)
	for _, node := range g.Nodes() {
		for _, child := range node.Children() {
			edges = append(edges, Edge{From: node.ID, To: child.ID})
		}
	}
	return edges
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// GetStats returns current graph statistics
func (g *Graph) GetStats() (nodeCount, edgeCount int) {
	return len(g.nodes), g.edgeCount
}

// Flush writes all nodes and edges to storage under runID
func (g *Graph) Flush(store *storage.Storage, runID string) error {
	startTime := time.Now()
	logrus.Info("Starting graph flush to database...")

	pages := make([]storage.Page, 0, len(g.order))
	for _, node := range g.Nodes() {
		pages = append(pages, storage.Page{RunID: runID, PageID: node.ID, URL: node.URL})
	}
	if err := store.InsertPages(pages); err != nil {
		return fmt.Errorf("failed to flush nodes: %w", err)
	}

	edges := make([]storage.Edge, 0, g.edgeCount)
	for _, edge := range g.Edges() {
		edges = append(edges, storage.Edge{RunID: runID, FromPageID: edge.From, ToPageID: edge.To})
	}
	if err := store.InsertEdges(edges); err != nil {
		return fmt.Errorf("failed to flush edges: %w", err)
	}

	logrus.Infof("Flush complete: %d nodes, %d edges written in %v", len(pages), len(edges), time.Since(startTime))
	return nil
}

func sortedNodes(set map[string]*Node) []*Node {
	nodes := make([]*Node, 0, len(set))
	for _, node := range set {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}
