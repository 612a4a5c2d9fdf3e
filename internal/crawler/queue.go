package crawler

// Queue is the FIFO frontier of discovered but unprocessed links.
// It performs no deduplication: a link may sit in the queue several times
// and the visited set decides at pop time.
type Queue struct {
	items []Link
	head  int
}

// NewQueue creates a queue seeded with the given links
func NewQueue(seeds ...Link) *Queue {
	q := &Queue{items: make([]Link, 0, len(seeds))}
	q.Push(seeds...)
	return q
}

// Push appends links to the back of the queue
func (q *Queue) Push(links ...Link) {
	q.items = append(q.items, links...)
}

// Pop removes and returns the first link.
// Returns ("", false) if the queue is empty.
func (q *Queue) Pop() (Link, bool) {
	if q.head >= len(q.items) {
		return "", false
	}

	link := q.items[q.head]
	q.items[q.head] = ""
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array
	if q.head > 64 && q.head*2 >= len(q.items) {
		q.items = append(make([]Link, 0, len(q.items)-q.head), q.items[q.head:]...)
		q.head = 0
	}

	return link, true
}

// IsEmpty returns true if the queue has no items
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}

// Size returns the current number of items in the queue
func (q *Queue) Size() int {
	return len(q.items) - q.head
}

// entries returns a snapshot of the pending links in queue order
func (q *Queue) entries() []Link {
	entries := make([]Link, q.Size())
	copy(entries, q.items[q.head:])
	return entries
}
