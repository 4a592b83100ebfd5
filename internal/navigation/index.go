// Package navigation keeps the dashboard's previous/next pointers over the
// ordered candidate list.
package navigation

import "sync"

// Neighbors is the derived position of the current id inside the list.
// PrevID and NextID are nil at the ends and when the current id is unknown.
type Neighbors struct {
	PrevID *string `json:"prevId"`
	NextID *string `json:"nextId"`
	Index  int     `json:"index"`
	Total  int     `json:"total"`
}

// Index is an ordered, de-duplicated id list plus a current-id pointer.
// Subscribers always receive the latest Neighbors value; intermediate values
// may be skipped for a subscriber that is not reading.
type Index struct {
	mu      sync.Mutex
	ids     []string
	current string
	subs    map[int]chan Neighbors
	nextSub int
	closed  bool
}

func NewIndex() *Index {
	return &Index{subs: make(map[int]chan Neighbors)}
}

// SetList replaces the list. Empty ids are dropped and only the first
// occurrence of each id is kept.
func (x *Index) SetList(ids []string) {
	seen := make(map[string]struct{}, len(ids))
	list := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		list = append(list, id)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = list
	x.publish()
}

// SetCurrentID moves the pointer; "" clears it.
func (x *Index) SetCurrentID(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.current = id
	x.publish()
}

func (x *Index) CurrentID() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.current
}

func (x *Index) IDs() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]string, len(x.ids))
	copy(out, x.ids)
	return out
}

func (x *Index) Neighbors() Neighbors {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.neighbors()
}

// Subscribe returns a channel that immediately holds the current Neighbors
// and is refreshed after every SetList or SetCurrentID. cancel closes it, as
// does Close. Subscribing to a closed index yields a closed channel.
func (x *Index) Subscribe() (<-chan Neighbors, func()) {
	ch := make(chan Neighbors, 1)

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		close(ch)
		return ch, func() {}
	}
	id := x.nextSub
	x.nextSub++
	x.subs[id] = ch
	ch <- x.neighbors()

	cancel := func() {
		x.mu.Lock()
		defer x.mu.Unlock()
		if _, ok := x.subs[id]; ok {
			delete(x.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Close ends every subscription. Later list and pointer changes are still
// applied but nobody is notified.
func (x *Index) Close() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.closed = true
	for id, ch := range x.subs {
		delete(x.subs, id)
		close(ch)
	}
}

func (x *Index) neighbors() Neighbors {
	n := Neighbors{Index: -1, Total: len(x.ids)}
	if x.current == "" {
		return n
	}
	for i, id := range x.ids {
		if id != x.current {
			continue
		}
		n.Index = i
		if i > 0 {
			prev := x.ids[i-1]
			n.PrevID = &prev
		}
		if i < len(x.ids)-1 {
			next := x.ids[i+1]
			n.NextID = &next
		}
		break
	}
	return n
}

// publish must be called with mu held.
func (x *Index) publish() {
	n := x.neighbors()
	for _, ch := range x.subs {
		select {
		case <-ch:
		default:
		}
		ch <- n
	}
}
