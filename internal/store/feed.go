package store

import (
	"sync"

	"github.com/theirongolddev/aurion/internal/model"
)

// subscriber holds at most one pending snapshot. A newer snapshot replaces an
// undelivered older one, and an older one never replaces a newer.
type subscriber struct {
	mu      sync.Mutex
	ch      chan model.Snapshot
	version int64
	seen    bool
	closed  bool
}

func (s *subscriber) offer(snap model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || (s.seen && snap.Version < s.version) {
		return
	}
	s.seen = true
	s.version = snap.Version
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// feed fans collection snapshots out to subscribers and remembers the highest
// version published per collection.
type feed struct {
	mu        sync.RWMutex
	nextSubID int
	subs      map[model.Collection]map[int]*subscriber
	published map[model.Collection]int64
}

func newFeed() *feed {
	return &feed{
		subs:      make(map[model.Collection]map[int]*subscriber),
		published: make(map[model.Collection]int64),
	}
}

func (f *feed) addSubscriber(c model.Collection) (int, *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSubID++
	id := f.nextSubID
	sub := &subscriber{ch: make(chan model.Snapshot, 1)}
	if f.subs[c] == nil {
		f.subs[c] = make(map[int]*subscriber)
	}
	f.subs[c][id] = sub
	return id, sub
}

func (f *feed) removeSubscriber(c model.Collection, id int) {
	f.mu.Lock()
	sub, ok := f.subs[c][id]
	delete(f.subs[c], id)
	f.mu.Unlock()
	if ok {
		sub.close()
	}
}

func (f *feed) hasSubscribers(c model.Collection) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[c]) > 0
}

func (f *feed) subscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, m := range f.subs {
		n += len(m)
	}
	return n
}

func (f *feed) lastPublished(c model.Collection) int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.published[c]
}

func (f *feed) markPublished(c model.Collection, version int64) {
	f.mu.Lock()
	if version > f.published[c] {
		f.published[c] = version
	}
	f.mu.Unlock()
}

func (f *feed) publish(snap model.Snapshot) {
	f.mu.Lock()
	if snap.Version > f.published[snap.Collection] {
		f.published[snap.Collection] = snap.Version
	}
	subs := make([]*subscriber, 0, len(f.subs[snap.Collection]))
	for _, sub := range f.subs[snap.Collection] {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	for _, sub := range subs {
		sub.offer(snap)
	}
}

func (f *feed) closeAll() {
	f.mu.Lock()
	var subs []*subscriber
	for c, m := range f.subs {
		for _, sub := range m {
			subs = append(subs, sub)
		}
		delete(f.subs, c)
	}
	f.mu.Unlock()
	for _, sub := range subs {
		sub.close()
	}
}
