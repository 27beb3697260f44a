package card

import (
	"container/list"
	"context"
	"sync"

	"gameboard/backend/internal/models"

	"golang.org/x/sync/singleflight"
)

// Registry keeps one card per game id. A new snapshot for an id marks the
// cached card stale and replaces its local copy. With Options.CacheSize set,
// the least recently used card is dropped once the cap is reached.
type Registry struct {
	store Store
	opts  Options

	mu    sync.Mutex
	cards map[string]*list.Element
	lru   *list.List
	group singleflight.Group
}

type entry struct {
	id   string
	card *Card
}

// NewRegistry returns an empty registry reading from store.
func NewRegistry(store Store, opts Options) *Registry {
	return &Registry{
		store: store,
		opts:  opts,
		cards: make(map[string]*list.Element),
		lru:   list.New(),
	}
}

// Observe hands a fresh snapshot to the card for snapshot.ID, creating the
// card on first sight.
func (r *Registry) Observe(snapshot *models.Game) *Card {
	r.mu.Lock()
	if el, ok := r.cards[snapshot.ID]; ok {
		r.lru.MoveToFront(el)
		c := el.Value.(*entry).card
		r.mu.Unlock()
		c.Sync(snapshot)
		return c
	}

	c := New(snapshot, r.opts)
	r.cards[snapshot.ID] = r.lru.PushFront(&entry{id: snapshot.ID, card: c})
	for r.opts.CacheSize > 0 && r.lru.Len() > r.opts.CacheSize {
		oldest := r.lru.Back()
		r.lru.Remove(oldest)
		delete(r.cards, oldest.Value.(*entry).id)
	}
	r.mu.Unlock()
	return c
}

// Load reads the game from the store and observes it. Concurrent loads of the
// same id share one read. The shared read is not cancelled when one of the
// callers goes away; each caller stops waiting on its own context.
func (r *Registry) Load(ctx context.Context, id string) (*Card, error) {
	read := context.WithoutCancel(ctx)
	ch := r.group.DoChan(id, func() (interface{}, error) {
		g, err := r.store.Get(read, id)
		if err != nil {
			return nil, err
		}
		return &g, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return r.Observe(res.Val.(*models.Game)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Lookup returns the cached card for id without touching the store.
func (r *Registry) Lookup(id string) (*Card, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.cards[id]
	if !ok {
		return nil, false
	}
	r.lru.MoveToFront(el)
	return el.Value.(*entry).card, true
}

// Forget drops the cached card for id.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.cards[id]; ok {
		r.lru.Remove(el)
		delete(r.cards, id)
	}
}

// Len returns the number of cached cards.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Len()
}

// Store returns the store the registry reads from.
func (r *Registry) Store() Store {
	return r.store
}
