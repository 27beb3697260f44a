package card

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gameboard/backend/internal/auth"
	"gameboard/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps games in memory and enforces the version check.
type fakeStore struct {
	mu      sync.Mutex
	games   map[string]models.Game
	failErr error
	gets    int
	writes  []models.Game
	block   chan struct{}
	entered chan struct{}

	getBlock   chan struct{}
	getEntered chan struct{}
}

func newFakeStore(games ...models.Game) *fakeStore {
	fs := &fakeStore{games: make(map[string]models.Game)}
	for _, g := range games {
		fs.games[g.ID] = g.Clone()
	}
	return fs
}

func (fs *fakeStore) Get(ctx context.Context, id string) (models.Game, error) {
	if fs.getEntered != nil {
		fs.getEntered <- struct{}{}
	}
	if fs.getBlock != nil {
		select {
		case <-fs.getBlock:
		case <-ctx.Done():
			return models.Game{}, ctx.Err()
		}
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.gets++
	g, ok := fs.games[id]
	if !ok {
		return models.Game{}, ErrNotFound
	}
	return g.Clone(), nil
}

func (fs *fakeStore) Replace(ctx context.Context, g models.Game, expectedVersion int64) (models.Game, error) {
	if fs.entered != nil {
		fs.entered <- struct{}{}
	}
	if fs.block != nil {
		select {
		case <-fs.block:
		case <-ctx.Done():
			return models.Game{}, ctx.Err()
		}
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.failErr != nil {
		return models.Game{}, fs.failErr
	}
	cur, ok := fs.games[g.ID]
	if !ok {
		return models.Game{}, ErrNotFound
	}
	if cur.Version != expectedVersion {
		return models.Game{}, ErrConflict
	}
	stored := g.Clone()
	stored.Version = expectedVersion + 1
	fs.games[g.ID] = stored
	fs.writes = append(fs.writes, stored.Clone())
	return stored.Clone(), nil
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notices[len(r.notices)-1]
}

func testGame(playersNeeded int, joined ...string) models.Game {
	return models.Game{
		ID:            "g1",
		Title:         "Sunday pickup",
		Description:   "5v5 at the park",
		GameType:      "soccer",
		PlayersNeeded: playersNeeded,
		Creator:       "host@x.com",
		RentalID:      "rental-42",
		Date:          time.Date(2026, 10, 25, 10, 0, 0, 0, time.UTC),
		Duration:      90,
		JoinedPlayers: joined,
		Version:       1,
	}
}

var alice = auth.Identity{Email: "a@x.com"}

func TestSyncReplacesOnNewSnapshot(t *testing.T) {
	first := testGame(3)
	c := New(&first, Options{})

	// same object: no resync
	assert.False(t, c.Sync(&first))

	snapshots := []models.Game{testGame(2, "b@x.com"), testGame(5), testGame(0, "c@x.com", "d@x.com")}
	for i := range snapshots {
		s := snapshots[i]
		s.Title = "update"
		require.True(t, c.Sync(&s))
		assert.Equal(t, s, c.Game())
		view := c.View(alice)
		assert.Equal(t, s.PlayersNeeded, view.PlayersNeeded)
		assert.Equal(t, s.Title, view.Title)
		assert.Equal(t, s.RentalID, view.WhenAndWhere)
	}
}

func TestSyncCopiesRoster(t *testing.T) {
	snap := testGame(2, "b@x.com")
	c := New(&snap, Options{})
	snap.JoinedPlayers[0] = "mutated@x.com"
	assert.Equal(t, []string{"b@x.com"}, c.Game().JoinedPlayers)
}

func TestSyncIgnoresNil(t *testing.T) {
	snap := testGame(2)
	c := New(&snap, Options{})
	assert.False(t, c.Sync(nil))
	assert.Equal(t, 2, c.Game().PlayersNeeded)
}

func TestAvailablePredicate(t *testing.T) {
	tests := []struct {
		name   string
		needed int
		joined []string
		email  string
		want   bool
	}{
		{"open and new", 2, nil, "a@x.com", true},
		{"open but joined", 2, []string{"a@x.com"}, "a@x.com", false},
		{"full", 0, nil, "a@x.com", false},
		{"negative", -1, nil, "a@x.com", false},
		{"anonymous passes membership", 1, []string{"a@x.com"}, "", true},
		{"anonymous vs empty entry", 1, []string{""}, "", false},
		{"other user joined", 1, []string{"b@x.com"}, "a@x.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGame(tt.needed, tt.joined...)
			assert.Equal(t, tt.want, Available(g, tt.email))

			c := New(&g, Options{})
			v := c.View(auth.Identity{Email: tt.email})
			assert.Equal(t, tt.want, v.ActionEnabled)
			if tt.want {
				assert.Equal(t, "Join Game", v.ActionLabel)
				assert.Equal(t, StateAvailable, v.State)
			} else {
				assert.Equal(t, "Not Available", v.ActionLabel)
				assert.Equal(t, StateUnavailable, v.State)
			}
		})
	}
}

func TestApplyArithmetic(t *testing.T) {
	g := testGame(4, "b@x.com")
	next := Apply(g, alice)

	assert.Equal(t, 3, next.PlayersNeeded)
	assert.Equal(t, []string{"b@x.com", "a@x.com"}, next.JoinedPlayers)
	// input untouched
	assert.Equal(t, 4, g.PlayersNeeded)
	assert.Equal(t, []string{"b@x.com"}, g.JoinedPlayers)
}

func TestApplyHasNoFloor(t *testing.T) {
	next := Apply(testGame(0), alice)
	assert.Equal(t, -1, next.PlayersNeeded)
}

func TestJoinSuccess(t *testing.T) {
	g := testGame(2)
	store := newFakeStore(g)
	rec := &noticeRecorder{}
	c := New(&g, Options{RequireIdentity: true})

	stored, err := c.Join(context.Background(), alice, store, rec)
	require.NoError(t, err)

	assert.Equal(t, 1, stored.PlayersNeeded)
	assert.Equal(t, []string{"a@x.com"}, stored.JoinedPlayers)
	assert.Equal(t, int64(2), stored.Version)
	assert.Equal(t, stored, c.Game())
	assert.Equal(t, Notice{Success: true, Message: "Joined the game!"}, rec.last())

	// the joiner now sees a disabled control, someone else still can join
	assert.False(t, c.View(alice).ActionEnabled)
	assert.True(t, c.View(auth.Identity{Email: "b@x.com"}).ActionEnabled)

	require.Len(t, store.writes, 1)
	assert.Equal(t, "Sunday pickup", store.writes[0].Title)
}

func TestJoinFailureLeavesStateUnchanged(t *testing.T) {
	g := testGame(2, "b@x.com")
	store := newFakeStore(g)
	store.failErr = errors.New("unavailable")
	rec := &noticeRecorder{}
	c := New(&g, Options{RequireIdentity: true})
	before := c.Game()

	_, err := c.Join(context.Background(), alice, store, rec)
	require.Error(t, err)

	assert.Equal(t, before, c.Game())
	assert.Equal(t, Notice{Success: false, Message: "Failed to join the game. Please try again."}, rec.last())
	assert.Equal(t, StateAvailable, c.State(alice))
}

func TestJoinConflictIsReported(t *testing.T) {
	g := testGame(1)
	store := newFakeStore(g)

	// two cards loaded from the same version, as two browser tabs would be
	tab1 := New(&g, Options{RequireIdentity: true})
	g2 := g.Clone()
	tab2 := New(&g2, Options{RequireIdentity: true})

	_, err := tab1.Join(context.Background(), alice, store, nil)
	require.NoError(t, err)

	_, err = tab2.Join(context.Background(), auth.Identity{Email: "b@x.com"}, store, nil)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, tab2.Game().PlayersNeeded)

	stored, _ := store.Get(context.Background(), "g1")
	assert.Equal(t, 0, stored.PlayersNeeded)
	assert.Equal(t, []string{"a@x.com"}, stored.JoinedPlayers)
}

func TestJoinAnonymousHazard(t *testing.T) {
	g := testGame(2, "b@x.com")
	store := newFakeStore(g)
	c := New(&g, Options{RequireIdentity: false})

	stored, err := c.Join(context.Background(), auth.Anonymous, store, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stored.PlayersNeeded)
	assert.Equal(t, []string{"b@x.com"}, stored.JoinedPlayers)
}

func TestJoinAnonymousRejected(t *testing.T) {
	g := testGame(2)
	store := newFakeStore(g)
	c := New(&g, Options{RequireIdentity: true})

	_, err := c.Join(context.Background(), auth.Anonymous, store, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, store.writes)
}

func TestJoinWhenFull(t *testing.T) {
	g := testGame(0, "b@x.com")
	store := newFakeStore(g)
	c := New(&g, Options{RequireIdentity: true})

	assert.False(t, c.View(alice).ActionEnabled)
	_, err := c.Join(context.Background(), alice, store, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, store.writes)
}

func TestJoinTwiceIsRejected(t *testing.T) {
	g := testGame(3)
	store := newFakeStore(g)
	c := New(&g, Options{RequireIdentity: true})

	_, err := c.Join(context.Background(), alice, store, nil)
	require.NoError(t, err)
	_, err = c.Join(context.Background(), alice, store, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Len(t, store.writes, 1)
}

func TestJoinIsNotReentrant(t *testing.T) {
	g := testGame(3)
	store := newFakeStore(g)
	store.block = make(chan struct{})
	store.entered = make(chan struct{}, 1)
	c := New(&g, Options{RequireIdentity: true})

	done := make(chan error, 1)
	go func() {
		_, err := c.Join(context.Background(), alice, store, nil)
		done <- err
	}()
	<-store.entered

	assert.Equal(t, StateJoining, c.State(alice))
	assert.False(t, c.View(alice).ActionEnabled)
	_, err := c.Join(context.Background(), alice, store, nil)
	assert.ErrorIs(t, err, ErrJoinInProgress)

	close(store.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateUnavailable, c.State(alice))
	assert.Equal(t, StateAvailable, c.State(auth.Identity{Email: "b@x.com"}))
}

func TestJoinInFlightDoesNotBlockOthers(t *testing.T) {
	g := testGame(3)
	store := newFakeStore(g)
	store.block = make(chan struct{})
	store.entered = make(chan struct{}, 2)
	c := New(&g, Options{RequireIdentity: true, JoinTimeout: 50 * time.Millisecond})
	bob := auth.Identity{Email: "b@x.com"}

	done := make(chan error, 1)
	go func() {
		_, err := c.Join(context.Background(), alice, store, nil)
		done <- err
	}()
	<-store.entered

	// bob still sees an open slot while alice's write is pending
	assert.Equal(t, StateJoining, c.State(alice))
	assert.Equal(t, StateAvailable, c.State(bob))
	v := c.View(bob)
	assert.True(t, v.ActionEnabled)
	assert.Equal(t, "Join Game", v.ActionLabel)

	// alice's write times out and leaves the record untouched
	assert.ErrorIs(t, <-done, context.DeadlineExceeded)
	assert.Equal(t, 3, c.Game().PlayersNeeded)
	assert.Equal(t, StateAvailable, c.State(alice))

	close(store.block)
	stored, err := c.Join(context.Background(), bob, store, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.PlayersNeeded)
	assert.Equal(t, []string{"b@x.com"}, stored.JoinedPlayers)
}

func TestJoinTimeout(t *testing.T) {
	g := testGame(3)
	store := newFakeStore(g)
	store.block = make(chan struct{})
	rec := &noticeRecorder{}
	c := New(&g, Options{RequireIdentity: true, JoinTimeout: 10 * time.Millisecond})

	_, err := c.Join(context.Background(), alice, store, rec)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, rec.last().Success)
	assert.Equal(t, 3, c.Game().PlayersNeeded)
}

func TestScenarioZeroSlotsAtMount(t *testing.T) {
	g := testGame(0)
	c := New(&g, Options{})
	for _, id := range []auth.Identity{alice, auth.Anonymous, {Email: "z@x.com"}} {
		v := c.View(id)
		assert.False(t, v.ActionEnabled)
		assert.Equal(t, "Not Available", v.ActionLabel)
	}
}
