package client

import (
	"context"
	"sync"
)

// RowPhase tracks a single task row through an optimistic mutation.
type RowPhase int

const (
	// RowStable means no mutation is in flight for the row.
	RowStable RowPhase = iota
	// RowPending means an optimistic value is showing while the server
	// call resolves. It always ends back at RowStable, either with the
	// server value or with the prior value and a recorded error.
	RowPending
)

// Store is an observable holder of the task collection plus loading
// and error state. Construct one per session and pass it by reference;
// it is not a package-level singleton. All mutation goes through its
// methods, and subscribers are notified on every state change.
type Store struct {
	mu      sync.Mutex
	remote  Remote
	tasks   []Task
	loading bool
	lastErr error
	phases  map[string]RowPhase

	// gens orders in-flight mutations per id. A mutation only gets to
	// resolve its optimistic state if no later mutation on the same id
	// has started since; operations on different ids stay independent.
	gens map[string]uint64

	subscribers map[int]func()
	nextSubID   int
}

func NewStore(remote Remote) *Store {
	return &Store{
		remote:      remote,
		phases:      make(map[string]RowPhase),
		gens:        make(map[string]uint64),
		subscribers: make(map[int]func()),
	}
}

// Subscribe registers a callback invoked after every state change.
// The returned function unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Tasks returns a copy of the current collection in display order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Phase reports the mutation phase of one row.
func (s *Store) Phase(id string) RowPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phases[id]
}

// FetchAll replaces the collection with server truth. On failure the
// previous collection is preserved and the error recorded.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	s.notify()

	tasks, err := s.remote.List(ctx)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = err
	} else {
		s.tasks = tasks
		s.lastErr = nil
	}
	s.mu.Unlock()
	s.notify()
	return err
}

// Add blocks on the server echo and prepends the canonical task. There
// is no optimistic insert because the id and timestamp only exist once
// the server assigns them.
func (s *Store) Add(ctx context.Context, title string) (Task, error) {
	task, err := s.remote.Create(ctx, title)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.notify()
		return Task{}, err
	}

	s.mu.Lock()
	s.tasks = append([]Task{task}, s.tasks...)
	s.lastErr = nil
	s.mu.Unlock()
	s.notify()
	return task, nil
}

// ToggleComplete flips the completed flag optimistically, then
// reconciles with the server. On failure only the flipped field
// reverts.
func (s *Store) ToggleComplete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	prior := s.tasks[idx].Completed
	next := !prior
	s.tasks[idx].Completed = next
	s.phases[id] = RowPending
	gen := s.bumpGen(id)
	s.mu.Unlock()
	s.notify()

	updated, err := s.remote.Update(ctx, id, TaskPatch{Completed: &next})

	s.mu.Lock()
	if s.gens[id] != gen {
		// A later mutation on this id owns the resolution now.
		s.mu.Unlock()
		return err
	}
	s.phases[id] = RowStable
	if idx = s.indexOf(id); idx >= 0 {
		if err != nil {
			s.tasks[idx].Completed = prior
		} else {
			s.tasks[idx] = updated
		}
	}
	if err != nil {
		s.lastErr = err
	} else {
		s.lastErr = nil
	}
	s.mu.Unlock()
	s.notify()
	return err
}

// Rename sets the title optimistically, keyed on the previous title
// for the revert path.
func (s *Store) Rename(ctx context.Context, id, title string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	prior := s.tasks[idx].Title
	s.tasks[idx].Title = title
	s.phases[id] = RowPending
	gen := s.bumpGen(id)
	s.mu.Unlock()
	s.notify()

	updated, err := s.remote.Update(ctx, id, TaskPatch{Title: &title})

	s.mu.Lock()
	if s.gens[id] != gen {
		s.mu.Unlock()
		return err
	}
	s.phases[id] = RowStable
	if idx = s.indexOf(id); idx >= 0 {
		if err != nil {
			s.tasks[idx].Title = prior
		} else {
			s.tasks[idx] = updated
		}
	}
	if err != nil {
		s.lastErr = err
	} else {
		s.lastErr = nil
	}
	s.mu.Unlock()
	s.notify()
	return err
}

// Remove filters the task out optimistically after snapshotting the
// whole collection. A failure restores the entire snapshot rather than
// re-inserting one row.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.indexOf(id) < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	snapshot := make([]Task, len(s.tasks))
	copy(snapshot, s.tasks)

	filtered := s.tasks[:0:0]
	for _, task := range s.tasks {
		if task.ID != id {
			filtered = append(filtered, task)
		}
	}
	s.tasks = filtered
	gen := s.bumpGen(id)
	s.mu.Unlock()
	s.notify()

	err := s.remote.Delete(ctx, id)

	s.mu.Lock()
	if s.gens[id] != gen {
		s.mu.Unlock()
		return err
	}
	if err != nil {
		s.tasks = snapshot
		s.lastErr = err
	} else {
		s.lastErr = nil
		delete(s.phases, id)
		delete(s.gens, id)
	}
	s.mu.Unlock()
	s.notify()
	return err
}

// Reorder moves the active task to the position of the over task. The
// result has exactly one moved element with all others in their
// original relative order. Ids that are not present make it a no-op.
// The new order is display state only; it is not persisted, so a full
// reload returns to server order.
func (s *Store) Reorder(activeID, overID string) {
	s.mu.Lock()
	from := s.indexOf(activeID)
	to := s.indexOf(overID)
	if from < 0 || to < 0 || from == to {
		s.mu.Unlock()
		return
	}

	moved := s.tasks[from]
	rest := append(s.tasks[:from:from], s.tasks[from+1:]...)
	reordered := make([]Task, 0, len(rest)+1)
	reordered = append(reordered, rest[:to]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[to:]...)
	s.tasks = reordered
	s.mu.Unlock()
	s.notify()
}

func (s *Store) indexOf(id string) int {
	for i, task := range s.tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) bumpGen(id string) uint64 {
	s.gens[id]++
	return s.gens[id]
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
