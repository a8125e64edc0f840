package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type mockRemote struct {
	listFn   func(ctx context.Context) ([]Task, error)
	createFn func(ctx context.Context, title string) (Task, error)
	updateFn func(ctx context.Context, id string, patch TaskPatch) (Task, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockRemote) List(ctx context.Context) ([]Task, error) {
	return m.listFn(ctx)
}

func (m *mockRemote) Get(ctx context.Context, id string) (Task, error) {
	return Task{}, ErrNotFound
}

func (m *mockRemote) Create(ctx context.Context, title string) (Task, error) {
	return m.createFn(ctx, title)
}

func (m *mockRemote) Update(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	return m.updateFn(ctx, id, patch)
}

func (m *mockRemote) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// echoRemote behaves like a healthy backend over an in-memory map.
func echoRemote() *mockRemote {
	byID := make(map[string]Task)
	order := []string{}
	nextID := 0

	return &mockRemote{
		listFn: func(ctx context.Context) ([]Task, error) {
			tasks := make([]Task, 0, len(order))
			for _, id := range order {
				tasks = append(tasks, byID[id])
			}
			return tasks, nil
		},
		createFn: func(ctx context.Context, title string) (Task, error) {
			nextID++
			task := Task{
				ID:        fmt.Sprintf("task-%d", nextID),
				Title:     title,
				OwnerID:   "u1",
				CreatedAt: time.Now().UTC().Format(time.RFC3339),
			}
			byID[task.ID] = task
			order = append(order, task.ID)
			return task, nil
		},
		updateFn: func(ctx context.Context, id string, patch TaskPatch) (Task, error) {
			task, ok := byID[id]
			if !ok {
				return Task{}, ErrNotFound
			}
			if patch.Title != nil {
				task.Title = *patch.Title
			}
			if patch.Completed != nil {
				task.Completed = *patch.Completed
			}
			byID[id] = task
			return task, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			if _, ok := byID[id]; !ok {
				return ErrNotFound
			}
			delete(byID, id)
			for i, existing := range order {
				if existing == id {
					order = append(order[:i], order[i+1:]...)
					break
				}
			}
			return nil
		},
	}
}

func seededStore(titles ...string) *Store {
	remote := echoRemote()
	store := NewStore(remote)
	for _, title := range titles {
		store.Add(context.Background(), title)
	}
	return store
}

func TestFetchAllReplacesOnSuccess(t *testing.T) {
	remote := echoRemote()
	remote.Create(context.Background(), "Buy milk")
	store := NewStore(remote)

	if err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Errorf("Unexpected tasks: %+v", tasks)
	}
	if store.IsLoading() {
		t.Error("Expected loading flag cleared")
	}
}

func TestFetchAllPreservesCollectionOnFailure(t *testing.T) {
	store := seededStore("Keep me")

	remote := store.remote.(*mockRemote)
	remote.listFn = func(ctx context.Context) ([]Task, error) {
		return nil, &APIError{Status: 500, Message: "boom"}
	}

	err := store.FetchAll(context.Background())
	if err == nil {
		t.Fatal("Expected an error")
	}
	if len(store.Tasks()) != 1 {
		t.Error("Expected previous collection preserved on failure")
	}
	if store.Err() == nil {
		t.Error("Expected error recorded")
	}
}

func TestAddToggleRemoveScenario(t *testing.T) {
	store := NewStore(echoRemote())
	ctx := context.Background()

	task, err := store.Add(ctx, "Buy milk")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].Completed {
		t.Fatalf("Expected one open task, got %+v", tasks)
	}

	if err := store.ToggleComplete(ctx, task.ID); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !store.Tasks()[0].Completed {
		t.Error("Expected task completed after toggle")
	}

	if err := store.Remove(ctx, task.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(store.Tasks()) != 0 {
		t.Error("Expected empty store after remove")
	}
}

func TestToggleTwiceIsIdempotent(t *testing.T) {
	store := seededStore("Water plants")
	id := store.Tasks()[0].ID
	ctx := context.Background()

	store.ToggleComplete(ctx, id)
	store.ToggleComplete(ctx, id)

	if store.Tasks()[0].Completed {
		t.Error("Expected two toggles to restore original state")
	}
}

func TestRenameRevertsOnFailure(t *testing.T) {
	store := seededStore("Original title")
	id := store.Tasks()[0].ID

	remote := store.remote.(*mockRemote)
	remote.updateFn = func(ctx context.Context, id string, patch TaskPatch) (Task, error) {
		return Task{}, &APIError{Status: 500, Message: "boom"}
	}

	err := store.Rename(context.Background(), id, "New title")
	if err == nil {
		t.Fatal("Expected an error")
	}
	if got := store.Tasks()[0].Title; got != "Original title" {
		t.Errorf("Expected title reverted, got %q", got)
	}
	if store.Err() == nil {
		t.Error("Expected error recorded")
	}
	if store.Phase(id) != RowStable {
		t.Error("Expected row back to stable after revert")
	}
}

func TestRemoveRestoresSnapshotOnFailure(t *testing.T) {
	store := seededStore("One", "Two", "Three")
	before := store.Tasks()
	id := before[1].ID

	remote := store.remote.(*mockRemote)
	remote.deleteFn = func(ctx context.Context, id string) error {
		return &APIError{Status: 500, Message: "boom"}
	}

	err := store.Remove(context.Background(), id)
	if err == nil {
		t.Fatal("Expected an error")
	}

	after := store.Tasks()
	if len(after) != len(before) {
		t.Fatalf("Expected full snapshot restored, got %d tasks", len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("Expected original order at %d, got %s", i, after[i].ID)
		}
	}
}

func TestReorderSplice(t *testing.T) {
	store := seededStore("D", "C", "B", "A")

	ids := map[string]string{}
	for _, task := range store.Tasks() {
		ids[task.Title] = task.ID
	}

	// Display order is [A,B,C,D] since Add prepends.
	store.Reorder(ids["C"], ids["A"])

	var titles []string
	for _, task := range store.Tasks() {
		titles = append(titles, task.Title)
	}
	want := []string{"C", "A", "B", "D"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, titles)
		}
	}
}

func TestReorderAbsentIDIsNoOp(t *testing.T) {
	store := seededStore("B", "A")
	before := store.Tasks()

	store.Reorder("missing", before[0].ID)
	store.Reorder(before[0].ID, "missing")

	after := store.Tasks()
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Fatal("Expected sequence unchanged for absent ids")
		}
	}
}

func TestPendingPhaseIsObservable(t *testing.T) {
	store := seededStore("Slow one")
	id := store.Tasks()[0].ID

	release := make(chan struct{})
	remote := store.remote.(*mockRemote)
	remote.updateFn = func(ctx context.Context, id string, patch TaskPatch) (Task, error) {
		<-release
		return Task{ID: id, Title: "Slow one", Completed: *patch.Completed}, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- store.ToggleComplete(context.Background(), id)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for store.Phase(id) != RowPending {
		if time.Now().After(deadline) {
			t.Fatal("Expected row to enter pending phase")
		}
		time.Sleep(time.Millisecond)
	}
	if !store.Tasks()[0].Completed {
		t.Error("Expected optimistic value visible while pending")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if store.Phase(id) != RowStable {
		t.Error("Expected row back to stable")
	}
}

func TestLaterMutationSupersedesEarlierResolution(t *testing.T) {
	store := seededStore("Contended")
	id := store.Tasks()[0].ID

	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	call := 0
	remote := store.remote.(*mockRemote)
	remote.updateFn = func(ctx context.Context, taskID string, patch TaskPatch) (Task, error) {
		call++
		if call == 1 {
			close(firstEntered)
			<-releaseFirst
			return Task{}, &APIError{Status: 500, Message: "late failure"}
		}
		return Task{ID: taskID, Title: "Contended", Completed: *patch.Completed}, nil
	}

	firstDone := make(chan struct{})
	go func() {
		store.ToggleComplete(context.Background(), id)
		close(firstDone)
	}()
	<-firstEntered

	// Second toggle starts while the first is still in flight and
	// resolves immediately with completed=false.
	if err := store.ToggleComplete(context.Background(), id); err != nil {
		t.Fatalf("Second toggle failed: %v", err)
	}

	close(releaseFirst)
	<-firstDone

	// The first toggle's failure must not revert the second's result.
	if store.Tasks()[0].Completed {
		t.Error("Expected the later mutation's value to stand")
	}
	if store.Phase(id) != RowStable {
		t.Error("Expected row stable after both resolutions")
	}
}

func TestSubscribersNotifiedOnChange(t *testing.T) {
	store := NewStore(echoRemote())

	calls := 0
	unsubscribe := store.Subscribe(func() { calls++ })

	store.Add(context.Background(), "Notify me")
	if calls == 0 {
		t.Fatal("Expected subscriber notified on add")
	}

	unsubscribe()
	before := calls
	store.Add(context.Background(), "Silent")
	if calls != before {
		t.Error("Expected no notification after unsubscribe")
	}
}

func TestMutationOnMissingIDFails(t *testing.T) {
	store := NewStore(echoRemote())

	if err := store.ToggleComplete(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Remove(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
