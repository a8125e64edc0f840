package client

import "time"

// Record is the wire shape the server persists and returns.
type Record struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

// Task is the application-facing shape consumed by stores and views.
// CreatedAt stays a string; malformed timestamps pass through untouched
// and are only parsed when a consumer asks for them.
type Task struct {
	ID        string
	Title     string
	Completed bool
	OwnerID   string
	CreatedAt string
}

// CreatedTime parses the creation timestamp lazily. The zero time and
// false are returned when the server sent something unparseable.
func (t Task) CreatedTime() (time.Time, bool) {
	parsed, err := time.Parse(time.RFC3339, t.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// ToTask converts a wire record into a Task.
func ToTask(r Record) Task {
	return Task{
		ID:        r.ID,
		Title:     r.Title,
		Completed: r.Completed,
		OwnerID:   r.UserID,
		CreatedAt: r.CreatedAt,
	}
}

// ToRecord converts a Task back into the wire shape. The owner comes
// from the caller, not the task, mirroring the server's rule that
// ownership is never taken from a payload.
func ToRecord(t Task, ownerID string) Record {
	return Record{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		UserID:    ownerID,
		CreatedAt: t.CreatedAt,
	}
}
