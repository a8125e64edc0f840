package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListRunsRecordsThroughMapper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/todos" || r.Method != http.MethodGet {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Record{
			{ID: "1", Title: "First", UserID: "u1", CreatedAt: "2025-06-01T10:00:00Z"},
			{ID: "2", Title: "Second", Completed: true, UserID: "u1"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	tasks, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].OwnerID != "u1" {
		t.Errorf("Expected mapped owner, got %s", tasks[0].OwnerID)
	}
	if !tasks[1].Completed {
		t.Error("Expected second task completed")
	}
}

func TestCreateSendsTitleAndBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["title"] != "Buy milk" {
			t.Errorf("Expected title in body, got %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Record{ID: "new-id", Title: body["title"], UserID: "u1"})
	}))
	defer server.Close()

	c := NewClient(server.URL, WithToken("tok-1"))
	task, err := c.Create(context.Background(), "Buy milk")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.ID != "new-id" {
		t.Errorf("Expected server id, got %s", task.ID)
	}
}

func TestErrorTranslation(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 is terminal unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":"invalid_token","message":"Invalid or expired token"}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUnauthorized) {
					t.Errorf("Expected ErrUnauthorized, got %v", err)
				}
			},
		},
		{
			name:   "404 is not found",
			status: http.StatusNotFound,
			body:   `{"error":"not_found","message":"Todo not found"}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound, got %v", err)
				}
			},
		},
		{
			name:   "403 masks as not found",
			status: http.StatusForbidden,
			body:   `{"error":"forbidden"}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound, got %v", err)
				}
			},
		},
		{
			name:   "400 is a validation error",
			status: http.StatusBadRequest,
			body:   `{"error":"validation_error","message":"Title must not be empty"}`,
			check: func(t *testing.T, err error) {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("Expected ValidationError, got %v", err)
				}
				if vErr.Message != "Title must not be empty" {
					t.Errorf("Unexpected message: %s", vErr.Message)
				}
			},
		},
		{
			name:   "500 is a generic api error",
			status: http.StatusInternalServerError,
			body:   `{"error":"internal_error"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("Expected APIError, got %v", err)
				}
				if apiErr.Status != http.StatusInternalServerError {
					t.Errorf("Unexpected status: %d", apiErr.Status)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(server.URL)
			_, err := c.Get(context.Background(), "some-id")
			if err == nil {
				t.Fatal("Expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestCheckAuthDistinguishesSessionFromFailure(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)

	authed, err := c.CheckAuth(context.Background())
	if err != nil || !authed {
		t.Errorf("Expected authenticated, got %v %v", authed, err)
	}

	status = http.StatusUnauthorized
	authed, err = c.CheckAuth(context.Background())
	if err != nil {
		t.Errorf("Expected no error on plain 401, got %v", err)
	}
	if authed {
		t.Error("Expected unauthenticated")
	}
}

func TestHasProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profile/check" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"has_profile":true}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	has, err := c.HasProfile(context.Background())
	if err != nil {
		t.Fatalf("HasProfile failed: %v", err)
	}
	if !has {
		t.Error("Expected has_profile true")
	}
}
