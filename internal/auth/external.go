package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
)

// ExternalIdentity delegates token verification to a hosted identity
// provider. The provider answers with the stable opaque user id for the
// session; nothing is cached locally, so a revoked session is rejected
// on the next request.
type ExternalIdentity struct {
	baseURL string
	client  *http.Client
}

func NewExternalIdentity(baseURL string) *ExternalIdentity {
	return &ExternalIdentity{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (e *ExternalIdentity) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/sessions/verify", nil)
	if err != nil {
		return uuid.Nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := e.client.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return uuid.Nil, ErrInvalidToken
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return uuid.Nil, fmt.Errorf("malformed identity provider response: %w", err)
	}

	userID, err := uuid.FromString(body.UserID)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}
