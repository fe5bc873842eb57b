package store

import "context"

// Store persists session state. LoadSession returns (nil, nil) when the
// session does not exist.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	SaveSession(ctx context.Context, s *SessionState) error
	LoadSession(ctx context.Context, id string) (*SessionState, error)
	ListSessions(ctx context.Context) ([]SessionSummary, error)
	DeleteSession(ctx context.Context, id string) error
}
