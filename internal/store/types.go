package store

import (
	"time"

	"lorelink/internal/rpg"
	"lorelink/internal/worldinfo"
)

// SessionState is everything the engine carries across turns for one
// roleplay session. The engine never performs its own I/O; the orchestrator
// loads a state, runs turns on it and saves the result.
type SessionState struct {
	ID        string
	Name      string
	Turn      int
	UpdatedAt time.Time
	Database  *rpg.Database
	Stats     map[string]worldinfo.Stats
	History   []string
}

type SessionSummary struct {
	ID        string
	Name      string
	Turn      int
	UpdatedAt time.Time
}
