package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lorelink/internal/rpg"
	"lorelink/internal/store"
	"lorelink/internal/worldinfo"
)

func (c *Client) SaveSession(ctx context.Context, s *store.SessionState) error {
	dbJSON, err := json.Marshal(s.Database)
	if err != nil {
		return fmt.Errorf("marshaling database: %w", err)
	}
	statsJSON, err := json.Marshal(s.Stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	historyJSON, err := json.Marshal(s.History)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	query := `
	INSERT INTO sessions (id, name, turn, updated_at, database_json, stats_json, history_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		turn = excluded.turn,
		updated_at = excluded.updated_at,
		database_json = excluded.database_json,
		stats_json = excluded.stats_json,
		history_json = excluded.history_json
	`
	_, err = c.db.ExecContext(ctx, query,
		s.ID,
		s.Name,
		s.Turn,
		time.Now().UTC().Format(time.RFC3339Nano),
		dbJSON,
		statsJSON,
		historyJSON,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (c *Client) LoadSession(ctx context.Context, id string) (*store.SessionState, error) {
	query := `
	SELECT id, name, turn, updated_at, database_json, stats_json, history_json
	FROM sessions WHERE id = ?
	`
	row := c.db.QueryRowContext(ctx, query, id)

	var s store.SessionState
	var updatedAt string
	var dbJSON, statsJSON, historyJSON []byte
	err := row.Scan(&s.ID, &s.Name, &s.Turn, &updatedAt, &dbJSON, &statsJSON, &historyJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	if err := json.Unmarshal(dbJSON, &s.Database); err != nil {
		return nil, fmt.Errorf("unmarshaling database: %w", err)
	}
	if err := json.Unmarshal(statsJSON, &s.Stats); err != nil {
		return nil, fmt.Errorf("unmarshaling stats: %w", err)
	}
	if err := json.Unmarshal(historyJSON, &s.History); err != nil {
		return nil, fmt.Errorf("unmarshaling history: %w", err)
	}
	if s.Database == nil {
		s.Database = &rpg.Database{}
	}
	if s.Stats == nil {
		s.Stats = make(map[string]worldinfo.Stats)
	}
	return &s, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]store.SessionSummary, error) {
	query := `SELECT id, name, turn, updated_at FROM sessions ORDER BY updated_at DESC`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []store.SessionSummary
	for rows.Next() {
		var s store.SessionSummary
		var updatedAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.Turn, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
