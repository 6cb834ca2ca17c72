package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/repo-explorer/internal/apperror"
	"github.com/sakif/repo-explorer/internal/model"
	"github.com/sakif/repo-explorer/internal/repository"
)

var _ repository.SessionRepository = (*DB)(nil)

// SaveSession upserts the state stored under id.
func (db *DB) SaveSession(ctx context.Context, id string, state model.SearchState) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, username, sort_order, current_page, total_pages, total_known, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			username     = excluded.username,
			sort_order   = excluded.sort_order,
			current_page = excluded.current_page,
			total_pages  = excluded.total_pages,
			total_known  = excluded.total_known,
			updated_at   = excluded.updated_at`,
		id,
		state.Username,
		string(state.Sort),
		state.Page,
		state.TotalPages,
		state.TotalKnown,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving session %s: %w", id, err)
	}
	return nil
}

// GetSession loads the state stored under id.
func (db *DB) GetSession(ctx context.Context, id string) (*model.SearchState, error) {
	var (
		state model.SearchState
		sort  string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT username, sort_order, current_page, total_pages, total_known
		 FROM sessions
		 WHERE id = ?`,
		id,
	).Scan(
		&state.Username,
		&sort,
		&state.Page,
		&state.TotalPages,
		&state.TotalKnown,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}

	// Rows written by an older build may carry an unknown order.
	state.Sort, err = model.ParseSortOrder(sort)
	if err != nil {
		state.Sort = model.SortDescending
	}

	return &state, nil
}

// DeleteSession removes the session. Deleting an unknown id returns ErrNotFound.
func (db *DB) DeleteSession(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting session %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("session", id)
	}
	return nil
}
