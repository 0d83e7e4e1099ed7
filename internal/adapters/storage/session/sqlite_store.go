package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meetup/internal/adapters/storage"
	domain "meetup/internal/domain/session"
)

// SQLiteStore implements Store using the session table.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Create inserts a session under a fresh token.
// PRE: s.ExpiresAt is in the future
// POST: One row is inserted
func (s *SQLiteStore) Create(ctx context.Context, sess domain.Session) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session (token, data, expires_at) VALUES (?, ?, ?)
	`, token, string(data), sess.ExpiresAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

// Get returns the live session for token or domain.ErrNotFound.
// INVARIANT: Expired rows are never returned
func (s *SQLiteStore) Get(ctx context.Context, token string) (domain.Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM session WHERE token = ? AND expires_at > ?
	`, token, s.now().UnixNano()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("select session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

// Update replaces the stored session data; the expiry follows sess.ExpiresAt.
// POST: Exactly one row is updated, or domain.ErrNotFound is returned
func (s *SQLiteStore) Update(ctx context.Context, token string, sess domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE session SET data = ?, expires_at = ? WHERE token = ?
	`, string(data), sess.ExpiresAt.UnixNano(), token)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the session row.
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM session WHERE expires_at <= ?
	`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
