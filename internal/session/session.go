package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pharmasupply/m/domain"
)

// Store maps opaque tokens to identity snapshots with a TTL. It is the
// only component that reads or writes the sessions table.
type Store struct {
	db  *sqlx.DB
	ttl time.Duration
}

// New constructs a Store. Sessions live for ttl after creation.
func New(db *sqlx.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl}
}

// Create stores a snapshot of the signed-in account under a fresh random
// token and returns the token.
func (s *Store) Create(identity domain.Identity) (string, error) {
	token := uuid.NewString()
	data, err := json.Marshal(identity)
	if err != nil {
		return "", err
	}
	expiresAt := time.Now().Add(s.ttl).Unix()
	_, err = s.db.Exec(
		`INSERT INTO sessions (id, user_id, user_type, user_data, expires_at) VALUES (?, ?, ?, ?, ?)`,
		token, identity.ID, identity.Role, string(data), expiresAt)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the identity for a token that exists and has not
// expired, or nil. Expired rows are left for the sweeper; callers cannot
// tell an expired token from an unknown one.
func (s *Store) Resolve(token string) (*domain.Identity, error) {
	if token == "" {
		return nil, nil
	}
	var data string
	err := s.db.Get(&data,
		`SELECT user_data FROM sessions WHERE id = ? AND expires_at > ?`,
		token, time.Now().Unix())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var identity domain.Identity
	if err := json.Unmarshal([]byte(data), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Revoke deletes the session for a token. Unknown tokens are a no-op.
func (s *Store) Revoke(token string) error {
	if token == "" {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, token)
	return err
}

// Sweep deletes every expired session and reports how many were removed.
func (s *Store) Sweep() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartSweeper sweeps expired sessions on the given interval until stop
// is closed. It runs off the request path.
func (s *Store) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed, err := s.Sweep()
				if err != nil {
					log.Printf("session sweep failed: %v", err)
					continue
				}
				log.Printf("cleaned %d expired sessions", removed)
			case <-stop:
				return
			}
		}
	}()
}
