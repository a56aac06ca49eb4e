package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PushTokensStore keeps Expo push tokens per account. Duplicate
// registrations are harmless, removal is idempotent.
type PushTokensStore struct {
	db *pgxpool.Pool
}

func (s *PushTokensStore) Register(ctx context.Context, accountID, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  INSERT INTO push_tokens (account_id, token) VALUES ($1, $2)
	  ON CONFLICT DO NOTHING
	`
	_, err := s.db.Exec(ctx, query, accountID, token)
	return err
}

func (s *PushTokensStore) Remove(ctx context.Context, accountID, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `DELETE FROM push_tokens WHERE account_id = $1 AND token = $2`, accountID, token)
	return err
}

func (s *PushTokensStore) ListByAccount(ctx context.Context, accountID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT token FROM push_tokens WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
