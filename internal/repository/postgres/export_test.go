package postgres

import "context"

// Truncate empties the weather table between test cases.
func Truncate(ctx context.Context, r *PostgresRepository) error {
	_, err := r.pool.Exec(ctx, `TRUNCATE weather`)
	return err
}
