package recipient

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgSource struct {
	pool *pgxpool.Pool
}

// NewPgSource returns a Source reading from the users/devices directory
// tables. Expired devices are excluded.
func NewPgSource(pool *pgxpool.Pool) Source {
	return &pgSource{pool: pool}
}

// ListTokens pages with LIMIT/OFFSET. The fan-out side walks the whole
// recipient set exactly once front to back, so offset paging is fine
// here; the drain side is the one that needs a keyset cursor.
func (s *pgSource) ListTokens(ctx context.Context, countryID int64, pageSize, page int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.token
		FROM devices d
		INNER JOIN users u ON d.user_id = u.id
		WHERE u.country_id = $1
		  AND d.expired = FALSE
		ORDER BY d.id
		LIMIT $2 OFFSET $3`,
		countryID, pageSize, page*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list recipient tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan recipient token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
