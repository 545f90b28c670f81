// internal/specialists/property-search/postgres.go
package propertysearch

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"housing-advisor/internal/models"

	"github.com/lib/pq"
)

// PostgresListingSearch fetches listings from the listings table.
type PostgresListingSearch struct {
	db *sql.DB
}

func NewPostgresListingSearch(db *sql.DB) *PostgresListingSearch {
	return &PostgresListingSearch{db: db}
}

const listingColumns = "id, title, price, town, flat_type, rooms, age_years, source"

func (s *PostgresListingSearch) Search(ctx context.Context, criteria Criteria) ([]models.Listing, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if criteria.MaxPrice > 0 {
		args = append(args, criteria.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}
	if len(criteria.Towns) > 0 {
		args = append(args, pq.Array(criteria.Towns))
		conditions = append(conditions, fmt.Sprintf("LOWER(town) = ANY($%d)", len(args)))
	}
	if criteria.FlatType != "" {
		args = append(args, criteria.FlatType)
		conditions = append(conditions, fmt.Sprintf("flat_type = $%d", len(args)))
	}
	if criteria.Rooms > 0 {
		args = append(args, criteria.Rooms)
		conditions = append(conditions, fmt.Sprintf("rooms = $%d", len(args)))
	}

	query := "SELECT " + listingColumns + " FROM listings"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY price ASC"

	limit := criteria.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing search query: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.Title, &l.Price, &l.Town, &l.FlatType, &l.Rooms, &l.AgeYears, &l.Source); err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing rows: %w", err)
	}
	return listings, nil
}
