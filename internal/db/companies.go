package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/company-pulse/internal/types"
)

const companyColumns = `id, name, aliases, ticker, created_at, updated_at`

func scanCompany(row pgx.Row) (*types.Company, error) {
	var c types.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Aliases, &c.Ticker, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if c.Aliases == nil {
		c.Aliases = []string{}
	}
	return &c, nil
}

// ListCompanies returns every company ordered by id.
func (db *DB) ListCompanies(ctx context.Context) ([]types.Company, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var out []types.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}
	return out, nil
}

// GetCompany retrieves a company by id
func (db *DB) GetCompany(ctx context.Context, id int64) (*types.Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// GetCompanyByName retrieves a company by case-insensitive canonical name
func (db *DB) GetCompanyByName(ctx context.Context, name string) (*types.Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE lower(name) = lower($1)`,
		strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company by name: %w", err)
	}
	return c, nil
}

// CreateCompany inserts c and fills in its id and timestamps.
func (db *DB) CreateCompany(ctx context.Context, c *types.Company) error {
	aliases := c.Aliases
	if aliases == nil {
		aliases = []string{}
	}

	err := db.withLockedTable(ctx, "companies", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO companies (id, name, aliases, ticker)
			 SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3 FROM companies
			 RETURNING id, created_at, updated_at`,
			c.Name, aliases, c.Ticker,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("company %q: %w", c.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to create company: %w", err)
	}
	c.Aliases = aliases
	return nil
}

// UpdateCompany stores c's name, aliases and ticker.
func (db *DB) UpdateCompany(ctx context.Context, c *types.Company) error {
	aliases := c.Aliases
	if aliases == nil {
		aliases = []string{}
	}

	err := db.pool.QueryRow(ctx,
		`UPDATE companies SET name = $1, aliases = $2, ticker = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING updated_at`,
		c.Name, aliases, c.Ticker, c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("company %d: %w", c.ID, ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("company %q: %w", c.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}

// DeleteCompany removes a company together with its articles and social content.
func (db *DB) DeleteCompany(ctx context.Context, id int64) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %d: %w", id, ErrNotFound)
	}
	return nil
}
