package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/costumeconnections/costumes/internal/model"
)

const costumeColumns = `id, status, first_name, last_name, email, city, image_url,
        title, price, size, style, description, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCostume(row scanner) (model.Costume, error) {
	var c model.Costume
	err := row.Scan(&c.ID, &c.Status, &c.FirstName, &c.LastName, &c.Email, &c.City, &c.ImageURL,
		&c.Title, &c.Price, &c.Size, &c.Style, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// parseID canonicalizes a costume id. Ids come from query strings and form
// fields, so anything that is not a UUID is reported as not ok.
func parseID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// ListApproved returns every approved costume in insertion order.
func (s *Store) ListApproved(ctx context.Context) ([]model.Costume, error) {
	return s.list(ctx, `WHERE status = ?`, model.StatusApproved)
}

// ListAll returns every costume regardless of status, in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]model.Costume, error) {
	return s.list(ctx, "")
}

func (s *Store) list(ctx context.Context, where string, args ...any) ([]model.Costume, error) {
	d, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := d.QueryContext(ctx,
		d.Rebind(`SELECT `+costumeColumns+` FROM costumes `+where+` ORDER BY seq`), args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing costumes: %w", err)
	}
	defer rows.Close()

	costumes := []model.Costume{}
	for rows.Next() {
		c, err := scanCostume(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning costume: %w", err)
		}
		costumes = append(costumes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing costumes: %w", err)
	}
	return costumes, nil
}

// Get returns a costume by id, or nil if the id is malformed or unknown.
func (s *Store) Get(ctx context.Context, id string) (*model.Costume, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	d, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	c, err := scanCostume(d.QueryRowContext(ctx,
		d.Rebind(`SELECT `+costumeColumns+` FROM costumes WHERE id = ?`), key,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting costume: %w", err)
	}
	return &c, nil
}

// Create inserts a costume and returns its newly assigned id. Any ID on c is
// ignored.
func (s *Store) Create(ctx context.Context, c model.Costume) (string, error) {
	d, err := s.conn(ctx)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = d.ExecContext(ctx,
		d.Rebind(`INSERT INTO costumes (id, status, first_name, last_name, email, city, image_url,
		     title, price, size, style, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id, c.Status, c.FirstName, c.LastName, c.Email, c.City, c.ImageURL,
		c.Title, c.Price, c.Size, c.Style, c.Description,
	)
	if err != nil {
		return "", fmt.Errorf("creating costume: %w", err)
	}
	return id, nil
}

// Update replaces every field of the costume with the given id and reports
// how many records were modified (0 or 1).
func (s *Store) Update(ctx context.Context, id string, c model.Costume) (int64, error) {
	key, ok := parseID(id)
	if !ok {
		return 0, nil
	}

	d, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	result, err := d.ExecContext(ctx,
		d.Rebind(`UPDATE costumes SET status = ?, first_name = ?, last_name = ?, email = ?, city = ?,
		     image_url = ?, title = ?, price = ?, size = ?, style = ?, description = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`),
		c.Status, c.FirstName, c.LastName, c.Email, c.City,
		c.ImageURL, c.Title, c.Price, c.Size, c.Style, c.Description,
		key,
	)
	if err != nil {
		return 0, fmt.Errorf("updating costume: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating costume: %w", err)
	}
	return n, nil
}

// Delete removes the costume with the given id, along with its photo, and
// reports how many costumes were removed (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	key, ok := parseID(id)
	if !ok {
		return 0, nil
	}

	d, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	if _, err := d.ExecContext(ctx, d.Rebind(`DELETE FROM costume_photos WHERE costume_id = ?`), key); err != nil {
		return 0, fmt.Errorf("deleting costume photo: %w", err)
	}

	result, err := d.ExecContext(ctx, d.Rebind(`DELETE FROM costumes WHERE id = ?`), key)
	if err != nil {
		return 0, fmt.Errorf("deleting costume: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting costume: %w", err)
	}
	return n, nil
}
