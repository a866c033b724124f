package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoCostume is returned when a photo is attached to an id that does not
// name an existing costume.
var ErrNoCostume = errors.New("costume not found")

// Photo is an uploaded costume photo and its catalog thumbnail.
type Photo struct {
	Image []byte
	Thumb []byte
	MIME  string
}

// SetPhoto stores (or replaces) the photo of a costume.
func (s *Store) SetPhoto(ctx context.Context, id string, p *Photo) error {
	key, ok := parseID(id)
	if !ok {
		return ErrNoCostume
	}

	d, err := s.conn(ctx)
	if err != nil {
		return err
	}

	var exists int
	err = d.QueryRowContext(ctx, d.Rebind(`SELECT COUNT(*) FROM costumes WHERE id = ?`), key).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking costume: %w", err)
	}
	if exists == 0 {
		return ErrNoCostume
	}

	_, err = d.ExecContext(ctx,
		d.Rebind(`INSERT INTO costume_photos (costume_id, image, thumb, mime) VALUES (?, ?, ?, ?)
		 ON CONFLICT (costume_id) DO UPDATE
		 SET image = excluded.image, thumb = excluded.thumb, mime = excluded.mime,
		     updated_at = CURRENT_TIMESTAMP`),
		key, p.Image, p.Thumb, p.MIME,
	)
	if err != nil {
		return fmt.Errorf("setting costume photo: %w", err)
	}
	return nil
}

// GetPhoto returns a costume's photo (or its thumbnail) and MIME type. A nil
// slice means there is no photo.
func (s *Store) GetPhoto(ctx context.Context, id string, thumb bool) ([]byte, string, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, "", nil
	}

	d, err := s.conn(ctx)
	if err != nil {
		return nil, "", err
	}

	column := "image"
	if thumb {
		column = "thumb"
	}

	var data []byte
	var mime string
	err = d.QueryRowContext(ctx,
		d.Rebind(`SELECT `+column+`, mime FROM costume_photos WHERE costume_id = ?`), key,
	).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting costume photo: %w", err)
	}
	return data, mime, nil
}
