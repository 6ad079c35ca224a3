package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/albumatlas/albumatlas-server/internal/domain"
)

// Catalog errors.
var ErrAlbumNotFound = errors.New("album not found")

// UpsertAlbum writes an album and replaces its tag list. Tag order is
// preserved through the position column.
func (s *Store) UpsertAlbum(ctx context.Context, album *domain.AlbumTags) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := formatTime(time.Now())
	_, err = tx.ExecContext(ctx, `
		INSERT INTO albums (id, title, artist, year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			year = excluded.year,
			updated_at = excluded.updated_at`,
		album.AlbumID, album.Title, album.Artist, album.Year, now, now,
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM album_tags WHERE album_id = ?`, album.AlbumID); err != nil {
		return err
	}

	for pos, tag := range album.RawTags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO album_tags (album_id, tag, position)
			VALUES (?, ?, ?)
			ON CONFLICT(album_id, tag) DO NOTHING`,
			album.AlbumID, tag, pos,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetAlbum retrieves an album with its tags in ingestion order.
// Returns ErrAlbumNotFound if the album does not exist.
func (s *Store) GetAlbum(ctx context.Context, albumID int) (*domain.AlbumTags, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, artist, year FROM albums WHERE id = ?`, albumID)

	var album domain.AlbumTags
	err := row.Scan(&album.AlbumID, &album.Title, &album.Artist, &album.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, err
	}

	album.RawTags, err = s.albumTags(ctx, albumID)
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// ListAlbums returns every album ordered by ID, tags in ingestion order.
func (s *Store) ListAlbums(ctx context.Context) ([]*domain.AlbumTags, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, artist, year FROM albums ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albums []*domain.AlbumTags
	for rows.Next() {
		var album domain.AlbumTags
		if err := rows.Scan(&album.AlbumID, &album.Title, &album.Artist, &album.Year); err != nil {
			return nil, err
		}
		albums = append(albums, &album)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, album := range albums {
		album.RawTags, err = s.albumTags(ctx, album.AlbumID)
		if err != nil {
			return nil, err
		}
	}

	if albums == nil {
		albums = []*domain.AlbumTags{}
	}
	return albums, nil
}

// DeleteAlbum removes an album and, via cascade, its tag rows.
func (s *Store) DeleteAlbum(ctx context.Context, albumID int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, albumID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

// AlbumIDsWithTag returns the IDs of albums carrying the exact raw tag,
// ascending.
func (s *Store) AlbumIDsWithTag(ctx context.Context, tag string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT album_id FROM album_tags WHERE tag = ? ORDER BY album_id ASC`, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TagLists returns every album's tag list, ordered by album ID. This is
// the corpus shape the analysis layer consumes.
func (s *Store) TagLists(ctx context.Context) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT album_id, tag FROM album_tags
		ORDER BY album_id ASC, position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		lists   [][]string
		current []string
		lastID  = -1
	)
	for rows.Next() {
		var (
			albumID int
			tag     string
		)
		if err := rows.Scan(&albumID, &tag); err != nil {
			return nil, err
		}
		if albumID != lastID && lastID != -1 {
			lists = append(lists, current)
			current = nil
		}
		lastID = albumID
		current = append(current, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		lists = append(lists, current)
	}
	return lists, nil
}

// CountAlbums returns the number of albums in the catalog.
func (s *Store) CountAlbums(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums`).Scan(&n)
	return n, err
}

// albumTags returns one album's tags in position order.
func (s *Store) albumTags(ctx context.Context, albumID int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag FROM album_tags
		WHERE album_id = ?
		ORDER BY position ASC`, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
