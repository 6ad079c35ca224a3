// Package ingest reads album tag data from CSV exports. It is a
// boundary adapter: output is raw AlbumTags records, split into
// individual tag strings but not yet normalized.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/errors"
)

// Column headers recognized in incoming CSVs, lowercase. Exports from
// different catalog tools disagree on naming, so each column accepts a
// few spellings.
var (
	idHeaders     = []string{"id", "album_id"}
	titleHeaders  = []string{"title", "album", "album_title"}
	artistHeaders = []string{"artist", "album_artist"}
	yearHeaders   = []string{"year", "release_year"}
	tagHeaders    = []string{"tags", "genres", "styles"}
)

// tagSeparators split a multi-value tag cell. Commas inside a cell are
// already protected by CSV quoting, so a comma here is a list separator.
var tagSeparators = []string{",", ";", "/"}

// columns maps the semantic columns onto header positions. -1 means the
// column is absent.
type columns struct {
	id     int
	title  int
	artist int
	year   int
	tags   int
}

// ReadAlbums parses a CSV export into album tag records.
//
// The first row must be a header naming at least a tag column. Rows with
// the wrong field count or an unparseable ID are skipped with a warning
// rather than failing the whole import. Albums whose tag cell splits to
// nothing are kept; they contribute no corpus data but stay countable.
func ReadAlbums(r io.Reader, logger *slog.Logger) ([]*domain.AlbumTags, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Validate per row so one bad row cannot abort the import.
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Validationf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var albums []*domain.AlbumTags
	line := 1
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed csv row", "line", line, "error", err)
			continue
		}
		if len(record) != len(header) {
			logger.Warn("skipping csv row with wrong field count",
				"line", line, "fields", len(record), "expected", len(header))
			continue
		}

		album, err := parseRow(record, cols, len(albums)+1)
		if err != nil {
			logger.Warn("skipping unparseable csv row", "line", line, "error", err)
			continue
		}
		albums = append(albums, album)
	}

	return albums, nil
}

// ReadAlbumsFile parses a CSV file into album tag records.
func ReadAlbumsFile(path string, logger *slog.Logger) ([]*domain.AlbumTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return ReadAlbums(f, logger)
}

// SplitTags splits a raw multi-value tag cell into individual trimmed
// tag strings, dropping empties.
func SplitTags(cell string) []string {
	parts := []string{cell}
	for _, sep := range tagSeparators {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}

	var tags []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// mapColumns locates the semantic columns in the header row.
func mapColumns(header []string) (columns, error) {
	cols := columns{id: -1, title: -1, artist: -1, year: -1, tags: -1}

	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case cols.id == -1 && matches(name, idHeaders):
			cols.id = i
		case cols.title == -1 && matches(name, titleHeaders):
			cols.title = i
		case cols.artist == -1 && matches(name, artistHeaders):
			cols.artist = i
		case cols.year == -1 && matches(name, yearHeaders):
			cols.year = i
		case cols.tags == -1 && matches(name, tagHeaders):
			cols.tags = i
		}
	}

	if cols.tags == -1 {
		return cols, errors.Validationf("csv header has no tag column (expected one of %v)", tagHeaders)
	}
	return cols, nil
}

func matches(name string, accepted []string) bool {
	for _, a := range accepted {
		if name == a {
			return true
		}
	}
	return false
}

// parseRow builds an album record from one CSV row. fallbackID is used
// when the export carries no ID column.
func parseRow(record []string, cols columns, fallbackID int) (*domain.AlbumTags, error) {
	album := &domain.AlbumTags{AlbumID: fallbackID}

	if cols.id != -1 {
		id, err := strconv.Atoi(strings.TrimSpace(record[cols.id]))
		if err != nil {
			return nil, fmt.Errorf("bad album id %q: %w", record[cols.id], err)
		}
		album.AlbumID = id
	}
	if cols.title != -1 {
		album.Title = strings.TrimSpace(record[cols.title])
	}
	if cols.artist != -1 {
		album.Artist = strings.TrimSpace(record[cols.artist])
	}
	if cols.year != -1 {
		raw := strings.TrimSpace(record[cols.year])
		if raw != "" {
			year, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("bad year %q: %w", raw, err)
			}
			album.Year = year
		}
	}

	album.RawTags = SplitTags(record[cols.tags])
	return album, nil
}
