package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/albumatlas/albumatlas-server/internal/domain"
)

// newTestStore opens a store on a temp database.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeTestAlbum(id int, tags ...string) *domain.AlbumTags {
	return &domain.AlbumTags{
		AlbumID: id,
		Title:   "Album",
		Artist:  "Artist",
		Year:    1994,
		RawTags: tags,
	}
}

func TestUpsertAndGetAlbum(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	album := makeTestAlbum(1, "Black Metal", "Atmospheric")
	if err := s.UpsertAlbum(ctx, album); err != nil {
		t.Fatalf("UpsertAlbum: %v", err)
	}

	got, err := s.GetAlbum(ctx, 1)
	if err != nil {
		t.Fatalf("GetAlbum: %v", err)
	}
	if got.Title != "Album" || got.Artist != "Artist" || got.Year != 1994 {
		t.Errorf("album fields: got %+v", got)
	}
	if !reflect.DeepEqual(got.RawTags, []string{"Black Metal", "Atmospheric"}) {
		t.Errorf("RawTags: got %v", got.RawTags)
	}
}

func TestUpsertReplacesTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertAlbum(ctx, makeTestAlbum(1, "rock", "prog")); err != nil {
		t.Fatalf("UpsertAlbum: %v", err)
	}

	updated := makeTestAlbum(1, "prog rock")
	updated.Year = 1973
	if err := s.UpsertAlbum(ctx, updated); err != nil {
		t.Fatalf("UpsertAlbum (update): %v", err)
	}

	got, err := s.GetAlbum(ctx, 1)
	if err != nil {
		t.Fatalf("GetAlbum: %v", err)
	}
	if got.Year != 1973 {
		t.Errorf("Year: got %d, want 1973", got.Year)
	}
	if !reflect.DeepEqual(got.RawTags, []string{"prog rock"}) {
		t.Errorf("RawTags after replace: got %v", got.RawTags)
	}
}

func TestGetAlbum_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAlbum(context.Background(), 99)
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("GetAlbum: got %v, want ErrAlbumNotFound", err)
	}
}

func TestDeleteAlbumCascadesTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertAlbum(ctx, makeTestAlbum(1, "jazz")); err != nil {
		t.Fatalf("UpsertAlbum: %v", err)
	}
	if err := s.DeleteAlbum(ctx, 1); err != nil {
		t.Fatalf("DeleteAlbum: %v", err)
	}

	ids, err := s.AlbumIDsWithTag(ctx, "jazz")
	if err != nil {
		t.Fatalf("AlbumIDsWithTag: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("tag rows survived delete: %v", ids)
	}

	if err := s.DeleteAlbum(ctx, 1); !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("second delete: got %v, want ErrAlbumNotFound", err)
	}
}

func TestAlbumIDsWithTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for id, tags := range map[int][]string{
		1: {"black metal", "atmospheric"},
		2: {"black metal"},
		3: {"jazz"},
	} {
		if err := s.UpsertAlbum(ctx, makeTestAlbum(id, tags...)); err != nil {
			t.Fatalf("UpsertAlbum(%d): %v", id, err)
		}
	}

	ids, err := s.AlbumIDsWithTag(ctx, "black metal")
	if err != nil {
		t.Fatalf("AlbumIDsWithTag: %v", err)
	}
	if !reflect.DeepEqual(ids, []int{1, 2}) {
		t.Errorf("ids: got %v, want [1 2]", ids)
	}
}

func TestTagLists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	albums := []*domain.AlbumTags{
		makeTestAlbum(1, "black metal", "atmospheric"),
		makeTestAlbum(2, "jazz"),
		makeTestAlbum(3), // no tags
	}
	for _, album := range albums {
		if err := s.UpsertAlbum(ctx, album); err != nil {
			t.Fatalf("UpsertAlbum(%d): %v", album.AlbumID, err)
		}
	}

	lists, err := s.TagLists(ctx)
	if err != nil {
		t.Fatalf("TagLists: %v", err)
	}

	// Untagged albums contribute nothing to the corpus.
	want := [][]string{
		{"black metal", "atmospheric"},
		{"jazz"},
	}
	if !reflect.DeepEqual(lists, want) {
		t.Errorf("TagLists: got %v, want %v", lists, want)
	}

	n, err := s.CountAlbums(ctx)
	if err != nil {
		t.Fatalf("CountAlbums: %v", err)
	}
	if n != 3 {
		t.Errorf("CountAlbums: got %d, want 3", n)
	}
}

func TestListAlbumsOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []int{3, 1, 2} {
		if err := s.UpsertAlbum(ctx, makeTestAlbum(id, "rock")); err != nil {
			t.Fatalf("UpsertAlbum(%d): %v", id, err)
		}
	}

	albums, err := s.ListAlbums(ctx)
	if err != nil {
		t.Fatalf("ListAlbums: %v", err)
	}
	if len(albums) != 3 {
		t.Fatalf("ListAlbums: got %d albums, want 3", len(albums))
	}
	for i, album := range albums {
		if album.AlbumID != i+1 {
			t.Errorf("album %d: got ID %d, want %d", i, album.AlbumID, i+1)
		}
	}
}
