package entry

import (
	"context"
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/nabeo104/mixtape/internal/domain/catalog"
	"github.com/nabeo104/mixtape/internal/domain/queue"
)

// fakeCatalog is an in-memory catalog for entity tests. It records
// every call so tests can assert on request traffic.
type fakeCatalog struct {
	tracks       map[string]catalog.TrackDetail
	albums       map[string]catalog.AlbumDetail
	artistAlbums map[string][]catalog.AlbumRef
	topTracks    map[string][]catalog.TrackDetail
	trackSearch  map[string][]catalog.TrackRef
	albumSearch  map[string][]catalog.AlbumRef
	artistSearch map[string][]catalog.ArtistRef
	calls        []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tracks:       make(map[string]catalog.TrackDetail),
		albums:       make(map[string]catalog.AlbumDetail),
		artistAlbums: make(map[string][]catalog.AlbumRef),
		topTracks:    make(map[string][]catalog.TrackDetail),
		trackSearch:  make(map[string][]catalog.TrackRef),
		albumSearch:  make(map[string][]catalog.AlbumRef),
		artistSearch: make(map[string][]catalog.ArtistRef),
	}
}

func (f *fakeCatalog) GetTrack(_ context.Context, id string) (*catalog.TrackDetail, error) {
	f.calls = append(f.calls, "GetTrack:"+id)
	d, ok := f.tracks[id]
	if !ok {
		return nil, errors.Wrapf(catalog.ErrNotFound, "track %s", id)
	}
	return &d, nil
}

func (f *fakeCatalog) GetAlbum(_ context.Context, id string) (*catalog.AlbumDetail, error) {
	f.calls = append(f.calls, "GetAlbum:"+id)
	d, ok := f.albums[id]
	if !ok {
		return nil, errors.Wrapf(catalog.ErrNotFound, "album %s", id)
	}
	return &d, nil
}

func (f *fakeCatalog) GetArtistAlbums(_ context.Context, id string) ([]catalog.AlbumRef, error) {
	f.calls = append(f.calls, "GetArtistAlbums:"+id)
	return f.artistAlbums[id], nil
}

func (f *fakeCatalog) GetArtistTopTracks(_ context.Context, id string, limit int) ([]catalog.TrackDetail, error) {
	f.calls = append(f.calls, fmt.Sprintf("GetArtistTopTracks:%s:%d", id, limit))
	top := f.topTracks[id]
	if limit > 0 && limit < len(top) {
		top = top[:limit]
	}
	return top, nil
}

func (f *fakeCatalog) SearchTracks(_ context.Context, query string) ([]catalog.TrackRef, error) {
	f.calls = append(f.calls, "SearchTracks:"+query)
	return f.trackSearch[query], nil
}

func (f *fakeCatalog) SearchAlbums(_ context.Context, query string) ([]catalog.AlbumRef, error) {
	f.calls = append(f.calls, "SearchAlbums:"+query)
	return f.albumSearch[query], nil
}

func (f *fakeCatalog) SearchArtists(_ context.Context, query string) ([]catalog.ArtistRef, error) {
	f.calls = append(f.calls, "SearchArtists:"+query)
	return f.artistSearch[query], nil
}

func trackIDs(q *queue.Queue[*Track]) []string {
	ids := make([]string, 0, q.Len())
	for _, t := range q.Items() {
		ids = append(ids, t.ID())
	}
	return ids
}

func TestDispatch_FlattensMixedEntries(t *testing.T) {
	cat := newFakeCatalog()
	cat.trackSearch["Yesterday - The Beatles"] = []catalog.TrackRef{
		{ID: "t1", Name: "Yesterday", Artists: []string{"The Beatles"}},
	}
	cat.albumSearch["Abbey Road"] = []catalog.AlbumRef{
		{ID: "al1", Name: "Abbey Road", Artists: []string{"The Beatles"}},
	}
	cat.albums["al1"] = catalog.AlbumDetail{
		ID: "al1", Name: "Abbey Road", Artists: []string{"The Beatles"},
		Tracks: []catalog.TrackRef{
			{ID: "t2", Name: "Come Together"},
			{ID: "t3", Name: "Something"},
		},
	}

	entries := queue.New[Resolvable](
		NewTrack("Yesterday - The Beatles"),
		NewAlbum("Abbey Road", 0),
	)

	tracks := Dispatch(context.Background(), entries, cat, nil)
	assert.Equal(t, []string{"t1", "t2", "t3"}, trackIDs(tracks))
}

func TestDispatch_DropsFailedEntries(t *testing.T) {
	cat := newFakeCatalog()
	cat.trackSearch["known"] = []catalog.TrackRef{{ID: "t1", Name: "Known", Artists: []string{"A"}}}

	entries := queue.New[Resolvable](
		NewTrack("known"),
		NewTrack("nowhere to be found"),
		NewAlbum("missing album", 0),
	)

	var dropped []string
	tracks := Dispatch(context.Background(), entries, cat, func(r Resolvable, err error) {
		dropped = append(dropped, r.OriginalText())
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	assert.Equal(t, []string{"t1"}, trackIDs(tracks))
	assert.Equal(t, []string{"nowhere to be found", "missing album"}, dropped)
}
