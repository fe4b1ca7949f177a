package entry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabeo104/mixtape/internal/domain/catalog"
)

func TestTrack_IDDerivationPriority(t *testing.T) {
	t.Run("detail wins over ref", func(t *testing.T) {
		tr := NewTrack("whatever")
		tr.ref.Set(catalog.TrackRef{ID: "ref-id", Name: "Name"})
		tr.detail.Set(catalog.TrackDetail{ID: "detail-id", Name: "Name"})
		assert.Equal(t, "detail-id", tr.ID())
	})

	t.Run("ref wins over permalink text", func(t *testing.T) {
		tr := NewTrack("https://open.spotify.com/track/text-id")
		tr.ref.Set(catalog.TrackRef{ID: "ref-id", Name: "Name"})
		assert.Equal(t, "ref-id", tr.ID())
	})

	t.Run("permalink text", func(t *testing.T) {
		tr := NewTrack("http://open.spotify.com/track/XYZ")
		assert.Equal(t, "XYZ", tr.ID())
	})

	t.Run("unknown", func(t *testing.T) {
		tr := NewTrack("Some Song - Some Artist")
		assert.Equal(t, catalog.UnknownID, tr.ID())
	})
}

func TestTrack_DetailNeverOverwritten(t *testing.T) {
	tr := TrackFromDetail(catalog.TrackDetail{ID: "full", Name: "Song", Artists: []string{"A"}, Popularity: 70})

	// A later simplified response must not displace the full one.
	tr.ref.Set(catalog.TrackRef{ID: "simple", Name: "Other"})
	assert.Equal(t, "full", tr.ID())
	assert.Equal(t, "Song - A", tr.String())

	p, ok := tr.Popularity()
	require.True(t, ok)
	assert.Equal(t, 70, p)
}

func TestTrack_Equality(t *testing.T) {
	a := NewTrack("Yesterday - The Beatles")
	b := NewTrack("yesterday - the beatles")
	c := NewTrack("Let It Be - The Beatles")

	assert.True(t, a.Equals(b), "equality is case-insensitive")
	assert.False(t, a.Equals(c))

	// Equality is over display strings, never IDs: the same song from
	// two sources compares equal with different IDs.
	d := TrackFromDetail(catalog.TrackDetail{ID: "id-1", Name: "Yesterday", Artists: []string{"The Beatles"}})
	e := TrackFromRef(catalog.TrackRef{ID: "id-2", Name: "Yesterday", Artists: []string{"The Beatles"}})
	assert.True(t, d.Equals(e))
}

func TestTrack_Dispatch_FullResponseResolvesImmediately(t *testing.T) {
	cat := newFakeCatalog()
	tr := TrackFromDetail(catalog.TrackDetail{ID: "t1", Name: "Song", Artists: []string{"A"}})

	n, err := tr.Dispatch(context.Background(), cat)
	require.NoError(t, err)
	assert.Same(t, tr, n)
	assert.Empty(t, cat.calls, "no catalog calls for an already-full track")
}

func TestTrack_Dispatch_SimplifiedFetchesDetail(t *testing.T) {
	cat := newFakeCatalog()
	cat.tracks["t1"] = catalog.TrackDetail{ID: "t1", Name: "Song", Artists: []string{"A"}, Popularity: 42}

	tr := TrackFromRef(catalog.TrackRef{ID: "t1", Name: "Song", Artists: []string{"A"}})
	_, err := tr.Dispatch(context.Background(), cat)
	require.NoError(t, err)

	assert.Equal(t, []string{"GetTrack:t1"}, cat.calls)
	_, ok := tr.Popularity()
	assert.True(t, ok)
}

func TestTrack_Dispatch_PermalinkFetchesDetail(t *testing.T) {
	cat := newFakeCatalog()
	cat.tracks["XYZ"] = catalog.TrackDetail{ID: "XYZ", Name: "Song", Artists: []string{"A"}}

	tr := NewTrack("spotify:track:XYZ")
	_, err := tr.Dispatch(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, []string{"GetTrack:XYZ"}, cat.calls)
	assert.Equal(t, "XYZ", tr.ID())
}

func TestTrack_Dispatch_SearchAttachesFirstHit(t *testing.T) {
	cat := newFakeCatalog()
	cat.trackSearch["Song - A"] = []catalog.TrackRef{
		{ID: "t1", Name: "Song", Artists: []string{"A"}},
		{ID: "t2", Name: "Song (Live)", Artists: []string{"A"}},
	}

	tr := NewTrack("Song - A")
	_, err := tr.Dispatch(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, "t1", tr.ID())

	// The dispatch stops at the simplified response; no detail fetch.
	assert.Equal(t, []string{"SearchTracks:Song - A"}, cat.calls)
}

func TestTrack_Dispatch_SearchMissFails(t *testing.T) {
	cat := newFakeCatalog()

	tr := NewTrack("nothing matches this")
	_, err := tr.Dispatch(context.Background(), cat)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestTrack_RefreshDetail(t *testing.T) {
	cat := newFakeCatalog()
	cat.tracks["t1"] = catalog.TrackDetail{ID: "t1", Name: "Song", Artists: []string{"A"}, Popularity: 9}

	tr := TrackFromRef(catalog.TrackRef{ID: "t1", Name: "Song", Artists: []string{"A"}})
	require.NoError(t, tr.RefreshDetail(context.Background(), cat))

	p, ok := tr.Popularity()
	require.True(t, ok)
	assert.Equal(t, 9, p)

	// Already-full tracks refresh for free.
	require.NoError(t, tr.RefreshDetail(context.Background(), cat))
	assert.Equal(t, []string{"GetTrack:t1"}, cat.calls)

	// Tracks without a usable ID cannot refresh.
	assert.ErrorIs(t, NewTrack("free text").RefreshDetail(context.Background(), cat), catalog.ErrNotFound)
}

func TestTrack_TitleArtistFallback(t *testing.T) {
	tr := NewTrack("Yesterday - The Beatles")
	assert.Equal(t, "Yesterday", tr.Title())
	assert.Equal(t, "The Beatles", tr.ArtistName())

	bare := NewTrack("Yesterday")
	assert.Equal(t, "Yesterday", bare.Title())
	assert.Equal(t, "", bare.ArtistName())
}

func TestTrack_PlaycountWriteOnce(t *testing.T) {
	tr := NewTrack("x")
	_, ok := tr.Playcount()
	assert.False(t, ok)

	tr.SetPlaycount(100)
	tr.SetPlaycount(5)

	n, ok := tr.Playcount()
	require.True(t, ok)
	assert.Equal(t, int64(100), n)
}
