package entry

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/nabeo104/mixtape/internal/domain/catalog"
	"github.com/nabeo104/mixtape/internal/domain/queue"
)

// Artist is a playlist entry naming an artist. With a limit it
// resolves to the artist's top tracks; without one it expands the
// whole discography, album by album.
type Artist struct {
	originalText string
	limit        int // 0 = whole discography

	ref       cell[catalog.ArtistRef]
	albums    cell[[]catalog.AlbumRef]
	topTracks cell[[]catalog.TrackDetail]
}

// NewArtist creates an artist entry from raw playlist text. limit caps
// the expansion at the artist's top N tracks; 0 expands every album.
func NewArtist(text string, limit int) *Artist {
	return &Artist{originalText: strings.TrimSpace(text), limit: limit}
}

// OriginalText returns the raw text the entry was built from.
func (a *Artist) OriginalText() string {
	return a.originalText
}

// Limit returns the expansion cap, 0 when unlimited.
func (a *Artist) Limit() int {
	return a.limit
}

// Expand marks the artist as a terminal node; only its dispatch result
// expands.
func (a *Artist) Expand() []Node {
	return nil
}

// ID derives the canonical artist ID with the same priority order as
// tracks.
func (a *Artist) ID() string {
	if r, ok := a.ref.Get(); ok {
		return r.ID
	}
	return catalog.ExtractID(catalog.KindArtist, a.originalText)
}

// String returns the artist name, or the original text before any
// response is attached.
func (a *Artist) String() string {
	if r, ok := a.ref.Get(); ok {
		return r.Name
	}
	return a.originalText
}

// Dispatch resolves the artist into a nested queue. The top-tracks
// branch yields tracks directly; the discography branch builds one
// album per listing entry and eagerly resolves that nested queue, so
// the caller receives a queue of track-queues ready for flattening.
func (a *Artist) Dispatch(ctx context.Context, cat Catalog) (Node, error) {
	if !a.ref.Has() {
		refs, err := cat.SearchArtists(ctx, a.originalText)
		if err != nil {
			return nil, errors.Wrapf(err, "artist search %q", a.originalText)
		}
		if len(refs) == 0 {
			return nil, errors.Wrapf(catalog.ErrNotFound, "artist search %q", a.originalText)
		}
		if err := refs[0].Validate(); err != nil {
			return nil, errors.Wrapf(err, "artist search %q", a.originalText)
		}
		a.ref.Set(refs[0])
	}
	r, _ := a.ref.Get()

	if a.limit > 0 {
		if !a.topTracks.Has() {
			top, err := cat.GetArtistTopTracks(ctx, r.ID, a.limit)
			if err != nil {
				return nil, errors.Wrapf(err, "artist %q top tracks", a.originalText)
			}
			a.topTracks.Set(top)
		}
		top, _ := a.topTracks.Get()

		tracks := queue.New[Node]()
		for _, d := range top {
			tracks.Add(TrackFromDetail(d))
		}
		if a.limit < tracks.Len() {
			tracks = tracks.Slice(0, a.limit)
		}
		return Subqueue{Queue: tracks}, nil
	}

	if !a.albums.Has() {
		listing, err := cat.GetArtistAlbums(ctx, r.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "artist %q albums", a.originalText)
		}
		a.albums.Set(listing)
	}
	listing, _ := a.albums.Get()

	albums := queue.New[Resolvable]()
	for _, ref := range listing {
		albums.Add(AlbumFromRef(ref))
	}

	// Resolve every album now; unresolvable albums drop out here the
	// same way failed top-level entries do.
	resolved := queue.ResolveAll(ctx, albums, func(ctx context.Context, r Resolvable) (Node, error) {
		return r.Dispatch(ctx, cat)
	})
	return Subqueue{Queue: resolved}, nil
}
