package entry

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/nabeo104/mixtape/internal/domain/catalog"
	"github.com/nabeo104/mixtape/internal/domain/queue"
)

// Album is a playlist entry naming an album. Resolving it yields a
// nested queue of its tracklist, optionally truncated to limit.
type Album struct {
	originalText string
	limit        int // 0 = unlimited

	ref    cell[catalog.AlbumRef]
	detail cell[catalog.AlbumDetail]
}

// NewAlbum creates an album entry from raw playlist text. limit caps
// the number of tracks the expansion yields; 0 means unlimited.
func NewAlbum(text string, limit int) *Album {
	return &Album{originalText: strings.TrimSpace(text), limit: limit}
}

// AlbumFromRef creates a synthetic album from a listing response, as
// produced while expanding an artist's discography.
func AlbumFromRef(ref catalog.AlbumRef) *Album {
	a := &Album{originalText: ref.Name}
	a.ref.Set(ref)
	return a
}

// OriginalText returns the raw text the entry was built from.
func (a *Album) OriginalText() string {
	return a.originalText
}

// Limit returns the expansion cap, 0 when unlimited.
func (a *Album) Limit() int {
	return a.limit
}

// Expand marks the album as a terminal node; only its dispatch result
// expands.
func (a *Album) Expand() []Node {
	return nil
}

// ID derives the canonical album ID with the same priority order as
// tracks.
func (a *Album) ID() string {
	if d, ok := a.detail.Get(); ok {
		return d.ID
	}
	if r, ok := a.ref.Get(); ok {
		return r.ID
	}
	return catalog.ExtractID(catalog.KindAlbum, a.originalText)
}

// String returns the album name, or the original text before any
// response is attached.
func (a *Album) String() string {
	if d, ok := a.detail.Get(); ok {
		return d.Name
	}
	if r, ok := a.ref.Get(); ok {
		return r.Name
	}
	return a.originalText
}

// Dispatch resolves the album into a nested queue of its tracks. The
// queue is returned unflattened; flattening is the owning queue's job,
// one level up.
func (a *Album) Dispatch(ctx context.Context, cat Catalog) (Node, error) {
	if !a.detail.Has() {
		if !a.ref.Has() {
			refs, err := cat.SearchAlbums(ctx, a.originalText)
			if err != nil {
				return nil, errors.Wrapf(err, "album search %q", a.originalText)
			}
			if len(refs) == 0 {
				return nil, errors.Wrapf(catalog.ErrNotFound, "album search %q", a.originalText)
			}
			if err := refs[0].Validate(); err != nil {
				return nil, errors.Wrapf(err, "album search %q", a.originalText)
			}
			a.ref.Set(refs[0])
		}

		r, _ := a.ref.Get()
		d, err := cat.GetAlbum(ctx, r.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "album %q", a.originalText)
		}
		if err := d.Validate(); err != nil {
			return nil, errors.Wrapf(err, "album %q", a.originalText)
		}
		a.detail.Set(*d)
	}

	d, _ := a.detail.Get()
	tracks := queue.New[Node]()
	for _, ref := range d.Tracks {
		t := ref
		// Simplified tracklist entries often omit the artists.
		if len(t.Artists) == 0 {
			t.Artists = d.Artists
		}
		tracks.Add(TrackFromRef(t))
	}
	if a.limit > 0 && a.limit < tracks.Len() {
		tracks = tracks.Slice(0, a.limit)
	}
	return Subqueue{Queue: tracks}, nil
}
