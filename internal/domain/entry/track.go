package entry

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/nabeo104/mixtape/internal/domain/catalog"
)

// Track is a playlist entry naming a single track. It holds at most
// one full detail response and at most one simplified search response;
// once a detail is attached it is never overwritten.
type Track struct {
	originalText string

	detail    cell[catalog.TrackDetail]
	ref       cell[catalog.TrackRef]
	playcount cell[int64]
}

// NewTrack creates a track entry from raw playlist text.
func NewTrack(text string) *Track {
	return &Track{originalText: strings.TrimSpace(text)}
}

// TrackFromRef creates a synthetic track from a simplified response,
// as produced while expanding an album tracklist.
func TrackFromRef(ref catalog.TrackRef) *Track {
	t := &Track{originalText: displayString(ref.Name, ref.MainArtist())}
	t.ref.Set(ref)
	return t
}

// TrackFromDetail creates a synthetic track from a full response, as
// produced while expanding an artist's top tracks.
func TrackFromDetail(d catalog.TrackDetail) *Track {
	t := &Track{originalText: displayString(d.Name, d.MainArtist())}
	t.detail.Set(d)
	return t
}

// OriginalText returns the raw text the entry was built from.
func (t *Track) OriginalText() string {
	return t.originalText
}

// Expand marks the track as a terminal node.
func (t *Track) Expand() []Node {
	return nil
}

// ID derives the canonical track ID: detail response ID, then
// search-result ID, then a pattern match on the original text, then
// the unknown sentinel.
func (t *Track) ID() string {
	if d, ok := t.detail.Get(); ok {
		return d.ID
	}
	if r, ok := t.ref.Get(); ok {
		return r.ID
	}
	return catalog.ExtractID(catalog.KindTrack, t.originalText)
}

// String renders the "Title - Artist" display string. Equality and
// grouping are defined over it, never over IDs: two differently
// sourced responses may describe the same track.
func (t *Track) String() string {
	if d, ok := t.detail.Get(); ok {
		return displayString(d.Name, d.MainArtist())
	}
	if r, ok := t.ref.Get(); ok {
		return displayString(r.Name, r.MainArtist())
	}
	return t.originalText
}

// Equals reports display-string equality, case-insensitive.
func (t *Track) Equals(other *Track) bool {
	return strings.EqualFold(t.String(), other.String())
}

// Title returns the track title, falling back to splitting the
// original "Title - Artist" text when no response is attached.
func (t *Track) Title() string {
	if d, ok := t.detail.Get(); ok {
		return d.Name
	}
	if r, ok := t.ref.Get(); ok {
		return r.Name
	}
	title, _ := splitDisplay(t.originalText)
	return title
}

// ArtistName returns the main artist name, with the same fallback as
// Title.
func (t *Track) ArtistName() string {
	if d, ok := t.detail.Get(); ok {
		return d.MainArtist()
	}
	if r, ok := t.ref.Get(); ok {
		return r.MainArtist()
	}
	_, artist := splitDisplay(t.originalText)
	return artist
}

// AlbumName returns the album name when a full response is attached.
func (t *Track) AlbumName() string {
	if d, ok := t.detail.Get(); ok {
		return d.Album
	}
	return ""
}

// Popularity returns the popularity score from the full response.
func (t *Track) Popularity() (int, bool) {
	d, ok := t.detail.Get()
	if !ok {
		return 0, false
	}
	return d.Popularity, true
}

// Playcount returns the attached play count, if fetched.
func (t *Track) Playcount() (int64, bool) {
	return t.playcount.Get()
}

// SetPlaycount attaches the play count. The first write wins.
func (t *Track) SetPlaycount(n int64) {
	t.playcount.Set(n)
}

// Dispatch resolves the track to itself. A track with a full response
// resolves immediately; one with a simplified response or a
// permalink-shaped text fetches its full detail by ID; anything else
// is searched, with the first hit becoming its simplified response.
func (t *Track) Dispatch(ctx context.Context, cat Catalog) (Node, error) {
	if t.detail.Has() {
		return t, nil
	}

	var id string
	if r, ok := t.ref.Get(); ok {
		id = r.ID
	} else {
		id = catalog.ExtractID(catalog.KindTrack, t.originalText)
	}

	if id != catalog.UnknownID {
		d, err := cat.GetTrack(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "track %q", t.originalText)
		}
		if err := d.Validate(); err != nil {
			return nil, errors.Wrapf(err, "track %q", t.originalText)
		}
		t.detail.Set(*d)
		return t, nil
	}

	refs, err := cat.SearchTracks(ctx, t.originalText)
	if err != nil {
		return nil, errors.Wrapf(err, "track search %q", t.originalText)
	}
	if len(refs) == 0 {
		return nil, errors.Wrapf(catalog.ErrNotFound, "track search %q", t.originalText)
	}
	if err := refs[0].Validate(); err != nil {
		return nil, errors.Wrapf(err, "track search %q", t.originalText)
	}
	t.ref.Set(refs[0])
	return t, nil
}

// RefreshDetail fetches the full response for a track that only holds
// a simplified one, so popularity becomes available. A track without a
// usable ID is left untouched.
func (t *Track) RefreshDetail(ctx context.Context, cat Catalog) error {
	if t.detail.Has() {
		return nil
	}
	id := t.ID()
	if id == catalog.UnknownID {
		return errors.Wrapf(catalog.ErrNotFound, "track %q has no usable id", t.originalText)
	}
	d, err := cat.GetTrack(ctx, id)
	if err != nil {
		return errors.Wrapf(err, "track %q", t.originalText)
	}
	if err := d.Validate(); err != nil {
		return errors.Wrapf(err, "track %q", t.originalText)
	}
	t.detail.Set(*d)
	return nil
}

func displayString(title, artist string) string {
	return title + " - " + artist
}

// splitDisplay splits raw "Title - Artist" text. Text without the
// separator is treated as all title.
func splitDisplay(text string) (title, artist string) {
	parts := strings.SplitN(text, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(text), ""
}
