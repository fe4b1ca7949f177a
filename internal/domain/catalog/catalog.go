// Package catalog defines the record types exchanged with the music
// catalog service, the shape validation applied to them, and the error
// kinds the resolution pipeline distinguishes.
package catalog

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Error kinds surfaced by catalog lookups. They are entity-level and
// non-fatal: the queue drops the affected entry and continues.
var (
	// ErrNotFound marks a search or lookup that yielded no usable match.
	ErrNotFound = errors.New("no matching result")
	// ErrMalformed marks a response that failed shape validation.
	ErrMalformed = errors.New("malformed response")
)

// UnknownID is the sentinel for an entity whose canonical ID could not
// be derived. Tracks carrying it are omitted from serialized output.
const UnknownID = ""

// Kind identifies a catalog entity kind in lookups and searches.
type Kind string

const (
	KindTrack  Kind = "track"
	KindAlbum  Kind = "album"
	KindArtist Kind = "artist"
)

// TrackRef is a simplified track record as returned by searches and
// album tracklists. It carries identity and name fields only.
type TrackRef struct {
	ID      string
	Name    string
	Artists []string
}

// TrackDetail is a full track record from a direct lookup. It extends
// the simplified shape with popularity and album metadata.
type TrackDetail struct {
	ID         string
	Name       string
	Artists    []string
	Album      string
	Popularity int
	URL        string
}

// AlbumRef is a simplified album record from a search or an artist's
// album listing.
type AlbumRef struct {
	ID      string
	Name    string
	Artists []string
}

// AlbumDetail is a full album record from a direct lookup, including
// its tracklist.
type AlbumDetail struct {
	ID      string
	Name    string
	Artists []string
	Tracks  []TrackRef
}

// ArtistRef is a simplified artist record from a search.
type ArtistRef struct {
	ID   string
	Name string
}

// Validate checks that the ref has the fields a simplified track
// response must carry.
func (r TrackRef) Validate() error {
	if r.ID == "" || r.Name == "" {
		return errors.WithDetail(ErrMalformed, "track ref missing id or name")
	}
	return nil
}

// Validate checks that the detail has the fields a full track response
// must carry.
func (d TrackDetail) Validate() error {
	if d.ID == "" || d.Name == "" {
		return errors.WithDetail(ErrMalformed, "track detail missing id or name")
	}
	return nil
}

// Validate checks that the ref is album-shaped.
func (r AlbumRef) Validate() error {
	if r.ID == "" || r.Name == "" {
		return errors.WithDetail(ErrMalformed, "album ref missing id or name")
	}
	return nil
}

// Validate checks that the detail carries an ID and a tracklist.
func (d AlbumDetail) Validate() error {
	if d.ID == "" || d.Name == "" {
		return errors.WithDetail(ErrMalformed, "album detail missing id or name")
	}
	if len(d.Tracks) == 0 {
		return errors.WithDetail(ErrMalformed, "album detail has no tracklist")
	}
	return nil
}

// Validate checks that the ref is artist-shaped.
func (r ArtistRef) Validate() error {
	if r.ID == "" || r.Name == "" {
		return errors.WithDetail(ErrMalformed, "artist ref missing id or name")
	}
	return nil
}

// MainArtist returns the first listed artist, or the empty string.
func (r TrackRef) MainArtist() string {
	if len(r.Artists) == 0 {
		return ""
	}
	return r.Artists[0]
}

// MainArtist returns the first listed artist, or the empty string.
func (d TrackDetail) MainArtist() string {
	if len(d.Artists) == 0 {
		return ""
	}
	return d.Artists[0]
}

// Ref reduces the detail to its simplified shape.
func (d TrackDetail) Ref() TrackRef {
	return TrackRef{ID: d.ID, Name: d.Name, Artists: d.Artists}
}

// ExtractID extracts the canonical ID of the given kind from a Spotify
// URI ("spotify:track:ID") or permalink
// ("https://open.spotify.com/track/ID"). It returns UnknownID when the
// input matches neither shape.
func ExtractID(kind Kind, input string) string {
	input = strings.TrimSpace(input)

	if prefix := "spotify:" + string(kind) + ":"; strings.HasPrefix(input, prefix) {
		return strings.TrimPrefix(input, prefix)
	}

	marker := "/" + string(kind) + "/"
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, marker) {
		parts := strings.Split(input, marker)
		id := strings.Split(parts[len(parts)-1], "?")[0]
		id = strings.TrimRight(id, "/")
		return id
	}

	return UnknownID
}
