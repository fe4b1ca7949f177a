// Package entry provides the resolvable playlist entities. A parsed
// playlist line becomes a Track, Album, or Artist; each knows how to
// resolve itself against the catalog into canonical track records,
// possibly through a nested queue that the owning queue flattens
// afterwards.
package entry

import (
	"context"

	"github.com/nabeo104/mixtape/internal/domain/catalog"
	"github.com/nabeo104/mixtape/internal/domain/queue"
)

// Catalog is the subset of the music catalog service the entities need.
type Catalog interface {
	GetTrack(ctx context.Context, id string) (*catalog.TrackDetail, error)
	GetAlbum(ctx context.Context, id string) (*catalog.AlbumDetail, error)
	GetArtistAlbums(ctx context.Context, id string) ([]catalog.AlbumRef, error)
	GetArtistTopTracks(ctx context.Context, id string, limit int) ([]catalog.TrackDetail, error)
	SearchTracks(ctx context.Context, query string) ([]catalog.TrackRef, error)
	SearchAlbums(ctx context.Context, query string) ([]catalog.AlbumRef, error)
	SearchArtists(ctx context.Context, query string) ([]catalog.ArtistRef, error)
}

// Node is one element of a resolution tree: a resolved track, or a
// nested sequence of nodes produced by expanding an album or artist.
type Node interface {
	// Expand returns the node's sub-elements, or nil for terminal nodes.
	Expand() []Node
}

// Resolvable is implemented by every parsed playlist entry.
type Resolvable interface {
	Node
	// Dispatch resolves the entry against the catalog, yielding either
	// the entry itself (tracks) or a nested queue of further nodes
	// (albums, artists) that the caller flattens.
	Dispatch(ctx context.Context, cat Catalog) (Node, error)
	// ID returns the canonical identifier, or catalog.UnknownID.
	ID() string
	// String returns the display string used for equality and grouping.
	String() string
	// OriginalText returns the raw user-supplied text the entry was
	// built from.
	OriginalText() string
}

// Subqueue wraps a queue of nodes so the queue itself can stand as a
// single node awaiting flattening.
type Subqueue struct {
	Queue *queue.Queue[Node]
}

// Expand reports the subqueue's elements. Never nil, so an empty
// subqueue still flattens away instead of passing through as terminal.
func (s Subqueue) Expand() []Node {
	items := s.Queue.Items()
	if items == nil {
		return []Node{}
	}
	return items
}

// Dispatch resolves every entry in the queue strictly in order and
// flattens the results into a flat track queue. Entries that fail to
// resolve are dropped; onDrop, when non-nil, observes each drop.
func Dispatch(ctx context.Context, entries *queue.Queue[Resolvable], cat Catalog, onDrop func(Resolvable, error)) *queue.Queue[*Track] {
	nodes := queue.ResolveAll(ctx, entries, func(ctx context.Context, r Resolvable) (Node, error) {
		n, err := r.Dispatch(ctx, cat)
		if err != nil && onDrop != nil {
			onDrop(r, err)
		}
		return n, err
	})

	flat := queue.Flatten(nodes)
	tracks := queue.New[*Track]()
	for _, n := range flat.Items() {
		if t, ok := n.(*Track); ok {
			tracks.Add(t)
		}
	}
	return tracks
}

// cell is a write-once slot: the first Set wins and later writes are
// silently ignored.
type cell[T any] struct {
	v *T
}

func (c *cell[T]) Set(v T) {
	if c.v == nil {
		c.v = &v
	}
}

func (c *cell[T]) Get() (T, bool) {
	if c.v == nil {
		var zero T
		return zero, false
	}
	return *c.v, true
}

func (c *cell[T]) Has() bool {
	return c.v != nil
}
