// Package pipeline drives the playlist resolution pipeline:
// parse, dispatch and flatten, dedup, order, group, serialize.
package pipeline

import (
	"context"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/nabeo104/mixtape/internal/app/parser"
	"github.com/nabeo104/mixtape/internal/domain/catalog"
	"github.com/nabeo104/mixtape/internal/domain/entry"
	"github.com/nabeo104/mixtape/internal/domain/queue"
)

// Playcounter is the secondary metadata service used by play-count
// ordering.
type Playcounter interface {
	GetPlaycount(ctx context.Context, artistName, trackTitle string) (int64, error)
}

// missingScore sorts below every real popularity or play-count value.
const missingScore = -1

// Orchestrator resolves playlist text into a serialized identifier
// list.
type Orchestrator struct {
	cat    entry.Catalog
	counts Playcounter
}

// New creates an orchestrator. counts may be nil when play-count
// ordering is never requested.
func New(cat entry.Catalog, counts Playcounter) *Orchestrator {
	return &Orchestrator{cat: cat, counts: counts}
}

// Run executes the pipeline stages strictly in sequence and returns
// the newline-joined canonical identifiers of the resolved tracks.
// Entries that fail to resolve are logged and omitted; the pipeline
// itself never fails because one entry could not be resolved.
func (o *Orchestrator) Run(ctx context.Context, text string) string {
	entries, settings := parser.Parse(text)

	tracks := entry.Dispatch(ctx, entries, o.cat, func(r entry.Resolvable, err error) {
		zlog.Warn().
			Str("entry", r.OriginalText()).
			Err(err).
			Msg("entry dropped: resolution failed")
	})
	zlog.Info().
		Int("entries", entries.Len()).
		Int("tracks", tracks.Len()).
		Msg("resolved playlist entries")

	if settings.Deduplicate {
		tracks = queue.DedupFunc(tracks, func(a, b *entry.Track) bool {
			return a.Equals(b)
		})
	}

	o.order(ctx, tracks, settings.Ordering)
	tracks = group(tracks, settings.Grouping)

	return serialize(tracks)
}

// order sorts the tracks in place according to the ordering mode,
// fetching whichever score the mode needs first. Tracks whose score
// cannot be fetched stay in the queue and sort below every scored
// track.
func (o *Orchestrator) order(ctx context.Context, tracks *queue.Queue[*entry.Track], mode parser.OrderingMode) {
	switch mode {
	case parser.OrderPopularity:
		for _, t := range tracks.Items() {
			if err := t.RefreshDetail(ctx, o.cat); err != nil {
				zlog.Debug().
					Str("track", t.String()).
					Err(err).
					Msg("popularity refresh failed")
			}
		}
		tracks.Sort(func(a, b *entry.Track) int {
			return popularityOf(b) - popularityOf(a)
		})

	case parser.OrderPlaycount:
		if o.counts == nil {
			zlog.Warn().Msg("play-count ordering requested but no play-count service is configured")
			return
		}
		for _, t := range tracks.Items() {
			if _, ok := t.Playcount(); ok {
				continue
			}
			n, err := o.counts.GetPlaycount(ctx, t.ArtistName(), t.Title())
			if err != nil {
				zlog.Debug().
					Str("track", t.String()).
					Err(err).
					Msg("play-count fetch failed")
				continue
			}
			t.SetPlaycount(n)
		}
		tracks.Sort(func(a, b *entry.Track) int {
			switch pa, pb := playcountOf(a), playcountOf(b); {
			case pa > pb:
				return -1
			case pa < pb:
				return 1
			default:
				return 0
			}
		})
	}
}

// group concatenates the tracks into buckets per the grouping mode,
// keyed by the lower-cased entry text, artist name, or album name.
func group(tracks *queue.Queue[*entry.Track], mode parser.GroupingMode) *queue.Queue[*entry.Track] {
	switch mode {
	case parser.GroupEntry:
		return queue.Group(tracks, func(t *entry.Track) string {
			return strings.ToLower(t.OriginalText())
		})
	case parser.GroupArtist:
		return queue.Group(tracks, func(t *entry.Track) string {
			return strings.ToLower(t.ArtistName())
		})
	case parser.GroupAlbum:
		return queue.Group(tracks, func(t *entry.Track) string {
			return strings.ToLower(t.AlbumName())
		})
	default:
		return tracks
	}
}

// serialize joins the canonical track identifiers with newlines.
// Tracks without a usable identifier are omitted from the output, but
// were never removed from the queue during the earlier stages.
func serialize(tracks *queue.Queue[*entry.Track]) string {
	ids := make([]string, 0, tracks.Len())
	for _, t := range tracks.Items() {
		id := t.ID()
		if id == catalog.UnknownID {
			zlog.Warn().
				Str("track", t.String()).
				Msg("track omitted from output: no usable identifier")
			continue
		}
		ids = append(ids, id)
	}
	return strings.Join(ids, "\n")
}

func popularityOf(t *entry.Track) int {
	if p, ok := t.Popularity(); ok {
		return p
	}
	return missingScore
}

func playcountOf(t *entry.Track) int64 {
	if n, ok := t.Playcount(); ok {
		return n
	}
	return missingScore
}
