// Package parser converts raw playlist text into an ordered queue of
// resolvable entries plus the global playlist settings.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/nabeo104/mixtape/internal/domain/entry"
	"github.com/nabeo104/mixtape/internal/domain/queue"
)

// OrderingMode selects how the resolved tracks are ordered.
type OrderingMode string

const (
	OrderNone       OrderingMode = "none"
	OrderPopularity OrderingMode = "popularity"
	OrderPlaycount  OrderingMode = "playcount"
)

// GroupingMode selects how the resolved tracks are grouped.
type GroupingMode string

const (
	GroupNone   GroupingMode = "none"
	GroupEntry  GroupingMode = "entry"
	GroupArtist GroupingMode = "artist"
	GroupAlbum  GroupingMode = "album"
)

// Settings are the global directives collected while parsing. Only one
// grouping mode is kept; the last directive wins.
type Settings struct {
	Ordering    OrderingMode
	Grouping    GroupingMode
	Deduplicate bool
}

// Directive grammar. Separator punctuation between keyword and payload
// may be whitespace or a colon, and keywords are case-insensitive.
var (
	orderRe  = regexp.MustCompile(`(?i)^#\s*(?:ORDER|SORT)\s*(?:BY)?[\s:]+(POPULARITY|LASTFM|PLAYCOUNT)\s*$`)
	groupRe  = regexp.MustCompile(`(?i)^#\s*GROUP\s*(?:BY)?[\s:]+(ENTRY|ARTIST|ALBUM)\s*$`)
	uniqueRe = regexp.MustCompile(`(?i)^#\s*UNIQUE\s*$`)
	albumRe  = regexp.MustCompile(`(?i)^#ALBUM(\d*)[\s:]+(\S.*)$`)
	artistRe = regexp.MustCompile(`(?i)^#(?:ARTIST|BAND)(\d*)[\s:]+(\S.*)$`)
	extinfRe = regexp.MustCompile(`(?i)^#EXTINF:[^,]*,\s*(.+)$`)
	extm3uRe = regexp.MustCompile(`(?i)^#EXTM3U\b`)
)

// Parse classifies each line of text into a directive, a comment, or a
// playlist entry. Lines that almost match a directive but fail its
// grammar (a malformed numeric suffix, say) fall through to the most
// permissive interpretation: a plain track line.
func Parse(text string) (*queue.Queue[entry.Resolvable], Settings) {
	settings := Settings{
		Ordering:    OrderNone,
		Grouping:    GroupNone,
		Deduplicate: true,
	}
	entries := queue.New[entry.Resolvable]()

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		switch {
		case orderRe.MatchString(line):
			mode := strings.ToUpper(orderRe.FindStringSubmatch(line)[1])
			if mode == "POPULARITY" {
				settings.Ordering = OrderPopularity
			} else {
				settings.Ordering = OrderPlaycount
			}

		case groupRe.MatchString(line):
			switch strings.ToUpper(groupRe.FindStringSubmatch(line)[1]) {
			case "ENTRY":
				settings.Grouping = GroupEntry
			case "ARTIST":
				settings.Grouping = GroupArtist
			case "ALBUM":
				settings.Grouping = GroupAlbum
			}

		case uniqueRe.MatchString(line):
			settings.Deduplicate = true

		case strings.HasPrefix(line, "##"), extm3uRe.MatchString(line):
			// Comment or playlist-format header.

		case albumRe.MatchString(line):
			m := albumRe.FindStringSubmatch(line)
			entries.Add(entry.NewAlbum(m[2], parseLimit(m[1])))

		case artistRe.MatchString(line):
			m := artistRe.FindStringSubmatch(line)
			entries.Add(entry.NewArtist(m[2], parseLimit(m[1])))

		case extinfRe.MatchString(line):
			m := extinfRe.FindStringSubmatch(line)
			entries.Add(entry.NewTrack(m[1]))
			// The annotation is normally followed by a raw URI
			// restating the same track; swallow it.
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if next != "" && !strings.HasPrefix(next, "#") {
					i++
				}
			}

		default:
			entries.Add(entry.NewTrack(line))
		}
	}

	zlog.Debug().
		Int("entries", entries.Len()).
		Str("ordering", string(settings.Ordering)).
		Str("grouping", string(settings.Grouping)).
		Bool("dedup", settings.Deduplicate).
		Msg("parsed playlist text")

	return entries, settings
}

// parseLimit parses a directive's numeric suffix. An empty or
// unparseable suffix means unlimited.
func parseLimit(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
