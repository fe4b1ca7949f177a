// Package spotify provides the music catalog client backed by the
// Spotify Web API.
package spotify

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/nabeo104/mixtape/internal/domain/catalog"
	"github.com/nabeo104/mixtape/internal/infra/pacer"
)

const trackURLBase = "https://open.spotify.com/track/"

// pageSize is the Spotify API maximum for tracklist and album-listing
// pages.
const pageSize = 50

// Client is the Spotify-backed catalog client. Every request waits on
// the injected pacer first; there is no retry beyond that pacing.
type Client struct {
	client      *spotify.Client
	pace        pacer.Pacer
	searchLimit int
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	SearchLimit  int
}

// New creates a new Spotify catalog client.
func New(ctx context.Context, cfg Config, pace pacer.Pacer) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
	)

	// Token refresh is handled by the oauth2 transport.
	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}
	httpClient := auth.Client(ctx, token)

	limit := cfg.SearchLimit
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	return &Client{
		client:      spotify.New(httpClient),
		pace:        pace,
		searchLimit: limit,
	}, nil
}

// GetTrack retrieves full track detail by ID, URL, or URI.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*catalog.TrackDetail, error) {
	if err := c.pace.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "pacer wait")
	}

	id := lookupID(catalog.KindTrack, trackID)
	t, err := c.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get track")
	}
	return convertFullTrack(t), nil
}

// GetAlbum retrieves full album detail, including its complete
// tracklist, by ID, URL, or URI. Tracklists longer than one page are
// fetched page by page.
func (c *Client) GetAlbum(ctx context.Context, albumID string) (*catalog.AlbumDetail, error) {
	if err := c.pace.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "pacer wait")
	}

	id := lookupID(catalog.KindAlbum, albumID)
	a, err := c.client.GetAlbum(ctx, spotify.ID(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get album")
	}

	tracks := make([]catalog.TrackRef, 0, int(a.Tracks.Total))
	for _, t := range a.Tracks.Tracks {
		tracks = append(tracks, convertSimpleTrack(&t))
	}

	// The album lookup embeds only the first tracklist page.
	for len(tracks) < int(a.Tracks.Total) {
		if err := c.pace.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "pacer wait")
		}
		page, err := c.client.GetAlbumTracks(ctx, a.ID,
			spotify.Limit(pageSize),
			spotify.Offset(len(tracks)),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get album tracks")
		}
		if len(page.Tracks) == 0 {
			break
		}
		for _, t := range page.Tracks {
			tracks = append(tracks, convertSimpleTrack(&t))
		}
	}

	return &catalog.AlbumDetail{
		ID:      string(a.ID),
		Name:    a.Name,
		Artists: artistNames(a.Artists),
		Tracks:  tracks,
	}, nil
}

// GetArtistAlbums retrieves the artist's complete album listing,
// paging through it in release order.
func (c *Client) GetArtistAlbums(ctx context.Context, artistID string) ([]catalog.AlbumRef, error) {
	id := lookupID(catalog.KindArtist, artistID)

	var albums []catalog.AlbumRef
	offset := 0
	for {
		if err := c.pace.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "pacer wait")
		}
		page, err := c.client.GetArtistAlbums(ctx, spotify.ID(id),
			[]spotify.AlbumType{spotify.AlbumTypeAlbum},
			spotify.Limit(pageSize),
			spotify.Offset(offset),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get artist albums")
		}
		for _, a := range page.Albums {
			albums = append(albums, catalog.AlbumRef{
				ID:      string(a.ID),
				Name:    a.Name,
				Artists: artistNames(a.Artists),
			})
		}
		if len(page.Albums) < pageSize {
			break
		}
		offset += pageSize
	}
	return albums, nil
}

// GetArtistTopTracks retrieves the artist's top tracks, at most limit.
func (c *Client) GetArtistTopTracks(ctx context.Context, artistID string, limit int) ([]catalog.TrackDetail, error) {
	if err := c.pace.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "pacer wait")
	}

	id := lookupID(catalog.KindArtist, artistID)
	full, err := c.client.GetArtistsTopTracks(ctx, spotify.ID(id), "US")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get artist top tracks")
	}

	if limit > 0 && limit < len(full) {
		full = full[:limit]
	}
	tracks := make([]catalog.TrackDetail, 0, len(full))
	for _, t := range full {
		tracks = append(tracks, *convertFullTrack(&t))
	}
	return tracks, nil
}

// SearchTracks searches the catalog for tracks matching the query.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]catalog.TrackRef, error) {
	result, err := c.search(ctx, query, spotify.SearchTypeTrack)
	if err != nil {
		return nil, err
	}
	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]catalog.TrackRef, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		tracks = append(tracks, convertFullTrack(&t).Ref())
	}
	return tracks, nil
}

// SearchAlbums searches the catalog for albums matching the query.
func (c *Client) SearchAlbums(ctx context.Context, query string) ([]catalog.AlbumRef, error) {
	result, err := c.search(ctx, query, spotify.SearchTypeAlbum)
	if err != nil {
		return nil, err
	}
	if result.Albums == nil {
		return nil, nil
	}

	albums := make([]catalog.AlbumRef, 0, len(result.Albums.Albums))
	for _, a := range result.Albums.Albums {
		albums = append(albums, catalog.AlbumRef{
			ID:      string(a.ID),
			Name:    a.Name,
			Artists: artistNames(a.Artists),
		})
	}
	return albums, nil
}

// SearchArtists searches the catalog for artists matching the query.
func (c *Client) SearchArtists(ctx context.Context, query string) ([]catalog.ArtistRef, error) {
	result, err := c.search(ctx, query, spotify.SearchTypeArtist)
	if err != nil {
		return nil, err
	}
	if result.Artists == nil {
		return nil, nil
	}

	artists := make([]catalog.ArtistRef, 0, len(result.Artists.Artists))
	for _, a := range result.Artists.Artists {
		artists = append(artists, catalog.ArtistRef{
			ID:   string(a.ID),
			Name: a.Name,
		})
	}
	return artists, nil
}

func (c *Client) search(ctx context.Context, query string, st spotify.SearchType) (*spotify.SearchResult, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}
	if err := c.pace.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "pacer wait")
	}

	result, err := c.client.Search(ctx, query, st, spotify.Limit(c.searchLimit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to search")
	}
	return result, nil
}

// convertFullTrack converts a Spotify FullTrack to catalog detail.
func convertFullTrack(t *spotify.FullTrack) *catalog.TrackDetail {
	return &catalog.TrackDetail{
		ID:         string(t.ID),
		Name:       t.Name,
		Artists:    artistNames(t.Artists),
		Album:      t.Album.Name,
		Popularity: int(t.Popularity),
		URL:        trackURLBase + string(t.ID),
	}
}

// convertSimpleTrack converts a Spotify SimpleTrack, as found in album
// tracklists, to a catalog ref.
func convertSimpleTrack(t *spotify.SimpleTrack) catalog.TrackRef {
	return catalog.TrackRef{
		ID:      string(t.ID),
		Name:    t.Name,
		Artists: artistNames(t.Artists),
	}
}

func artistNames(artists []spotify.SimpleArtist) []string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return names
}

// lookupID accepts a raw ID, a Spotify URI, or a permalink URL and
// returns the bare ID for the API call.
func lookupID(kind catalog.Kind, input string) string {
	if id := catalog.ExtractID(kind, input); id != catalog.UnknownID {
		return id
	}
	return input
}
