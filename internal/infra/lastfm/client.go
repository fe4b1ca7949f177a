// Package lastfm provides a client for the Last.fm API, used as the
// play-count source for play-count ordering.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/nabeo104/mixtape/internal/infra/pacer"
)

// Client is a Last.fm API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	pace       pacer.Pacer

	// Cache for play counts, keyed by artist and title
	playcountCache map[string]int64
	cacheMu        sync.RWMutex
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey string
}

// getInfoResponse represents the response from track.getInfo API.
type getInfoResponse struct {
	Track struct {
		Name      string `json:"name"`
		Playcount string `json:"playcount"`
		Artist    struct {
			Name string `json:"name"`
		} `json:"artist"`
	} `json:"track"`
}

// lastFMError represents an error response from Last.fm API.
type lastFMError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// New creates a new Last.fm client.
func New(cfg Config, pace pacer.Pacer) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}

	return &Client{
		apiKey:         cfg.APIKey,
		baseURL:        "https://ws.audioscrobbler.com/2.0/",
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		pace:           pace,
		playcountCache: make(map[string]int64),
	}, nil
}

// GetPlaycount retrieves the global play count for a track.
// Reference: https://www.last.fm/api/show/track.getInfo
func (c *Client) GetPlaycount(ctx context.Context, artistName, trackTitle string) (int64, error) {
	if artistName == "" || trackTitle == "" {
		return 0, errors.New("track title and artist name are required")
	}

	// Check cache first
	cacheKey := fmt.Sprintf("playcount:%s:%s", artistName, trackTitle)
	c.cacheMu.RLock()
	if count, ok := c.playcountCache[cacheKey]; ok {
		c.cacheMu.RUnlock()
		zlog.Debug().Msgf("using cached play count for track: %s - %s", trackTitle, artistName)
		return count, nil
	}
	c.cacheMu.RUnlock()

	if err := c.pace.Wait(ctx); err != nil {
		return 0, errors.Wrap(err, "pacer wait")
	}

	params := url.Values{}
	params.Set("method", "track.getInfo")
	params.Set("api_key", c.apiKey)
	params.Set("artist", artistName)
	params.Set("track", trackTitle)
	params.Set("format", "json")
	params.Set("autocorrect", "1")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read response body")
	}

	// Check for Last.fm API errors
	var apiError lastFMError
	if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error != 0 {
		return 0, errors.Errorf("last.fm API error %d: %s", apiError.Error, apiError.Message)
	}

	// Parse successful response
	var response getInfoResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, errors.Wrap(err, "failed to parse response")
	}
	if response.Track.Playcount == "" {
		return 0, errors.Errorf("no play count for track: %s - %s", trackTitle, artistName)
	}

	count, err := strconv.ParseInt(response.Track.Playcount, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse play count")
	}

	// Cache the result
	c.cacheMu.Lock()
	c.playcountCache[cacheKey] = count
	c.cacheMu.Unlock()
	zlog.Debug().Msgf("cached play count for track: %s - %s (count: %d)", trackTitle, artistName, count)

	return count, nil
}
