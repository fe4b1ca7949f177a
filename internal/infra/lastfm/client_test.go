package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nabeo104/mixtape/internal/infra/pacer"
)

func TestGetPlaycount(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "track.getInfo", r.URL.Query().Get("method"))
		assert.Equal(t, "The Beatles", r.URL.Query().Get("artist"))
		assert.Equal(t, "Yesterday", r.URL.Query().Get("track"))
		assert.Equal(t, "test_key", r.URL.Query().Get("api_key"))

		response := `{
			"track": {
				"name": "Yesterday",
				"playcount": "12345678",
				"artist": {"name": "The Beatles"}
			}
		}`
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, response)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key"}, pacer.Nop{})
	assert.NoError(t, err)
	client.baseURL = server.URL + "/"

	ctx := context.Background()
	count, err := client.GetPlaycount(ctx, "The Beatles", "Yesterday")
	assert.NoError(t, err)
	assert.Equal(t, int64(12345678), count)

	// Second call is served from the cache.
	countCached, err := client.GetPlaycount(ctx, "The Beatles", "Yesterday")
	assert.NoError(t, err)
	assert.Equal(t, count, countCached)
	assert.Equal(t, int64(1), requests.Load())
}

func TestGetPlaycount_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": 6, "message": "Track not found"}`)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key"}, pacer.Nop{})
	assert.NoError(t, err)
	client.baseURL = server.URL + "/"

	_, err = client.GetPlaycount(context.Background(), "Nobody", "Nothing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Track not found")
}

func TestGetPlaycount_MissingCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"track": {"name": "Obscure", "artist": {"name": "X"}}}`)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key"}, pacer.Nop{})
	assert.NoError(t, err)
	client.baseURL = server.URL + "/"

	_, err = client.GetPlaycount(context.Background(), "X", "Obscure")
	assert.Error(t, err)
}

func TestGetPlaycount_RequiresNames(t *testing.T) {
	client, err := New(Config{APIKey: "test_key"}, pacer.Nop{})
	assert.NoError(t, err)

	_, err = client.GetPlaycount(context.Background(), "", "Yesterday")
	assert.Error(t, err)
	_, err = client.GetPlaycount(context.Background(), "The Beatles", "")
	assert.Error(t, err)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, pacer.Nop{})
	assert.Error(t, err)
}
