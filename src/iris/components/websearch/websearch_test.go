package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cx", q.Get("cx"))
		assert.Equal(t, "Hana", q.Get("q"))
		assert.Equal(t, "w.example.com", q.Get("siteSearch"))
		w.Write([]byte(`{"items":[
			{"link":"https://w.example.com/wiki/Hana_Lee"},
			{"link":"https://w.example.com/wiki/Lee_Family"},
			{"link":"https://w.example.com/wiki/Extra"}
		]}`))
	}))
	defer srv.Close()

	urls, err := NewClient(srv.URL, "test-key", "test-cx").Search(context.Background(), "Hana", "w.example.com", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://w.example.com/wiki/Hana_Lee", "https://w.example.com/wiki/Lee_Family"}, urls)
}

func TestSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", "cx").Search(context.Background(), "Hana", "w.example.com", 2)
	assert.Error(t, err)
}

func TestSearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	urls, err := NewClient(srv.URL, "k", "cx").Search(context.Background(), "Nobody", "w.example.com", 2)
	require.NoError(t, err)
	assert.Empty(t, urls)
}
