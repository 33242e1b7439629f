package myvariant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariant(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/variant/chr1:g.1000A>G", r.URL.Path)
		assert.Equal(t, "clinvar,dbsnp,exac", r.URL.Query().Get("fields"))
		w.Write([]byte(`{"_id": "chr1:g.1000A>G", "dbsnp": {"rsid": "rs1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, NewMemoryCache())

	payload, err := c.Variant("chr1:g.1000A>G")
	require.NoError(t, err)
	assert.Contains(t, string(payload), "rs1")
	assert.Equal(t, 1, calls)

	// Second lookup is served from the cache.
	payload2, err := c.Variant("chr1:g.1000A>G")
	require.NoError(t, err)
	assert.Equal(t, string(payload), string(payload2))
	assert.Equal(t, 1, calls)
}

func TestVariantNotFound(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"id": "chr1:g.9Z>Q", "notfound": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, NewMemoryCache())

	payload, err := c.Variant("chr1:g.9Z>Q")
	require.NoError(t, err)
	assert.Nil(t, payload)

	// Misses are memoized too.
	payload, err = c.Variant("chr1:g.9Z>Q")
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, 1, calls)
}

func TestVariant404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, NewMemoryCache())

	payload, err := c.Variant("chr1:g.1000A>G")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestVariantServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, NewMemoryCache())

	_, err := c.Variant("chr1:g.1000A>G")
	assert.Error(t, err)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()

	_, ok, err := c.Get("chr1:g.1000A>G")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put("chr1:g.1000A>G", json.RawMessage(`{"a": 1}`)))

	payload, ok, err := c.Get("chr1:g.1000A>G")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"a": 1}`, string(payload))
}

func TestDuckDBCache(t *testing.T) {
	c, err := OpenDuckDBCache("")
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Get("chr1:g.1000A>G")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put("chr1:g.1000A>G", json.RawMessage(`{"dbsnp": {"rsid": "rs1"}}`)))

	payload, ok, err := c.Get("chr1:g.1000A>G")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"dbsnp": {"rsid": "rs1"}}`, string(payload))

	// Null payloads survive the round trip.
	require.NoError(t, c.Put("chr1:g.miss", nullPayload))
	payload, ok, err = c.Get("chr1:g.miss")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "null", string(payload))
}
