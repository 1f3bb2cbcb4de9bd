package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastroshop/storefront/internal/infrastructure/config"
)

// fakeS3 serves path-style object requests from memory
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		_, _ = w.Write(body)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestNewS3Store_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3Store(ctx, config.S3Config{AccessKey: "k", SecretKey: "s"}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("half configured credentials return error", func(t *testing.T) {
		_, err := NewS3Store(ctx, config.S3Config{Bucket: "b", AccessKey: "k"}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")
	})

	t.Run("valid config creates store", func(t *testing.T) {
		store, err := NewS3Store(ctx, config.S3Config{
			Bucket: "carts", AccessKey: "k", SecretKey: "s",
			Endpoint: "localhost:9000", UsePathStyle: true,
		}, "storefront:")
		require.NoError(t, err)
		assert.Equal(t, "carts", store.Bucket())
	})
}

func TestS3Store_Objects(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: make(map[string][]byte)}
	server := httptest.NewServer(fake)
	defer server.Close()

	store, err := NewS3Store(ctx, config.S3Config{
		Bucket:       "carts",
		Region:       "eu-central-1",
		Endpoint:     server.URL,
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	}, "storefront/")
	require.NoError(t, err)

	_, found, err := store.Get(ctx, "gastroshop-cart")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "gastroshop-cart", []byte(`{"version":2,"items":[]}`)))

	fake.mu.Lock()
	_, stored := fake.objects["/carts/storefront/gastroshop-cart"]
	fake.mu.Unlock()
	assert.True(t, stored)

	v, found, err := store.Get(ctx, "gastroshop-cart")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"version":2,"items":[]}`, string(v))

	require.NoError(t, store.Delete(ctx, "gastroshop-cart"))
	_, found, err = store.Get(ctx, "gastroshop-cart")
	require.NoError(t, err)
	assert.False(t, found)
}
