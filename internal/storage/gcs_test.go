package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docbridge/internal/config"
)

// fakeGCS accepts uploads and remembers the bodies of the ones that completed.
type fakeGCS struct {
	mu      sync.Mutex
	uploads []string
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/upload/") {
		http.NotFound(w, r)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return
	}
	f.mu.Lock()
	f.uploads = append(f.uploads, string(body))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"bucket":"docs","name":"id_a.pdf","etag":"etag-1","size":"5"}`)
}

func (f *fakeGCS) completed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func newFakeGCS(t *testing.T) (*fakeGCS, Storage) {
	t.Helper()
	fake := &fakeGCS{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	t.Setenv("STORAGE_EMULATOR_HOST", srv.Listener.Addr().String())

	store, err := NewGCS(context.Background(), config.GCSConfig{Bucket: "docs"})
	require.NoError(t, err)
	return fake, store
}

type failingReader struct {
	data []byte
	sent bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("source connection reset")
}

func TestGCSStorage_Put(t *testing.T) {
	fake, store := newFakeGCS(t)

	info, err := store.Put(context.Background(), "id_a.pdf", strings.NewReader("hello"), PutObjectOptions{
		Size:        5,
		ContentType: "application/pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "docs", info.Bucket)
	assert.Equal(t, "id_a.pdf", info.Key)
	assert.Equal(t, int64(5), info.Size)
	uploads := fake.completed()
	require.Len(t, uploads, 1)
	assert.Contains(t, uploads[0], "hello")
}

func TestGCSStorage_PutAbortsOnReadFailure(t *testing.T) {
	fake, store := newFakeGCS(t)

	_, err := store.Put(context.Background(), "id_a.pdf", &failingReader{data: []byte("partial")}, PutObjectOptions{Size: -1})

	require.Error(t, err)
	assert.ErrorContains(t, err, "source connection reset")
	assert.Empty(t, fake.completed())
}

func TestGCSStorage_PutRequiresKey(t *testing.T) {
	_, store := newFakeGCS(t)

	_, err := store.Put(context.Background(), " ", strings.NewReader("x"), PutObjectOptions{})

	assert.EqualError(t, err, "object key is required")
}
