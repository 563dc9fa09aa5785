package session

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mesto/internal/repository/sqlite"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.KV())
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Token(ctx)
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.SetToken(ctx, "abc"))
	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Token(ctx)
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Clear(ctx), "clearing twice is fine")
}

func TestStore_RejectsEmptyToken(t *testing.T) {
	store := newTestStore(t)

	assert.Error(t, store.SetToken(context.Background(), ""))
}

type brokenKV struct{}

var errDisk = errors.New("disk gone")

func (brokenKV) GetItem(context.Context, string) (string, bool, error) { return "", false, errDisk }
func (brokenKV) SetItem(context.Context, string, string) error      { return errDisk }
func (brokenKV) RemoveItem(context.Context, string) error           { return errDisk }

func TestStore_PropagatesStorageErrors(t *testing.T) {
	store := NewStore(brokenKV{})
	ctx := context.Background()

	_, err := store.Token(ctx)
	assert.ErrorIs(t, err, errDisk)
	assert.NotErrorIs(t, err, ErrNoToken)

	assert.ErrorIs(t, store.SetToken(ctx, "x"), errDisk)
	assert.ErrorIs(t, store.Clear(ctx), errDisk)
}

// The token source must see changes made after it was created.
func TestTokenSource_ReadsAtCallTime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	src := store.TokenSource(ctx)

	_, err := src.Token()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.SetToken(ctx, "first"))
	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "first", tok.AccessToken)

	require.NoError(t, store.SetToken(ctx, "second"))
	tok, err = src.Token()
	require.NoError(t, err)
	assert.Equal(t, "second", tok.AccessToken)

	req := httptest.NewRequest("GET", "/cards", nil)
	tok.SetAuthHeader(req)
	assert.Equal(t, "Bearer second", req.Header.Get("Authorization"))
}
