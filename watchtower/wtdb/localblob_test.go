package wtdb

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/breez/lnwatchtower/watchtower/blob"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStorePutGetDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "watchtower_blobs")

	store, err := NewLocalBlobStore(dir)
	require.NoError(t, err)

	var hint blob.BreachHint
	hint[0] = 0xab

	payload := bytes.Repeat([]byte{0x09}, blob.CiphertextSize)

	err = store.Put(hint, payload)
	require.NoError(t, err)

	got, err := store.Get(hint)
	require.NoError(t, err)
	require.True(t, bytes.Equal(payload, got))

	err = store.Delete(hint)
	require.NoError(t, err)

	_, err = store.Get(hint)
	require.Equal(t, ErrBlobNotFound, err)
}

func TestLocalBlobStoreListHints(t *testing.T) {
	dir := t.TempDir()

	store, err := NewLocalBlobStore(dir)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		var h blob.BreachHint
		h[0] = byte(i)

		err := store.Put(h, bytes.Repeat([]byte{byte(i)}, blob.CiphertextSize))
		require.NoError(t, err)
	}

	listed, err := store.ListHints()
	require.NoError(t, err)
	require.Len(t, listed, 5)
}

func TestLocalBlobStoreDeleteMissingIsNoop(t *testing.T) {
	dir := t.TempDir()

	store, err := NewLocalBlobStore(dir)
	require.NoError(t, err)

	var hint blob.BreachHint
	require.NoError(t, store.Delete(hint))
}
