// Package wtdb implements the on-disk fallback store used by the
// delivery pipeline when a tower is unreachable: one file per
// undelivered EncryptedBlob, named by its hint, written atomically so a
// crash mid-write never leaves a corrupt blob behind.
package wtdb

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/breez/lnwatchtower/watchtower/blob"
	"github.com/go-errors/errors"
)

// blobFileExt is the extension used for a persisted, delivery-ready
// blob.
const blobFileExt = ".blob"

// tmpFileExt is the extension used for a blob mid-write, before it is
// renamed into place.
const tmpFileExt = ".blob.tmp"

// ErrBlobNotFound is returned when a hint has no corresponding LocalBlob
// on disk.
var ErrBlobNotFound = errors.New("wtdb: no local blob for hint")

// LocalBlobStore persists undelivered EncryptedBlobs to a directory,
// keyed by their 16-byte hint, so that a restart or a transport failure
// never loses a justice blob.
type LocalBlobStore struct {
	dir string
}

// NewLocalBlobStore returns a store rooted at dir, creating the
// directory if it does not already exist.
func NewLocalBlobStore(dir string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &LocalBlobStore{dir: dir}, nil
}

func (s *LocalBlobStore) hintPath(hint blob.BreachHint, ext string) string {
	return filepath.Join(s.dir, hex.EncodeToString(hint[:])+ext)
}

// Put writes encryptedBlob to disk under hint, atomically: the data is
// written to a temp file, fsynced, then renamed over the final path.
func (s *LocalBlobStore) Put(hint blob.BreachHint, encryptedBlob []byte) error {
	tmpPath := s.hintPath(hint, tmpFileExt)
	finalPath := s.hintPath(hint, blobFileExt)

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := f.Write(encryptedBlob); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, finalPath)
}

// Delete removes the persisted blob for hint, if any. It is a no-op if
// the blob was already removed.
func (s *LocalBlobStore) Delete(hint blob.BreachHint) error {
	err := os.Remove(s.hintPath(hint, blobFileExt))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Get reads the persisted blob for hint.
func (s *LocalBlobStore) Get(hint blob.BreachHint) ([]byte, error) {
	data, err := os.ReadFile(s.hintPath(hint, blobFileExt))
	if os.IsNotExist(err) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ListHints scans the store directory and returns the hints of every
// persisted blob, for loading on startup.
func (s *LocalBlobStore) ListHints() ([]blob.BreachHint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var hints []blob.BreachHint
	for _, entry := range entries {
		name := entry.Name()
		if filepath.Ext(name) != blobFileExt {
			continue
		}

		hintHex := name[:len(name)-len(blobFileExt)]
		raw, err := hex.DecodeString(hintHex)
		if err != nil || len(raw) != 16 {
			continue
		}

		var hint blob.BreachHint
		copy(hint[:], raw)
		hints = append(hints, hint)
	}

	return hints, nil
}
