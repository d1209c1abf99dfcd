// Package blob stores justification documents behind an id-addressed
// interface, decoupling the attendance ledger from filesystem layout.
package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob: no such document")

// Store persists opaque byte streams and hands back references.
type Store interface {
	Store(r io.Reader) (ref string, err error)
	Retrieve(ref string) (io.ReadCloser, error)
	Remove(ref string) error
}

// FSStore keeps blobs as flat files named by uuid under a single directory.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) path(ref string) (string, error) {
	// refs are uuids we issued ourselves; anything else is treated as absent
	if _, err := uuid.Parse(ref); err != nil {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, ref), nil
}

func (s *FSStore) Store(r io.Reader) (string, error) {
	ref := uuid.NewString()
	p := filepath.Join(s.dir, ref)
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", fmt.Errorf("failed to close blob: %w", err)
	}
	return ref, nil
}

func (s *FSStore) Retrieve(ref string) (io.ReadCloser, error) {
	p, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

func (s *FSStore) Remove(ref string) error {
	p, err := s.path(ref)
	if err != nil {
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}
