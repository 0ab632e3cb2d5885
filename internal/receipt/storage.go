package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage holds the original receipt documents (photos, PDFs) so they
// can be re-served or re-extracted later.
type Storage interface {
	// Save stores a document and returns the name it was stored under
	Save(filename string, data []byte) (string, error)

	// Get retrieves a stored document by name
	Get(path string) ([]byte, error)

	// Delete removes a stored document
	Delete(path string) error
}

// LocalStorage implements the Storage interface using a flat directory
// on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// resolve joins a stored name onto the base directory, rejecting names
// that would escape it. Stored names come back out of the database, so
// this guards requests for ids like "../receiptwise.db".
func (l *LocalStorage) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	return filepath.Join(l.basePath, name), nil
}

// Save stores a document in the storage directory
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	path, err := l.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return filename, nil
}

// Get retrieves a stored document
func (l *LocalStorage) Get(path string) ([]byte, error) {
	fullPath, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Delete removes a stored document
func (l *LocalStorage) Delete(path string) error {
	fullPath, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
