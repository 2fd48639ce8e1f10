package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

var (
	// ErrEmptyImage is returned when a caller tries to persist zero bytes.
	ErrEmptyImage = errors.New("refusing to persist empty image")
)

// PersistedImage describes a single image file written by this service.
type PersistedImage struct {
	Path      string    `json:"path"`
	SourceURL string    `json:"source_url,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
	Size      int64     `json:"size"`
}

// ImageStore is a concurrency-safe, append-only store of image files in a
// single directory, with retention by count and by age.
type ImageStore struct {
	mu sync.Mutex

	dir   string
	index []PersistedImage

	maxFiles int           // max number of files kept (0 = unlimited)
	maxAge   time.Duration // max age of files (0 = unlimited)
}

// NewImageStore creates the directory if needed and indexes any files already
// present so retention covers previous runs.
func NewImageStore(dir string, maxFiles int, maxAge time.Duration) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir %s: %w", dir, err)
	}

	s := &ImageStore{
		dir:      dir,
		maxFiles: maxFiles,
		maxAge:   maxAge,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		s.index = append(s.index, PersistedImage{
			Path:    filepath.Join(dir, e.Name()),
			SavedAt: info.ModTime(),
			Size:    info.Size(),
		})
	}
	sort.Slice(s.index, func(i, j int) bool {
		return s.index[i].SavedAt.Before(s.index[j].SavedAt)
	})

	return s, nil
}

// Dir returns the directory this store writes into.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save writes data under name and records it in the index.
func (s *ImageStore) Save(name string, data []byte, sourceURL string) (PersistedImage, error) {
	if len(data) == 0 {
		return PersistedImage{}, ErrEmptyImage
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return PersistedImage{}, fmt.Errorf("write image %s: %w", path, err)
	}

	img := PersistedImage{
		Path:      path,
		SourceURL: sourceURL,
		SavedAt:   time.Now().UTC(),
		Size:      int64(len(data)),
	}

	s.mu.Lock()
	s.index = append(s.index, img)
	s.mu.Unlock()

	return img, nil
}

// Count returns the number of indexed images.
func (s *ImageStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

// Prune enforces retention by count and by age, deleting files from disk.
// It returns the number of images removed.
func (s *ImageStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evict []PersistedImage

	// Retention by count: evict oldest first.
	if s.maxFiles > 0 && len(s.index) > s.maxFiles {
		over := len(s.index) - s.maxFiles
		evict = append(evict, s.index[:over]...)
		s.index = s.index[over:]
	}

	// Retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.index); i++ {
			if !s.index[i].SavedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			evict = append(evict, s.index[:i]...)
			s.index = s.index[i:]
		}
	}

	removed := 0
	for _, img := range evict {
		if err := os.Remove(img.Path); err != nil && !os.IsNotExist(err) {
			log.Printf("store: failed to remove %s: %v", img.Path, err)
			continue
		}
		removed++
	}
	return removed
}
