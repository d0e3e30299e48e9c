package heightfield

import (
	"path/filepath"
	"strings"

	"github.com/banshee-data/greenreader/internal/fsutil"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"github.com/banshee-data/greenreader/internal/monitoring"
)

const (
	metaFile = "heightfield.json"
	gridFile = "heightfield.bin"
)

// Store persists artifact pairs under root/<hole id>/.
type Store struct {
	fs   fsutil.FileSystem
	root string
}

// NewStore returns a Store rooted at root.
func NewStore(fs fsutil.FileSystem, root string) *Store {
	return &Store{fs: fs, root: root}
}

// Dir returns the artifact directory of a hole id such as "presidio/1".
func (s *Store) Dir(id string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(id))
	if id == "" || clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", greenerr.Input("store", "invalid hole id %q", id)
	}
	return filepath.Join(s.root, clean), nil
}

// Save writes both artifacts for id. The grid goes first so a reader that
// finds the metadata also finds a matching grid.
func (s *Store) Save(id string, h *Heightfield) error {
	dir, err := s.Dir(id)
	if err != nil {
		return err
	}
	meta, err := EncodeMeta(h)
	if err != nil {
		return greenerr.Resource("save "+id, "encode meta: %w", err)
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return greenerr.Resource("save "+id, "mkdir: %w", err)
	}
	if err := s.fs.WriteFile(filepath.Join(dir, gridFile), EncodeGrid(h), 0o644); err != nil {
		return greenerr.Resource("save "+id, "write grid: %w", err)
	}
	if err := s.fs.WriteFile(filepath.Join(dir, metaFile), meta, 0o644); err != nil {
		return greenerr.Resource("save "+id, "write meta: %w", err)
	}
	monitoring.Logf("heightfield: saved %s (%dx%d, %d valid cells)", id, h.NX(), h.NZ(), h.ValidCount())
	return nil
}

// Load reads and decodes the artifact pair for id. Missing or malformed
// artifacts surface as resource errors; nothing is retried.
func (s *Store) Load(id string) (*Heightfield, error) {
	dir, err := s.Dir(id)
	if err != nil {
		return nil, err
	}
	metaRaw, err := s.fs.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, greenerr.Resource("load "+id, "read meta: %w", err)
	}
	meta, err := DecodeMeta(metaRaw)
	if err != nil {
		return nil, err
	}
	gridRaw, err := s.fs.ReadFile(filepath.Join(dir, gridFile))
	if err != nil {
		return nil, greenerr.Resource("load "+id, "read grid: %w", err)
	}
	return DecodeGrid(meta, gridRaw)
}
