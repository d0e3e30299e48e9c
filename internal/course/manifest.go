// Package course describes a course's greens on disk and builds their
// heightfield artifacts.
package course

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/banshee-data/greenreader/internal/config"
	"github.com/banshee-data/greenreader/internal/fsutil"
	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"github.com/banshee-data/greenreader/internal/surface"
	"gopkg.in/yaml.v3"
)

// Manifest lists the holes of one course. Input paths are relative to the
// manifest's directory.
//
//	course: presidio
//	defaults:
//	  grid_resolution_ft: 0.5
//	holes:
//	  - id: "1"
//	    boundary: hole1/boundary.json
//	    contours: hole1/contours.json
//	    hole_xz_ft: {x: 3.5, z: -2}
type Manifest struct {
	Course   string     `yaml:"course"`
	Defaults Overrides  `yaml:"defaults"`
	Holes    []HoleSpec `yaml:"holes"`

	dir string
}

// Overrides replaces reconstruction tunables for a course or a hole.
type Overrides struct {
	GridResolutionFt *float64 `yaml:"grid_resolution_ft,omitempty"`
	SampleStepFt     *float64 `yaml:"sample_step_ft,omitempty"`
	Smoothing        *float64 `yaml:"smoothing,omitempty"`
}

// HoleSpec is one green's inputs.
type HoleSpec struct {
	ID       string      `yaml:"id"`
	Boundary string      `yaml:"boundary"`
	Contours string      `yaml:"contours"`
	Hole     *geom.Point `yaml:"hole_xz_ft,omitempty"`

	Overrides `yaml:",inline"`
}

// LoadManifest reads and validates a YAML manifest. Unknown keys are
// rejected.
func LoadManifest(fs fsutil.FileSystem, name string) (*Manifest, error) {
	data, err := fs.ReadFile(name)
	if err != nil {
		return nil, greenerr.Input("manifest", "read %s: %v", name, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	m.dir = path.Dir(toSlash(name))
	return m, nil
}

// ParseManifest decodes a manifest whose input paths are relative to the
// working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, greenerr.Input("manifest", "decode: %v", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.dir = "."
	return &m, nil
}

// Validate checks required fields and that hole ids are unique and usable
// as artifact path segments.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Course) == "" {
		return greenerr.Input("manifest", "course name is required")
	}
	if strings.ContainsAny(m.Course, `/\`) || m.Course == "." || m.Course == ".." {
		return greenerr.Input("manifest", "course name %q is not a valid path segment", m.Course)
	}
	if len(m.Holes) == 0 {
		return greenerr.Input("manifest", "course %s lists no holes", m.Course)
	}
	seen := make(map[string]bool, len(m.Holes))
	for i, h := range m.Holes {
		switch {
		case h.ID == "" || strings.ContainsAny(h.ID, `/\`) || h.ID == "." || h.ID == "..":
			return greenerr.Input("manifest", "hole %d has invalid id %q", i, h.ID)
		case seen[h.ID]:
			return greenerr.Input("manifest", "duplicate hole id %q", h.ID)
		case h.Boundary == "" || h.Contours == "":
			return greenerr.Input("manifest", "hole %s needs boundary and contours files", h.ID)
		}
		seen[h.ID] = true
	}
	return nil
}

// Hole returns the manifest entry for id.
func (m *Manifest) Hole(id string) (HoleSpec, bool) {
	for _, h := range m.Holes {
		if h.ID == id {
			return h, true
		}
	}
	return HoleSpec{}, false
}

// ArtifactID returns the heightfield store key for a hole.
func (m *Manifest) ArtifactID(h HoleSpec) string {
	return m.Course + "/" + h.ID
}

// Resolve joins a manifest-relative input path onto the manifest directory.
func (m *Manifest) Resolve(p string) string {
	p = toSlash(p)
	if path.IsAbs(p) || m.dir == "" {
		return p
	}
	return path.Join(m.dir, p)
}

// Tuning layers course defaults and then the hole's overrides onto base.
func (m *Manifest) Tuning(base *config.TuningConfig, h HoleSpec) *config.TuningConfig {
	if base == nil {
		base = config.EmptyTuningConfig()
	}
	cp := *base
	for _, o := range []Overrides{m.Defaults, h.Overrides} {
		if o.GridResolutionFt != nil {
			cp.GridResolutionFt = o.GridResolutionFt
		}
		if o.SampleStepFt != nil {
			cp.SampleStepFt = o.SampleStepFt
		}
		if o.Smoothing != nil {
			cp.Smoothing = o.Smoothing
		}
	}
	return &cp
}

// Params returns the reconstruction parameters for h.
func (m *Manifest) Params(base *config.TuningConfig, h HoleSpec) surface.Params {
	return surface.ParamsFromTuning(m.Tuning(base, h))
}

// tracedBoundary mirrors the JSON written by the boundary tracing tool.
type tracedBoundary struct {
	Points []geom.Point `json:"points_xz_ft"`
}

// DecodeBoundary reads a traced boundary file and validates the polygon.
func DecodeBoundary(r io.Reader) (geom.Polygon, error) {
	var b tracedBoundary
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, greenerr.Input("boundary", "decode: %v", err)
	}
	poly := geom.Polygon(b.Points).Normalize()
	if err := poly.Validate(); err != nil {
		return nil, err
	}
	return poly, nil
}

func toSlash(p string) string { return strings.ReplaceAll(p, `\`, "/") }
