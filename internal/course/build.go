package course

import (
	"fmt"
	"time"

	"github.com/banshee-data/greenreader/internal/config"
	"github.com/banshee-data/greenreader/internal/contour"
	"github.com/banshee-data/greenreader/internal/fsutil"
	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"github.com/banshee-data/greenreader/internal/heightfield"
	"github.com/banshee-data/greenreader/internal/monitoring"
	"github.com/banshee-data/greenreader/internal/surface"
	"github.com/banshee-data/greenreader/internal/timeutil"
)

// Builder turns manifest holes into stored heightfields.
type Builder struct {
	FS       fsutil.FileSystem
	Store    *heightfield.Store
	Manifest *Manifest
	Tuning   *config.TuningConfig
	Clock    timeutil.Clock // nil means timeutil.RealClock
}

func (b *Builder) clock() timeutil.Clock {
	if b.Clock == nil {
		return timeutil.RealClock{}
	}
	return b.Clock
}

// BuildResult reports one hole's build.
type BuildResult struct {
	ID          string
	ArtifactID  string
	Samples     int
	Heightfield *heightfield.Heightfield
	Duration    time.Duration
	Err         error
}

// MissingInputs lists the input files of h that do not exist.
func (b *Builder) MissingInputs(h HoleSpec) []string {
	var missing []string
	for _, in := range []struct{ label, path string }{
		{"boundary", h.Boundary},
		{"contours", h.Contours},
	} {
		p := b.Manifest.Resolve(in.path)
		if !b.FS.Exists(p) {
			missing = append(missing, fmt.Sprintf("%s (%s)", in.label, p))
		}
	}
	return missing
}

// BuildHole loads, densifies, reconstructs and stores one hole.
func (b *Builder) BuildHole(h HoleSpec) (*BuildResult, error) {
	clock := b.clock()
	start := clock.Now()
	res := &BuildResult{ID: h.ID, ArtifactID: b.Manifest.ArtifactID(h)}
	if missing := b.MissingInputs(h); len(missing) > 0 {
		return nil, greenerr.Input("build "+h.ID, "missing inputs: %v", missing)
	}

	boundary, err := b.loadBoundary(h)
	if err != nil {
		return nil, err
	}
	set, err := b.loadContours(h)
	if err != nil {
		return nil, err
	}

	tuning := b.Manifest.Tuning(b.Tuning, h)
	points := set.Sample(tuning.GetSampleStepFt())
	res.Samples = len(points)
	monitoring.Logf("course: %s %s -> %d samples", res.ArtifactID, set, len(points))

	hf, err := surface.Reconstruct(boundary, points, surface.ParamsFromTuning(tuning))
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", res.ArtifactID, err)
	}
	if h.Hole != nil {
		hf = hf.WithHole(*h.Hole)
	}
	if err := b.Store.Save(res.ArtifactID, hf); err != nil {
		return nil, err
	}
	res.Heightfield = hf
	res.Duration = clock.Since(start)
	return res, nil
}

// BuildAll builds the named holes, or every hole when ids is empty. A
// failing hole does not stop the others; its error is in its result.
func (b *Builder) BuildAll(ids ...string) ([]BuildResult, error) {
	holes := b.Manifest.Holes
	if len(ids) > 0 {
		holes = holes[:0:0]
		for _, id := range ids {
			h, ok := b.Manifest.Hole(id)
			if !ok {
				return nil, greenerr.Input("build", "course %s has no hole %q", b.Manifest.Course, id)
			}
			holes = append(holes, h)
		}
	}
	out := make([]BuildResult, 0, len(holes))
	for _, h := range holes {
		r, err := b.BuildHole(h)
		if err != nil {
			monitoring.Logf("course: build %s/%s failed: %v", b.Manifest.Course, h.ID, err)
			out = append(out, BuildResult{ID: h.ID, ArtifactID: b.Manifest.ArtifactID(h), Err: err})
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (b *Builder) loadBoundary(h HoleSpec) (geom.Polygon, error) {
	f, err := b.FS.Open(b.Manifest.Resolve(h.Boundary))
	if err != nil {
		return nil, greenerr.Input("build "+h.ID, "open boundary: %v", err)
	}
	defer f.Close()
	return DecodeBoundary(f)
}

func (b *Builder) loadContours(h HoleSpec) (*contour.Set, error) {
	f, err := b.FS.Open(b.Manifest.Resolve(h.Contours))
	if err != nil {
		return nil, greenerr.Input("build "+h.ID, "open contours: %v", err)
	}
	defer f.Close()
	return contour.Decode(f)
}
