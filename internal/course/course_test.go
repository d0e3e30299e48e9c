package course

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/greenreader/internal/config"
	"github.com/banshee-data/greenreader/internal/fsutil"
	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"github.com/banshee-data/greenreader/internal/heightfield"
	"github.com/banshee-data/greenreader/internal/monitoring"
	"github.com/banshee-data/greenreader/internal/timeutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	monitoring.SetLogger(nil)
}

const manifestYAML = `
course: links
defaults:
  smoothing: 0.2
holes:
  - id: "1"
    boundary: h1/boundary.json
    contours: h1/contours.json
    hole_xz_ft: {x: 2, z: -1}
    grid_resolution_ft: 1.0
  - id: "2"
    boundary: h2/boundary.json
    contours: h2/contours.json
    smoothing: 0.05
`

// tiltedContours traces the plane y = 0.1·x as vertical contour lines
// every 2.5 ft.
func tiltedContours() string {
	var parts []string
	for k := -4; k <= 4; k++ {
		x := float64(k) * 2.5
		parts = append(parts, fmt.Sprintf(`{"k": %d, "points_xz_ft": [{"x": %g, "z": -12}, {"x": %g, "z": 12}]}`, k, x, x))
	}
	return `{"contour_interval_ft": 0.25, "contours": [` + strings.Join(parts, ",") + `]}`
}

const squareBoundary = `{"points_xz_ft": [{"x": -11, "z": -11}, {"x": 11, "z": -11}, {"x": 11, "z": 11}, {"x": -11, "z": 11}, {"x": -11, "z": -11}]}`

func seedCourse(t *testing.T) *fsutil.MemoryFileSystem {
	t.Helper()
	mem := fsutil.NewMemoryFileSystem()
	require.NoError(t, mem.WriteFile("courses/links/course.yaml", []byte(manifestYAML), 0o644))
	require.NoError(t, mem.WriteFile("courses/links/h1/boundary.json", []byte(squareBoundary), 0o644))
	require.NoError(t, mem.WriteFile("courses/links/h1/contours.json", []byte(tiltedContours()), 0o644))
	return mem
}

func TestLoadManifest(t *testing.T) {
	t.Parallel()
	mem := seedCourse(t)

	m, err := LoadManifest(mem, "courses/links/course.yaml")
	require.NoError(t, err)
	assert.Equal(t, "links", m.Course)
	require.Len(t, m.Holes, 2)

	h1, ok := m.Hole("1")
	require.True(t, ok)
	assert.Equal(t, &geom.Point{X: 2, Z: -1}, h1.Hole)
	assert.Equal(t, "links/1", m.ArtifactID(h1))
	assert.Equal(t, "courses/links/h1/boundary.json", m.Resolve(h1.Boundary))
	assert.Equal(t, "/abs/b.json", m.Resolve("/abs/b.json"))

	_, ok = m.Hole("9")
	assert.False(t, ok)

	_, err = LoadManifest(mem, "courses/missing.yaml")
	assert.ErrorIs(t, err, greenerr.ErrInput)
}

func TestManifest_TuningLayers(t *testing.T) {
	t.Parallel()
	m, err := ParseManifest([]byte(manifestYAML))
	require.NoError(t, err)
	base := config.EmptyTuningConfig()

	h1, _ := m.Hole("1")
	p1 := m.Params(base, h1)
	assert.Equal(t, 1.0, p1.ResolutionFt)
	assert.Equal(t, 0.2, p1.Smoothing, "course default applies")

	h2, _ := m.Hole("2")
	p2 := m.Params(base, h2)
	assert.Equal(t, 0.5, p2.ResolutionFt)
	assert.Equal(t, 0.05, p2.Smoothing, "hole override wins")

	assert.Equal(t, 0.1, base.GetSmoothing(), "base is not mutated")
	assert.Equal(t, 1.0, m.Tuning(nil, h1).GetSampleStepFt())
}

func TestParseManifest_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"no course", "holes:\n  - {id: a, boundary: b, contours: c}\n"},
		{"no holes", "course: x\n"},
		{"unknown key", "course: x\nholes:\n  - {id: a, boundary: b, contours: c, colour: red}\n"},
		{"duplicate id", "course: x\nholes:\n  - {id: a, boundary: b, contours: c}\n  - {id: a, boundary: b, contours: c}\n"},
		{"slash in id", "course: x\nholes:\n  - {id: a/b, boundary: b, contours: c}\n"},
		{"dotdot course", "course: ..\nholes:\n  - {id: a, boundary: b, contours: c}\n"},
		{"no contours", "course: x\nholes:\n  - {id: a, boundary: b}\n"},
		{"not yaml", "course: [x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.yaml))
			assert.ErrorIs(t, err, greenerr.ErrInput)
		})
	}
}

func TestDecodeBoundary(t *testing.T) {
	t.Parallel()
	poly, err := DecodeBoundary(strings.NewReader(squareBoundary))
	require.NoError(t, err)
	want := geom.Polygon{{X: -11, Z: -11}, {X: 11, Z: -11}, {X: 11, Z: 11}, {X: -11, Z: 11}}
	if diff := cmp.Diff(want, poly); diff != "" {
		t.Errorf("boundary mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{
		`{"points_xz_ft": [{"x": 0, "z": 0}, {"x": 4, "z": 4}, {"x": 4, "z": 0}, {"x": 0, "z": 4}]}`,
		`{"points_xz_ft": [{"x": 0, "z": 0}, {"x": 1, "z": 1}]}`,
		`{"points_xz_ft": 7}`,
	} {
		_, err := DecodeBoundary(strings.NewReader(bad))
		assert.ErrorIs(t, err, greenerr.ErrInput, bad)
	}
}

func TestBuilder_BuildHole(t *testing.T) {
	t.Parallel()
	mem := seedCourse(t)
	m, err := LoadManifest(mem, "courses/links/course.yaml")
	require.NoError(t, err)
	store := heightfield.NewStore(mem, "artifacts")
	b := &Builder{
		FS:       mem,
		Store:    store,
		Manifest: m,
		Tuning:   config.EmptyTuningConfig(),
		Clock:    timeutil.NewSteppingClock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), 40*time.Millisecond),
	}

	h1, _ := m.Hole("1")
	assert.Empty(t, b.MissingInputs(h1))
	res, err := b.BuildHole(h1)
	require.NoError(t, err)
	assert.Equal(t, "links/1", res.ArtifactID)
	assert.Equal(t, 40*time.Millisecond, res.Duration)
	assert.Equal(t, 9*25, res.Samples)

	hf := res.Heightfield
	assert.Equal(t, 23, hf.NX())
	hole, ok := hf.Hole()
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 2, Z: -1}, hole)

	// The tilted plane rises 0.1 ft per ft of x.
	lo, okLo := hf.At(5, 11)
	hi, okHi := hf.At(15, 11)
	require.True(t, okLo && okHi)
	assert.InDelta(t, 1.0, float64(hi-lo), 0.02)

	loaded, err := store.Load("links/1")
	require.NoError(t, err)
	assert.Equal(t, heightfield.EncodeGrid(hf), heightfield.EncodeGrid(loaded))

	metaJSON, err := mem.ReadFile("artifacts/links/1/heightfield.json")
	require.NoError(t, err)
	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(metaJSON, &meta))
	assert.Contains(t, meta, "hole_xz_ft")
}

func TestBuilder_BuildAll(t *testing.T) {
	t.Parallel()
	mem := seedCourse(t)
	m, err := LoadManifest(mem, "courses/links/course.yaml")
	require.NoError(t, err)
	b := &Builder{FS: mem, Store: heightfield.NewStore(mem, "artifacts"), Manifest: m}

	results, err := b.BuildAll()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, greenerr.ErrInput, "hole 2 has no input files")
	assert.True(t, mem.Exists("artifacts/links/1/heightfield.bin"))
	assert.False(t, mem.Exists("artifacts/links/2/heightfield.bin"))

	h2, _ := m.Hole("2")
	assert.Len(t, b.MissingInputs(h2), 2)

	only, err := b.BuildAll("1")
	require.NoError(t, err)
	assert.Len(t, only, 1)

	_, err = b.BuildAll("18")
	assert.ErrorIs(t, err, greenerr.ErrInput)
}
