package heightfield

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
)

// noDataBits is the canonical quiet NaN written for masked cells, so two
// encodings of the same grid are byte-identical.
const noDataBits uint32 = 0x7fc00000

type unitsDoc struct {
	X string `json:"x"`
	Z string `json:"z"`
	Y string `json:"y"`
}

type gridDoc struct {
	NX           int     `json:"nx"`
	NZ           int     `json:"nz"`
	ResolutionFt float64 `json:"resolution_ft"`
	XMinFt       float64 `json:"x_min_ft"`
	ZMinFt       float64 `json:"z_min_ft"`
}

type metaDoc struct {
	Units  unitsDoc    `json:"units"`
	Grid   gridDoc     `json:"grid"`
	NoData string      `json:"nodata"`
	Order  string      `json:"order"`
	Hole   *geom.Point `json:"hole_xz_ft,omitempty"`
}

// EncodeMeta renders the metadata record of the artifact pair.
func EncodeMeta(h *Heightfield) ([]byte, error) {
	doc := metaDoc{
		Units: unitsDoc{X: "ft", Z: "ft", Y: "ft"},
		Grid: gridDoc{
			NX:           h.meta.NX,
			NZ:           h.meta.NZ,
			ResolutionFt: h.meta.ResolutionFt,
			XMinFt:       h.meta.XMinFt,
			ZMinFt:       h.meta.ZMinFt,
		},
		NoData: "NaN",
		Order:  "z-major float32le",
		Hole:   h.meta.Hole,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// EncodeGrid renders the raw little-endian float32 grid.
func EncodeGrid(h *Heightfield) []byte {
	out := make([]byte, 4*len(h.elev))
	for i, v := range h.elev {
		bits := math.Float32bits(v)
		if !h.valid[i] {
			bits = noDataBits
		}
		binary.LittleEndian.PutUint32(out[4*i:], bits)
	}
	return out
}

// DecodeMeta parses a metadata record.
func DecodeMeta(data []byte) (Meta, error) {
	var doc metaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Meta{}, greenerr.Resource("decode meta", "%v", err)
	}
	m := Meta{
		NX:           doc.Grid.NX,
		NZ:           doc.Grid.NZ,
		ResolutionFt: doc.Grid.ResolutionFt,
		XMinFt:       doc.Grid.XMinFt,
		ZMinFt:       doc.Grid.ZMinFt,
		Hole:         doc.Hole,
	}
	if err := m.Validate(); err != nil {
		return Meta{}, greenerr.Resource("decode meta", "%v", err)
	}
	return m, nil
}

// DecodeGrid pairs raw grid bytes with their metadata. NaN values become
// invalid cells; infinities are rejected as corrupt.
func DecodeGrid(meta Meta, raw []byte) (*Heightfield, error) {
	if err := meta.Validate(); err != nil {
		return nil, greenerr.Resource("decode grid", "%v", err)
	}
	n := meta.Cells()
	if len(raw) != 4*n {
		return nil, greenerr.Resource("decode grid", "expected %d bytes for %dx%d grid, got %d", 4*n, meta.NX, meta.NZ, len(raw))
	}
	elev := make([]float32, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		f := float64(v)
		switch {
		case math.IsNaN(f):
		case math.IsInf(f, 0):
			return nil, greenerr.Resource("decode grid", "cell %d holds %v", i, v)
		default:
			elev[i] = v
			valid[i] = true
		}
	}
	h, err := New(meta, elev, valid)
	if err != nil {
		return nil, greenerr.Resource("decode grid", "%v", err)
	}
	return h, nil
}
