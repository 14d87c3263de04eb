package serialize

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"

	"github.com/vkolb/gocomb/lib/attribute"
	"github.com/vkolb/gocomb/lib/cmap"
	"github.com/vkolb/gocomb/lib/geom"
	"github.com/vkolb/gocomb/stm"
)

// FormatVersion is written into every [META] section and checked on
// load; it identifies this package's own encoding, not the map's
// topological dimension.
const FormatVersion = 1

// Dump writes m in the textual dump format of §6.2 to w: [META],
// [BETAS], an optional [UNUSED], and [VERTICES].
func Dump(m *cmap.Map, w io.Writer) error {
	bw := bufio.NewWriter(w)

	nDarts := m.NDarts() - 1 // NDarts counts the reserved null dart
	fmt.Fprintf(bw, "[META]\n%d %d %d\n\n", FormatVersion, m.Dim(), nDarts)

	fmt.Fprintf(bw, "[BETAS]\n")
	for i := uint8(0); i <= m.Dim(); i++ {
		row := make([]string, nDarts+1)
		row[0] = "0"
		for d := 1; d <= nDarts; d++ {
			row[d] = strconv.Itoa(int(m.Beta(i, cmap.DartID(d))))
		}
		fmt.Fprintln(bw, strings.Join(row, " "))
	}
	fmt.Fprintln(bw)

	if unused := m.UnusedDarts(); len(unused) > 0 {
		fmt.Fprintf(bw, "[UNUSED]\n")
		ids := make([]string, len(unused))
		for i, d := range unused {
			ids[i] = strconv.Itoa(int(d))
		}
		fmt.Fprintln(bw, strings.Join(ids, " "))
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "[VERTICES]\n")
	if attribute.IsRegistered[geom.Vertex](m.Attrs) {
		cellIDs := make(map[cmap.CellID]bool)
		for d := 1; d <= nDarts; d++ {
			cellIDs[m.CellID(0, cmap.DartID(d))] = true
		}
		sorted := make([]cmap.CellID, 0, len(cellIDs))
		for id := range cellIDs {
			sorted = append(sorted, id)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		for _, id := range sorted {
			v, err := stm.AtomicallyR(func(tx *stm.Transaction) (geom.Vertex, error) {
				val, _ := cmap.ReadAttribute[geom.Vertex](m, tx, attribute.Key(id))
				return val, nil
			})
			if err != nil {
				return err
			}
			if m.Dim() >= 3 {
				fmt.Fprintf(bw, "%d %g %g %g\n", id, v.X, v.Y, v.Z)
			} else {
				fmt.Fprintf(bw, "%d %g %g\n", id, v.X, v.Y)
			}
		}
	}

	return bw.Flush()
}

// DumpCompressed writes m through a zstd encoder, for callers that want
// the dump persisted at rest rather than piped straight into another
// tool.
func DumpCompressed(m *cmap.Map, w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "serialize: opening zstd writer")
	}
	if err := Dump(m, enc); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// LoadCompressed is the inverse of DumpCompressed.
func LoadCompressed(r io.Reader) (*cmap.Map, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: opening zstd reader")
	}
	defer dec.Close()
	return Load(dec)
}

// Load parses the textual dump format, validating every structural
// constraint §6.2 lists before returning a map. Violations found within
// one decoding step are aggregated with multierr; Load returns after
// the first step that reports any.
func Load(r io.Reader) (*cmap.Map, error) {
	sections, err := splitSections(r)
	if err != nil {
		return nil, err
	}

	version, dim, nDarts, err := parseMeta(sections["META"])
	if err != nil {
		return nil, err
	}
	if version != FormatVersion {
		return nil, errors.Wrapf(ErrMalformed, "unsupported format version %d", version)
	}

	betas, err := parseBetas(sections["BETAS"], dim, nDarts)
	if err != nil {
		return nil, err
	}

	unused, err := parseUnused(sections["UNUSED"])
	if err != nil {
		return nil, err
	}

	vertices, err := parseVertices(sections["VERTICES"], dim)
	if err != nil {
		return nil, err
	}

	if err := validateBetaInvariants(betas, dim, nDarts, unused); err != nil {
		return nil, err
	}

	m := cmap.NewMap(dim)
	m.AddDarts(nDarts)

	var vtx *attribute.SparseVec[geom.Vertex]
	if len(vertices) > 0 {
		vtx = attribute.Register[geom.Vertex](m.Attrs, attribute.Vertex, geom.VertexLaws{})
	}

	if err := stm.Atomically(func(tx *stm.Transaction) error {
		for i := uint8(0); i <= dim; i++ {
			for d := 1; d <= nDarts; d++ {
				if betas[i][d] != 0 {
					m.SetBetaTx(tx, i, cmap.DartID(d), cmap.DartID(betas[i][d]))
				}
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	for _, d := range unused {
		if err := m.RemoveDart(cmap.DartID(d)); err != nil {
			return nil, errors.Wrapf(err, "freeing listed-unused dart %d", d)
		}
	}

	if vtx != nil {
		_ = stm.Atomically(func(tx *stm.Transaction) error {
			for key, c := range vertices {
				x, y, z := vertexCoordsToGeom(c)
				vtx.Write(tx, attribute.Key(key), geom.Vertex{X: x, Y: y, Z: z})
			}
			return nil
		})
	}

	return m, nil
}
