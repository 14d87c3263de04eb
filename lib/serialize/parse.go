package serialize

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/multierr"
)

// splitSections scans r line by line, stripping `#`-prefixed comments
// and blank lines, and groups the remaining lines under their nearest
// preceding `[NAME]` header.
func splitSections(r io.Reader) (map[string][]string, error) {
	sections := make(map[string][]string)
	var current string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			if _, ok := sections[current]; !ok {
				sections[current] = nil
			}
			continue
		}
		if current == "" {
			return nil, errors.Wrap(ErrMalformed, "content before any section header")
		}
		sections[current] = append(sections[current], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "serialize: reading dump")
	}
	if _, ok := sections["META"]; !ok {
		return nil, errors.Wrap(ErrMalformed, "missing [META] section")
	}
	if _, ok := sections["BETAS"]; !ok {
		return nil, errors.Wrap(ErrMalformed, "missing [BETAS] section")
	}
	return sections, nil
}

func parseMeta(lines []string) (version int, dim uint8, nDarts int, err error) {
	if len(lines) != 1 {
		return 0, 0, 0, errors.Wrapf(ErrMalformed, "[META] must have exactly one line, got %d", len(lines))
	}
	fields := strings.Fields(lines[0])
	if len(fields) != 3 {
		return 0, 0, 0, errors.Wrapf(ErrMalformed, "[META] must have 3 fields, got %d", len(fields))
	}

	var errs error
	v, e := strconv.Atoi(fields[0])
	errs = multierr.Append(errs, wrapFieldErr(e, "version"))
	d, e := strconv.Atoi(fields[1])
	errs = multierr.Append(errs, wrapFieldErr(e, "dim"))
	n, e := strconv.Atoi(fields[2])
	errs = multierr.Append(errs, wrapFieldErr(e, "n_darts"))
	if errs != nil {
		return 0, 0, 0, errs
	}
	if d < 0 || d > 255 {
		return 0, 0, 0, errors.Wrapf(ErrMalformed, "dim %d out of range", d)
	}
	if n < 0 {
		return 0, 0, 0, errors.Wrapf(ErrMalformed, "n_darts %d negative", n)
	}
	return v, uint8(d), n, nil
}

func wrapFieldErr(err error, field string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(ErrMalformed, "[META] field %q: %v", field, err)
}

func parseBetas(lines []string, dim uint8, nDarts int) ([][]int, error) {
	wantRows := int(dim) + 1
	var errs error
	if len(lines) != wantRows {
		return nil, errors.Wrapf(ErrMalformed, "[BETAS] has %d rows, want dim+1=%d", len(lines), wantRows)
	}

	betas := make([][]int, wantRows)
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != nDarts+1 {
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "[BETAS] row %d has %d columns, want n_darts+1=%d", i, len(fields), nDarts+1))
			continue
		}
		row := make([]int, nDarts+1)
		for j, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "[BETAS] row %d col %d: %v", i, j, err))
				continue
			}
			if v < 0 || v > nDarts {
				errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "[BETAS] row %d col %d: dart id %d out of range", i, j, v))
				continue
			}
			row[j] = v
		}
		if row[0] != 0 {
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "[BETAS] row %d column 0 must be 0, got %d", i, row[0]))
		}
		betas[i] = row
	}
	if errs != nil {
		return nil, errs
	}
	return betas, nil
}

func parseUnused(lines []string) ([]int, error) {
	var out []int
	var errs error
	for _, line := range lines {
		for _, f := range strings.Fields(line) {
			v, err := strconv.Atoi(f)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "[UNUSED]: %v", err))
				continue
			}
			out = append(out, v)
		}
	}
	return out, errs
}

func parseVertices(lines []string, dim uint8) (map[int][3]float64, error) {
	want := 2
	if dim >= 3 {
		want = 3
	}
	out := make(map[int][3]float64, len(lines))
	var errs error
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != want+1 {
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "[VERTICES] line %q has %d fields, want %d", line, len(fields), want+1))
			continue
		}
		key, err := strconv.Atoi(fields[0])
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "[VERTICES] cell id: %v", err))
			continue
		}
		var coords [3]float64
		for i := 0; i < want; i++ {
			c, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "[VERTICES] cell %d coord %d: %v", key, i, err))
				continue
			}
			coords[i] = c
		}
		out[key] = coords
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// validateBetaInvariants checks I1/I2 (β0/β1 inverses, βi≥2 involutive)
// and that every dart [UNUSED] lists is actually free in every
// dimension, aggregating every violation found.
func validateBetaInvariants(betas [][]int, dim uint8, nDarts int, unused []int) error {
	var errs error

	for d := 1; d <= nDarts; d++ {
		b1 := betas[1][d]
		if b1 != 0 && betas[0][b1] != d {
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "beta[0](beta[1](%d))=%d != %d", d, betas[0][b1], d))
		}
		b0 := betas[0][d]
		if b0 != 0 && betas[1][b0] != d {
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "beta[1](beta[0](%d))=%d != %d", d, betas[1][b0], d))
		}
	}
	for i := uint8(2); i <= dim; i++ {
		for d := 1; d <= nDarts; d++ {
			bi := betas[i][d]
			if bi != 0 && betas[i][bi] != d {
				errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "beta[%d] not involutive at dart %d", i, d))
			}
		}
	}

	freeSet := make(map[int]bool, len(unused))
	for _, d := range unused {
		if d < 1 || d > nDarts {
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "[UNUSED] lists out-of-range dart %d", d))
			continue
		}
		freeSet[d] = true
		for i := uint8(0); i <= dim; i++ {
			if betas[i][d] != 0 {
				errs = multierr.Append(errs, errors.Wrapf(ErrMalformed, "[UNUSED] dart %d is not free: beta[%d]=%d", d, i, betas[i][d]))
			}
		}
	}

	return errs
}

// vertexCoordsToGeom and the map[int][3]float64 intermediate
// representation let parseVertices stay independent of lib/geom, since
// dim determines whether the third coordinate is even meaningful.
func vertexCoordsToGeom(c [3]float64) (x, y, z float64) { return c[0], c[1], c[2] }
