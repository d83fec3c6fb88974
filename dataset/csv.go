// Package dataset reads already-fetched price and signal data from disk.
// Files may be plain CSV, xz-compressed (.csv.xz), or a zip archive
// containing a single CSV.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"

	"github.com/quantlab/folio/market"
)

// LoadBars reads a price CSV with rows
//
//	time,symbol,open,high,low,close
//
// or the close-only form
//
//	time,symbol,close
//
// Timestamps are RFC3339. A header row is detected by its leading "time"
// cell. Returns one Series per symbol, bars sorted by time.
func LoadBars(path string) ([]market.Series, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string][]market.Bar)
	for i, row := range rows {
		ts, sym, err := parseKey(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}

		var bar market.Bar
		switch len(row) {
		case 3:
			c, err := parseFloat(row[2])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: close: %w", path, i+1, err)
			}
			bar = market.Bar{Time: ts, Open: c, High: c, Low: c, Close: c}
		case 6:
			var vals [4]float64
			for k := 0; k < 4; k++ {
				v, err := parseFloat(row[2+k])
				if err != nil {
					return nil, fmt.Errorf("%s row %d col %d: %w", path, i+1, 3+k, err)
				}
				vals[k] = v
			}
			bar = market.Bar{Time: ts, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}
		default:
			return nil, fmt.Errorf("%s row %d: want 3 or 6 columns, got %d", path, i+1, len(row))
		}
		bySymbol[sym] = append(bySymbol[sym], bar)
	}

	symbols := make([]string, 0, len(bySymbol))
	for sym := range bySymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	out := make([]market.Series, 0, len(symbols))
	for _, sym := range symbols {
		s := market.Series{Symbol: sym, Bars: bySymbol[sym]}
		s.Sort()
		out = append(out, s)
	}
	return out, nil
}

// LoadSignals reads a signal CSV with rows
//
//	time,symbol,value
//
// and returns per-symbol signal points sorted by time.
func LoadSignals(path string) (map[string][]market.SignalPoint, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]market.SignalPoint)
	for i, row := range rows {
		if len(row) != 3 {
			return nil, fmt.Errorf("%s row %d: want 3 columns, got %d", path, i+1, len(row))
		}
		ts, sym, err := parseKey(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		v, err := parseFloat(row[2])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: value: %w", path, i+1, err)
		}
		out[sym] = append(out[sym], market.SignalPoint{Time: ts, Value: v})
	}

	for sym := range out {
		pts := out[sym]
		sort.Slice(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
	}
	return out, nil
}

// readRows opens the file (decompressing as needed) and returns all data
// rows, header stripped.
func readRows(path string) ([][]string, error) {
	rc, err := open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(row) == 0 {
			continue
		}
		if len(rows) == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue // header
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}
	return rows, nil
}

// open returns a reader over the file's uncompressed content.
func open(path string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz %s: %w", path, err)
		}
		return readCloser{Reader: xr, closer: f}, nil

	case ".zip":
		return openZip(path)

	default:
		return os.Open(path)
	}
}

// openZip extracts the archive to a temp dir and opens the single CSV it
// contains.
func openZip(path string) (io.ReadCloser, error) {
	dir, err := os.MkdirTemp("", "folio-dataset-")
	if err != nil {
		return nil, err
	}
	if err := unzip.Extract(path, dir); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("unzip %s: %w", path, err)
	}

	var csvPath string
	err = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".csv") {
			if csvPath != "" {
				return fmt.Errorf("zip %s: more than one CSV inside", path)
			}
			csvPath = p
		}
		return nil
	})
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	if csvPath == "" {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("zip %s: no CSV inside", path)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return readCloser{Reader: f, closer: cleanupCloser{f: f, dir: dir}}, nil
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

func (rc readCloser) Close() error { return rc.closer.Close() }

type cleanupCloser struct {
	f   *os.File
	dir string
}

func (c cleanupCloser) Close() error {
	err := c.f.Close()
	os.RemoveAll(c.dir)
	return err
}

func parseKey(row []string) (time.Time, string, error) {
	raw := strings.TrimSpace(row[0])
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		ts, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, "", fmt.Errorf("bad time %q", row[0])
		}
	}
	sym := strings.TrimSpace(row[1])
	if sym == "" {
		return time.Time{}, "", fmt.Errorf("empty symbol")
	}
	return ts.UTC(), sym, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
