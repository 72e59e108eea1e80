package ncei

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/storm-history-api/internal/domain"
	"github.com/couchcryptid/storm-history-api/internal/observability"
)

// Scanner streams rows out of a gzip-compressed CSV file without
// materializing the decompressed content. It is a pure transport layer; no
// filtering happens here.
type Scanner struct {
	metrics *observability.Metrics
}

// NewScanner creates a Scanner.
func NewScanner(metrics *observability.Metrics) *Scanner {
	return &Scanner{metrics: metrics}
}

// Scan decompresses and parses the file at path, invoking fn once per data
// row. The first row is treated as the header and keys every RawRow. Parsing
// is lenient: quoting is relaxed and rows may have more or fewer fields than
// the header, because real NCEI exports are not strictly well-formed. An
// error from fn, the stream, or the context aborts the scan.
func (s *Scanner) Scan(ctx context.Context, path string, fn func(domain.RawRow) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	r := csv.NewReader(gz)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	// Copy: ReuseRecord means the slice is overwritten by the next Read.
	columns := make([]string, len(header))
	copy(columns, header)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		row := make(domain.RawRow, len(columns))
		for i, name := range columns {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		s.metrics.RowsScanned.Inc()

		if err := fn(row); err != nil {
			return err
		}
	}
}
