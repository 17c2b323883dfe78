// Package report renders the smoke-check line printed after a load.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/arrests/internal/model"
)

// Delimiter separates fields in the status line. It is chosen because it
// does not occur in the report text.
const Delimiter = "þ"

// FirstRecordReader reads the first stored arrest row
type FirstRecordReader interface {
	First(ctx context.Context) (model.ArrestRecord, error)
}

// Format joins the record fields with Delimiter
func Format(rec model.ArrestRecord) string {
	return strings.Join(rec.Fields(), Delimiter)
}

// Status reads the first stored row, writes it to w as one delimited line and
// returns the line without its newline
func Status(ctx context.Context, src FirstRecordReader, w io.Writer) (string, error) {
	rec, err := src.First(ctx)
	if err != nil {
		return "", fmt.Errorf("read first record: %w", err)
	}

	line := Format(rec)
	if _, err := fmt.Fprintln(w, line); err != nil {
		return "", fmt.Errorf("write status: %w", err)
	}
	return line, nil
}
