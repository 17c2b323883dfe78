package extract

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/ppiankov/arrests/internal/model"
	"github.com/rs/zerolog/log"
)

// wrappedField matches a hyphen or space right before a line break, which is
// how the report wraps a long value onto the next line.
var wrappedField = regexp.MustCompile(`[- ]\n`)

// An unknown address is printed as a single UNKNOWN line with no city, state
// or zip lines after it.
const (
	unknownAddress         = "UNKNOWN\n"
	unknownAddressExpanded = "UNKNOWN\n\n\n\n"
)

// ArrestExtractor extracts arrest rows from the first page of an arrest
// summary PDF
type ArrestExtractor struct {
	inspect bool
}

// NewArrestExtractor creates an extractor that also inspects the document
// structure and warns about pages it will not read
func NewArrestExtractor() *ArrestExtractor {
	return &ArrestExtractor{inspect: true}
}

// Extract reads the PDF held in r and returns its arrest rows in source order.
// A document without pages yields no rows.
func (e *ArrestExtractor) Extract(r io.ReaderAt, size int64) (records []model.ArrestRecord, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			records = nil
			err = fmt.Errorf("read pdf: %v", rec)
		}
	}()

	if e.inspect {
		pages, ierr := PageCount(r, size)
		switch {
		case ierr != nil:
			log.Debug().Err(ierr).Msg("pdf inspection failed; continuing with text extraction")
		case pages > 1:
			log.Warn().Int("pages", pages).Msg("report has more than one page; only page 1 is read")
		}
	}

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	if reader.NumPage() == 0 {
		return []model.ArrestRecord{}, nil
	}

	page := reader.Page(1)
	if page.V.IsNull() {
		return []model.ArrestRecord{}, nil
	}

	text, err := renderPageLines(page)
	if err != nil {
		return nil, err
	}

	records = ParseText(text)
	log.Debug().Int("chars", len(text)).Int("records", len(records)).Msg("extracted arrest rows")

	return records, nil
}

// Normalize rejoins wrapped values and pads UNKNOWN addresses so every row
// spans exactly FieldCount lines
func Normalize(text string) string {
	text = wrappedField.ReplaceAllString(text, " ")
	return strings.ReplaceAll(text, unknownAddress, unknownAddressExpanded)
}

// GroupLines splits lines into consecutive groups of FieldCount lines.
// Trailing lines that do not fill a group are dropped.
func GroupLines(lines []string) [][]string {
	n := len(lines) - len(lines)%model.FieldCount
	groups := make([][]string, 0, n/model.FieldCount)
	for i := 0; i < n; i += model.FieldCount {
		groups = append(groups, lines[i:i+model.FieldCount])
	}
	return groups
}

// ParseText turns rendered page text into arrest records. The first group is
// the table header and is discarded.
//
// The parse is purely positional: a page whose lines drift out of step
// produces misassembled rows rather than an error.
func ParseText(text string) []model.ArrestRecord {
	lines := strings.Split(Normalize(text), "\n")
	groups := GroupLines(lines)
	if len(groups) <= 1 {
		return []model.ArrestRecord{}
	}

	records := make([]model.ArrestRecord, 0, len(groups)-1)
	for _, group := range groups[1:] {
		// groups always hold FieldCount lines
		rec, _ := model.RecordFromFields(group)
		records = append(records, rec)
	}
	return records
}
