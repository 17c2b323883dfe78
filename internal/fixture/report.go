// Package fixture writes synthetic arrest summary PDFs laid out like the
// agency report, for use in tests.
package fixture

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/ppiankov/arrests/internal/model"
)

// Row is one printed table row. Each column holds the text lines printed in
// that cell, top to bottom; an empty column prints nothing.
type Row [model.FieldCount][]string

// RowFromRecord prints each field of r on a single line
func RowFromRecord(r model.ArrestRecord) Row {
	var row Row
	for i, f := range r.Fields() {
		row[i] = []string{f}
	}
	return row
}

// HeaderRow is the column header printed above the data rows
func HeaderRow() Row {
	return RowFromRecord(model.ArrestRecord{
		Datetime:         "Arrest Date / Time",
		CaseNumber:       "Case Number",
		ArrestsLocation:  "Arrest Location",
		Offense:          "Offense",
		Arrestee:         "Arrestee Name",
		ArresteeBirthday: "Arrestee Birthday",
		ArresteeAddress:  "Arrestee Address",
		City:             "City",
		State:            "State",
		ZipCode:          "Zip Code",
		Status:           "Status",
		Officers:         "Officer",
	})
}

const (
	marginMM    = 8.0
	columnMM    = 21.5
	rowMM       = 11.0
	lineMM      = 2.6
	fontSizePts = 5.0
)

// Write renders rows as a single landscape page. Cells are emitted row by row,
// left to right, one text object per printed line.
func Write(w io.Writer, rows []Row) error {
	doc := gofpdf.New("L", "mm", "Letter", "")
	doc.SetCompression(false)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	doc.SetFont("Helvetica", "", fontSizePts)

	for r, row := range rows {
		y := marginMM + float64(r)*rowMM + lineMM
		for c, lines := range row {
			x := marginMM + float64(c)*columnMM
			for l, line := range lines {
				doc.Text(x, y+float64(l)*lineMM, line)
			}
		}
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Bytes renders rows and returns the PDF bytes
func Bytes(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders rows into a PDF file at path
func WriteFile(path string, rows []Row) error {
	data, err := Bytes(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
