package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// rawEncoding passes string bytes through unchanged for fonts the page does
// not declare
type rawEncoding struct{}

func (rawEncoding) Decode(raw string) string { return raw }

// renderPageLines renders the page content stream as plain text. Every
// text-showing operator ends a line, so each table cell the report prints
// becomes one line of output.
func renderPageLines(p pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("render page: %v", r)
		}
	}()

	fonts := make(map[string]pdf.TextEncoding)
	for _, name := range p.Fonts() {
		fonts[name] = p.Font(name).Encoder()
	}

	var enc pdf.TextEncoding = rawEncoding{}
	var buf strings.Builder
	show := func(s string) {
		buf.WriteString(enc.Decode(s))
	}

	pdf.Interpret(p.V.Key("Contents"), func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "Tf":
			if n != 2 {
				return
			}
			if fontEnc, ok := fonts[args[0].Name()]; ok && fontEnc != nil {
				enc = fontEnc
			} else {
				enc = rawEncoding{}
			}
		case "T*":
			buf.WriteString("\n")
		case "Tj":
			if n != 1 {
				return
			}
			show(args[0].RawString())
			buf.WriteString("\n")
		case "'", "\"":
			// move to the next line, then show the last operand
			if n == 0 {
				return
			}
			buf.WriteString("\n")
			show(args[n-1].RawString())
		case "TJ":
			if n != 1 {
				return
			}
			v := args[0]
			for i := 0; i < v.Len(); i++ {
				if x := v.Index(i); x.Kind() == pdf.String {
					show(x.RawString())
				}
			}
			buf.WriteString("\n")
		}
	})

	return buf.String(), nil
}
