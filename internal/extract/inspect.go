package extract

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// Inspection only reads; keep pdfcpu from creating a config dir in $HOME
	api.DisableConfigDir()
}

// PageCount reports how many pages the document declares. Validation is
// relaxed since agency exports are rarely strictly conforming.
func PageCount(r io.ReaderAt, size int64) (int, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	n, err := api.PageCount(io.NewSectionReader(r, 0, size), conf)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}
