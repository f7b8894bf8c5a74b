package extract

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"devwise/pkg/errors"
)

// Compile-time check
var _ TextExtractor = (*PDFExtractor)(nil)

// PDFExtractor reads text from PDF documents
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF text extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Text returns the concatenated text of all pages. The document is
// buffered in full; uploads are size-capped well below memory limits.
func (e *PDFExtractor) Text(_ context.Context, src io.Reader) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", errors.Wrap(err, "failed to read PDF")
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "failed to open PDF")
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read PDF page %d", i)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "PDF contains no extractable text")
	}

	return sb.String(), nil
}
