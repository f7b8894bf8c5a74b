package extract

import (
	"context"
	"io"

	"devwise/internal/domain/proposal"
	"devwise/pkg/errors"
)

// TextExtractor pulls plain text out of an uploaded proposal document
type TextExtractor interface {
	// Text returns the text content of a stored document
	Text(ctx context.Context, r io.Reader) (string, error)
}

// ForFileType returns the extractor matching the document format
func ForFileType(ft proposal.FileType) (TextExtractor, error) {
	switch ft {
	case proposal.FileTypePDF:
		return NewPDFExtractor(), nil
	case proposal.FileTypeExcel:
		return NewExcelExtractor(), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported file type: %s", ft)
	}
}
