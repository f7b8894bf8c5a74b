package extract

import (
	"context"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"devwise/pkg/errors"
)

// Compile-time check
var _ TextExtractor = (*ExcelExtractor)(nil)

// ExcelExtractor reads cell content from xlsx workbooks
type ExcelExtractor struct{}

// NewExcelExtractor creates an Excel text extractor
func NewExcelExtractor() *ExcelExtractor {
	return &ExcelExtractor{}
}

// Text returns all sheets rendered as tab-separated rows
func (e *ExcelExtractor) Text(_ context.Context, src io.Reader) (string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return "", errors.Wrap(err, "failed to open workbook")
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read sheet %s", sheet)
		}
		sb.WriteString(sheet)
		sb.WriteString("\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "workbook contains no data")
	}

	return sb.String(), nil
}
