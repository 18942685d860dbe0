// Package importer reads composition tables uploaded by the lab: Excel
// workbooks straight from the chromatograph export, or CSV text.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ansel1/merry"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = merry.New("unsupported file format").WithHTTPCode(http.StatusUnsupportedMediaType)
	ErrUnreadable        = merry.New("cannot read uploaded table").WithHTTPCode(http.StatusBadRequest)
)

// ReadTable returns the raw cells of the first sheet of an .xlsx workbook
// or of a .csv/.txt file. The format is picked by the file extension.
func ReadTable(name string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(r)
	case ".csv", ".txt":
		return readCSV(r)
	default:
		return nil, merry.Here(ErrUnsupportedFormat).Appendf("%q, expected .xlsx or .csv", name)
	}
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, merry.Here(ErrUnreadable).Append(err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, merry.Here(ErrUnreadable).Append("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, merry.Here(ErrUnreadable).Appendf("sheet %q: %v", sheets[0], err)
	}
	return rows, nil
}

// utf8BOM prefixes "CSV UTF-8" exports from Excel.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if bom, _ := br.Peek(len(utf8BOM)); bytes.Equal(bom, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	head, _ := br.Peek(4096)

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, merry.Here(ErrUnreadable).Append(err.Error())
	}
	return rows, nil
}

// sniffDelimiter picks ';' when the first line has more semicolons than
// commas. Spanish locale exports use ';' with a decimal comma.
func sniffDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte(";")) > bytes.Count(head, []byte(",")) {
		return ';'
	}
	return ','
}
