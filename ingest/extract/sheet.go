package extract

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"
)

// XLSX extracts cell values, one row per line and a blank line between sheets.
var XLSX = ExtractorFunc(func(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()
	var out bytes.Buffer
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %v: %w", sheet, err)
		}
		writeRows(&out, rows)
	}
	return out.Bytes(), nil
})

// XLS extracts cell values of legacy workbooks the same way as XLSX.
var XLS = ExtractorFunc(func(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid xls: %w", err)
	}
	var out bytes.Buffer
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		var rows [][]string
		for _, row := range sheet.GetRows() {
			rows = append(rows, xlsRowValues(row.GetCols()))
		}
		writeRows(&out, rows)
	}
	return out.Bytes(), nil
})

func writeRows(out *bytes.Buffer, rows [][]string) {
	written := false
	for _, row := range rows {
		line := strings.TrimSpace(strings.Join(row, "\t"))
		if line == "" {
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
		written = true
	}
	if written {
		out.WriteByte('\n')
	}
}

func xlsRowValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}
