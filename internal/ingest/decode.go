// Package ingest converts the municipal CSV exports (enforcement records and
// the parking facility registry) into the reference datasets read at
// startup.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Encoding names reported by Decode.
const (
	EncodingUTF8  = "utf-8"
	EncodingEUCKR = "euc-kr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns the UTF-8 text of a CSV export. Input that is valid UTF-8
// (after an optional BOM) is used as-is; anything else is decoded as EUC-KR,
// which also covers the CP949 files the registry publishes.
func Decode(r io.Reader) ([]byte, string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read csv: %w", err)
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, EncodingUTF8, nil
	}

	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
	if err != nil {
		return nil, "", fmt.Errorf("decode euc-kr: %w", err)
	}
	return bytes.TrimPrefix(decoded, utf8BOM), EncodingEUCKR, nil
}

// table is a header-indexed view over CSV rows.
type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(data []byte) (*table, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: missing header row")
	}

	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[strings.TrimSpace(name)] = i
	}
	return &table{index: idx, rows: records[1:]}, nil
}

func (t *table) has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// get returns the trimmed cell, or "" when the column is missing or the row
// is short.
func (t *table) get(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
