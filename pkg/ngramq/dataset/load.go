package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
)

// sniffBytes bounds how much of the input is inspected to guess a delimiter.
const sniffBytes = 8 << 10

// ReadCSV reads a delimited table with a header row. A zero delim is
// detected from the header line among ',', ';' and tab.
func ReadCSV(r io.Reader, delim rune) (RawTable, error) {
	br := bufio.NewReader(r)
	if delim == 0 {
		head, _ := br.Peek(sniffBytes)
		delim = sniffDelimiter(head)
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return RawTable{}, errors.Wrap(internalerr.ErrInvalidInput, "no header row")
		}
		return RawTable{}, errors.Wrap(err, "read csv header")
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows [][]any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return RawTable{}, errors.Wrapf(err, "read csv row %d", len(rows)+1)
		}
		if isBlankRecord(record) {
			continue
		}
		row := make([]any, len(headers))
		for i := range headers {
			if i < len(record) {
				row[i] = record[i]
			}
		}
		rows = append(rows, row)
	}

	log.Debug().Int("rows", len(rows)).Str("delimiter", string(delim)).Msg("csv read")
	return RawTable{Headers: headers, Rows: rows}, nil
}

func sniffDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if c := bytes.Count(line, []byte(string(d))); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ReadJSON reads a JSON array of flat objects. Headers are the union of
// object keys in sorted order.
func ReadJSON(r io.Reader) (RawTable, error) {
	var objects []map[string]any
	if err := json.NewDecoder(r).Decode(&objects); err != nil {
		return RawTable{}, errors.Wrap(err, "decode json records")
	}

	seen := map[string]struct{}{}
	var headers []string
	for _, obj := range objects {
		for k := range obj {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			headers = append(headers, k)
		}
	}
	sort.Strings(headers)

	rows := make([][]any, 0, len(objects))
	for _, obj := range objects {
		row := make([]any, len(headers))
		for i, h := range headers {
			row[i] = obj[h]
		}
		rows = append(rows, row)
	}
	return RawTable{Headers: headers, Rows: rows}, nil
}

// ParsePaste reads CSV text pasted by a user.
func ParsePaste(text string) (RawTable, error) {
	if strings.TrimSpace(text) == "" {
		return RawTable{}, errors.Wrap(internalerr.ErrInvalidInput, "pasted data is empty")
	}
	raw, err := ReadCSV(strings.NewReader(text), 0)
	if err != nil {
		return RawTable{}, errors.Wrap(err, "parse pasted data")
	}
	log.Info().Int("rows", len(raw.Rows)).Msg("loaded pasted data")
	return raw, nil
}

// LoadFile reads a .json file as JSON records and anything else as
// delimited text (.tsv forces tab).
func LoadFile(path string) (RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawTable{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var raw RawTable
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err = ReadJSON(f)
	case ".tsv":
		raw, err = ReadCSV(f, '\t')
	default:
		raw, err = ReadCSV(f, 0)
	}
	if err != nil {
		return RawTable{}, errors.Wrapf(err, "load %s", path)
	}

	log.Info().Str("path", path).Int("rows", len(raw.Rows)).Msg("loaded data file")
	return raw, nil
}

// Load reads and validates a file in one step.
func Load(path string, m Mapping) (Table, ValidationSummary, error) {
	raw, err := LoadFile(path)
	if err != nil {
		return Table{}, ValidationSummary{}, err
	}
	return Validate(raw, m)
}
