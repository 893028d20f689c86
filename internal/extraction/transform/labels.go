package transform

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ActivityLabels maps classification keys ("scheme:code") to labels.
type ActivityLabels map[string]string

var labelColumns = []string{"scheme", "code", "label"}

// LoadActivityLabels reads a CSV table with a scheme,code,label header, for
// example an export of the INSEE NAF nomenclature. Schemes are normalized
// the same way classification keys are, so "NAFRev2" and "naf_rev2" match.
// The first row for a key wins.
func LoadActivityLabels(r io.Reader) (ActivityLabels, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("activity labels: missing header")
		}
		return nil, fmt.Errorf("activity labels: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range labelColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("activity labels: missing column %q", col)
		}
	}

	labels := ActivityLabels{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return labels, nil
		}
		if err != nil {
			return nil, fmt.Errorf("activity labels line %d: %w", line, err)
		}
		scheme, code, label := cell(row, idx["scheme"]), cell(row, idx["code"]), cell(row, idx["label"])
		if scheme == "" || code == "" || label == "" {
			continue
		}
		key := ClassificationKey(scheme, code)
		if _, ok := labels[key]; !ok {
			labels[key] = label
		}
	}
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Labeler exposes the table as an ActivityLabeler.
func (l ActivityLabels) Labeler() ActivityLabeler {
	return func(scheme, code string) (string, bool) {
		label, ok := l[ClassificationKey(scheme, code)]
		return label, ok
	}
}
