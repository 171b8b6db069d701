package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pocketpoker/internal/money"
	"pocketpoker/internal/settlement"
)

const maxInputBytes = 1 << 20

// readInput picks the JSON or CSV parser from the file extension. Stdin is sniffed.
func readInput[T any](path string, stdin io.Reader, fromJSON, fromCSV func([]byte) ([]T, error)) ([]T, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(io.LimitReader(stdin, maxInputBytes))
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	isJSON := strings.EqualFold(filepath.Ext(path), ".json")
	if path == "-" {
		trimmed := bytes.TrimSpace(raw)
		isJSON = len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{')
	}
	var out []T
	if isJSON {
		out, err = fromJSON(raw)
	} else {
		out, err = fromCSV(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(out) == 0 {
		return nil, errors.New("no rows in input")
	}
	return out, nil
}

func parsePlayersJSON(raw []byte) ([]settlement.PlayerResult, error) {
	var players []settlement.PlayerResult
	if err := json.Unmarshal(raw, &players); err != nil {
		return nil, err
	}
	return dropUnnamed(players, func(p settlement.PlayerResult) string { return p.Name }), nil
}

func parseRowsJSON(raw []byte) ([]settlement.NetRow, error) {
	var rows []settlement.NetRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return dropUnnamed(rows, func(r settlement.NetRow) string { return r.Name }), nil
}

// parsePlayersCSV expects a name,buyIns,cashOut header.
func parsePlayersCSV(raw []byte) ([]settlement.PlayerResult, error) {
	records, cols, err := readCSV(raw, "name", "buyins", "cashout")
	if err != nil {
		return nil, err
	}
	out := make([]settlement.PlayerResult, 0, len(records))
	for i, rec := range records {
		name := strings.TrimSpace(rec[cols[0]])
		if name == "" {
			continue
		}
		buyIns, err := strconv.Atoi(strings.TrimSpace(rec[cols[1]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: buyIns: %w", i+2, err)
		}
		cashOut, err := money.Parse(strings.TrimSpace(rec[cols[2]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: cashOut: %w", i+2, err)
		}
		out = append(out, settlement.PlayerResult{Name: name, BuyIns: buyIns, CashOut: cashOut})
	}
	return out, nil
}

// parseRowsCSV expects a name,net header.
func parseRowsCSV(raw []byte) ([]settlement.NetRow, error) {
	records, cols, err := readCSV(raw, "name", "net")
	if err != nil {
		return nil, err
	}
	out := make([]settlement.NetRow, 0, len(records))
	for i, rec := range records {
		name := strings.TrimSpace(rec[cols[0]])
		if name == "" {
			continue
		}
		net, err := money.Parse(strings.TrimSpace(rec[cols[1]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: net: %w", i+2, err)
		}
		out = append(out, settlement.NetRow{Name: name, Net: net})
	}
	return out, nil
}

// readCSV returns the data records and the column index of each wanted header,
// matched case-insensitively.
func readCSV(raw []byte, want ...string) ([][]string, []int, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, errors.New("missing header")
	}
	index := map[string]int{}
	for i, h := range records[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cols := make([]int, len(want))
	for i, w := range want {
		idx, ok := index[w]
		if !ok {
			return nil, nil, fmt.Errorf("missing column %q", w)
		}
		cols[i] = idx
	}
	return records[1:], cols, nil
}

func dropUnnamed[T any](in []T, name func(T) string) []T {
	out := in[:0]
	for _, v := range in {
		if strings.TrimSpace(name(v)) != "" {
			out = append(out, v)
		}
	}
	return out
}
