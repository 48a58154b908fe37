// Package dictionary loads the Torn item dictionary, a CSV table mapping
// item names to market item ids. The dictionary is loaded once per run and
// is read-only afterwards.
package dictionary

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Accepted header spellings, checked case-insensitively. Exports of the
// dictionary have drifted between tools over time, so several aliases map
// onto the two logical columns.
var (
	nameHeaders = []string{"key", "name", "item_name", "item", "title"}
	idHeaders   = []string{"id", "item_id", "itemid"}
)

// Dictionary is an immutable name→id lookup table.
type Dictionary struct {
	byName map[string]int
	names  []string
}

// Load reads the dictionary CSV from disk.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", path, err)
	}
	return d, nil
}

// Parse reads dictionary CSV data. It fails if the header row is missing,
// if either logical column cannot be resolved, or if no usable rows remain.
// Rows with an empty name or a non-integer id are skipped.
func Parse(r io.Reader) (*Dictionary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Exports from spreadsheet tools often carry a UTF-8 BOM.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	nameCol := pickColumn(header, nameHeaders)
	idCol := pickColumn(header, idHeaders)
	if nameCol < 0 || idCol < 0 {
		return nil, fmt.Errorf("header must contain a name column (%s) and an id column (%s)",
			strings.Join(nameHeaders, "/"), strings.Join(idHeaders, "/"))
	}

	byName := make(map[string]int)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if nameCol >= len(record) || idCol >= len(record) {
			continue
		}

		name := strings.TrimSpace(record[nameCol])
		rawID := strings.TrimSpace(record[idCol])
		if name == "" || rawID == "" {
			continue
		}
		id, err := strconv.Atoi(rawID)
		if err != nil {
			continue
		}
		byName[name] = id
	}

	if len(byName) == 0 {
		return nil, fmt.Errorf("no usable rows (empty mapping)")
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Dictionary{byName: byName, names: names}, nil
}

// pickColumn returns the index of the first header matching any candidate,
// or -1 when none does.
func pickColumn(header []string, candidates []string) int {
	for _, want := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}
	}
	return -1
}

// Lookup resolves an item name to its id.
func (d *Dictionary) Lookup(name string) (int, bool) {
	id, ok := d.byName[name]
	return id, ok
}

// Contains reports whether name is a known item name.
func (d *Dictionary) Contains(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// Names returns all item names in ascending order. The returned slice is
// shared; callers must not modify it.
func (d *Dictionary) Names() []string {
	return d.names
}

// Len reports the number of entries.
func (d *Dictionary) Len() int {
	return len(d.byName)
}
