package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"aromasheet/internal/formulation"
)

var csvHeader = []string{"reference", "name", "type", "classification", "is_extract", "extract_source", "price", "density", "vanillin_rate", "cas"}

// Load returns the builtin catalog overlaid with the user file at path. An
// empty path or a missing file yields the builtin catalog alone.
func Load(path string) (*Catalog, error) {
	base, err := Builtin()
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return base, nil
	}
	extra, err := ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return nil, err
	}
	return base.Merge(extra), nil
}

// ReadFile parses a user catalog. The format follows the extension: .csv, or
// .yaml/.yml holding a list of entries.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		entries, err = parseCSV(f)
	case ".yaml", ".yml":
		entries, err = parseYAML(f)
	default:
		return nil, fmt.Errorf("catalog %s: unsupported format %q (want .csv, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return entries, nil
}

func parseYAML(r io.Reader) ([]Entry, error) {
	var raw []Entry
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		e = e.normalized()
		if err := e.validate(); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// parseCSV reads rows by header name so columns may come in any order. Only
// name, type and classification are required.
func parseCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "type", "classification"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var entries []Entry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		e := Entry{
			Reference:      field("reference"),
			Name:           field("name"),
			Type:           formulation.IngredientType(field("type")),
			Classification: formulation.Origin(field("classification")),
			ExtractSource:  field("extract_source"),
			CAS:            field("cas"),
		}
		if e.IsExtract, err = parseBool(field("is_extract")); err != nil {
			return nil, fmt.Errorf("line %d: is_extract: %w", line, err)
		}
		for _, num := range []struct {
			col string
			dst *float64
		}{
			{"price", &e.Price},
			{"density", &e.Density},
			{"vanillin_rate", &e.VanillinRate},
		} {
			if *num.dst, err = parseFloat(field(num.col)); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, num.col, err)
			}
		}
		e = e.normalized()
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteCSV writes entries in the layout parseCSV reads.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.Reference,
			e.Name,
			string(e.Type),
			string(e.Classification),
			strconv.FormatBool(e.IsExtract),
			e.ExtractSource,
			strconv.FormatFloat(e.Price, 'f', -1, 64),
			strconv.FormatFloat(e.Density, 'f', -1, 64),
			strconv.FormatFloat(e.VanillinRate, 'f', -1, 64),
			e.CAS,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseFloat(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q", value)
}
