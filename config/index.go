package config

import (
	"os"

	"github.com/cockroachdb/errors"
)

// IndexEntry names one emitted type: its package and the file name of its
// declaration within that package's directory.
type IndexEntry struct {
	Package string `json:"p" yaml:"p" toml:"p"`
	Name    string `json:"l" yaml:"l" toml:"l"`
}

// TOML has no top-level arrays.
type tomlIndex struct {
	Classes []IndexEntry `toml:"classes"`
}

// WriteIndex replaces the index at path with entries, in the format the
// extension names. Entries are written in the order given.
func WriteIndex(path string, entries []IndexEntry) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []IndexEntry{}
	}
	var in any = entries
	if format == FormatTOML {
		in = tomlIndex{Classes: entries}
	}
	data, err := encode(format, in)
	if err != nil {
		return errors.Wrapf(err, "encode index %s", path)
	}
	return replaceFile(path, data)
}

func ReadIndex(path string) ([]IndexEntry, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read index %s", path)
	}
	if format == FormatTOML {
		var idx tomlIndex
		if err := decode(format, data, &idx); err != nil {
			return nil, errors.Wrapf(err, "parse index %s", path)
		}
		return idx.Classes, nil
	}
	var entries []IndexEntry
	if err := decode(format, data, &entries); err != nil {
		return nil, errors.Wrapf(err, "parse index %s", path)
	}
	return entries, nil
}
