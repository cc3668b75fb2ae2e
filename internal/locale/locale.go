// Package locale maps language identifiers to ISO codes and English display names.
package locale

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"langtray/internal/langid"
)

//go:embed locales.yaml
var builtinTable []byte

// Info describes one language identifier. Any field may be empty.
type Info struct {
	Language        string // ISO 639 code, e.g. "en"
	Region          string // ISO 3166 code, e.g. "US"
	EnglishLanguage string
	EnglishRegion   string
}

// Empty reports whether no field is set.
func (i Info) Empty() bool {
	return i == Info{}
}

// merge fills empty fields of i from other.
func (i Info) merge(other Info) Info {
	if i.Language == "" {
		i.Language = other.Language
	}
	if i.Region == "" {
		i.Region = other.Region
	}
	if i.EnglishLanguage == "" {
		i.EnglishLanguage = other.EnglishLanguage
	}
	if i.EnglishRegion == "" {
		i.EnglishRegion = other.EnglishRegion
	}
	return i
}

// Lookup answers locale questions for a language identifier.
type Lookup interface {
	Lookup(id langid.ID) Info
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(id langid.ID) Info

// Lookup implements Lookup.
func (f LookupFunc) Lookup(id langid.ID) Info {
	return f(id)
}

// Chain consults each lookup in order and fills missing fields from later ones.
type Chain []Lookup

// Lookup implements Lookup.
func (c Chain) Lookup(id langid.ID) Info {
	var out Info
	for _, l := range c {
		if l == nil {
			continue
		}
		out = out.merge(l.Lookup(id))
	}
	return out
}

// Table is an in-memory identifier table.
type Table struct {
	entries map[langid.ID]Info
}

type tableEntry struct {
	ID       string `yaml:"id"`
	Language string `yaml:"language"`
	Region   string `yaml:"region"`
	Name     string `yaml:"name"`
	Country  string `yaml:"country"`
}

// LoadTable parses a YAML list of table entries. Identifiers are hexadecimal.
func LoadTable(r io.Reader) (*Table, error) {
	var raw []tableEntry
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return &Table{entries: map[langid.ID]Info{}}, nil
		}
		return nil, errors.Wrap(err, "decode locale table")
	}

	entries := make(map[langid.ID]Info, len(raw))
	for i, e := range raw {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(e.ID), "0x"), 16, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "locale table entry %d: id %q", i, e.ID)
		}
		id := langid.ID(v)
		if id.IsUnknown() {
			return nil, fmt.Errorf("locale table entry %d: id must be non-zero", i)
		}
		if _, dup := entries[id]; dup {
			return nil, fmt.Errorf("locale table entry %d: duplicate id %s", i, id.Hex4())
		}
		entries[id] = Info{
			Language:        strings.ToLower(e.Language),
			Region:          strings.ToUpper(e.Region),
			EnglishLanguage: e.Name,
			EnglishRegion:   e.Country,
		}
	}
	return &Table{entries: entries}, nil
}

// Builtin returns the table compiled into the binary.
func Builtin() *Table {
	t, err := LoadTable(strings.NewReader(string(builtinTable)))
	if err != nil {
		panic(fmt.Sprintf("locale: builtin table is invalid: %v", err))
	}
	return t
}

// Lookup implements Lookup.
func (t *Table) Lookup(id langid.ID) Info {
	if t == nil {
		return Info{}
	}
	return t.entries[id]
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Describe renders "Language (Region)" in English, or "" when nothing is known.
// Missing English names are derived from the ISO codes.
func Describe(info Info) string {
	name := info.EnglishLanguage
	if name == "" {
		name = languageName(info.Language)
	}
	if name == "" {
		return ""
	}
	region := info.EnglishRegion
	if region == "" {
		region = regionName(info.Region)
	}
	if region == "" {
		return name
	}
	return name + " (" + region + ")"
}

func languageName(code string) string {
	if code == "" {
		return ""
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(base)
}

func regionName(code string) string {
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return ""
	}
	return display.English.Regions().Name(region)
}
