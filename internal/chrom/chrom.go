// Package chrom maps chromosome names to the fixed integer codes used by the
// reference variant index.
package chrom

import (
	"fmt"
	"strconv"
	"strings"
)

// Codes reserved for the non-autosomal chromosomes.
const (
	CodeX  = 23
	CodeY  = 24
	CodeMT = 25
)

// Map is an injective chromosome-name to integer-code table. It is supplied
// explicitly to the parser, index and matcher rather than shared as a package
// global, so callers can extend it with assembly-specific contigs.
type Map struct {
	codes map[string]int
	names map[int]string
}

// New creates a Map from the given name->code table. It fails if two names
// share a code.
func New(codes map[string]int) (*Map, error) {
	m := &Map{
		codes: make(map[string]int, len(codes)),
		names: make(map[int]string, len(codes)),
	}
	for name, code := range codes {
		if prev, ok := m.names[code]; ok {
			return nil, fmt.Errorf("chrom: code %d assigned to both %q and %q", code, prev, name)
		}
		m.codes[name] = code
		m.names[code] = name
	}
	return m, nil
}

// Default returns the standard human table: 1-22 map to themselves, X, Y and
// MT to 23, 24 and 25.
func Default() *Map {
	codes := make(map[string]int, 25)
	for i := 1; i <= 22; i++ {
		codes[strconv.Itoa(i)] = i
	}
	codes["X"] = CodeX
	codes["Y"] = CodeY
	codes["MT"] = CodeMT
	m, err := New(codes)
	if err != nil {
		panic(err) // static table, cannot collide
	}
	return m
}

// Register adds an extra contig name (e.g. an unplaced GL scaffold) with an
// explicit code. It fails if the name or code is already taken.
func (m *Map) Register(name string, code int) error {
	canon := Normalize(name)
	if _, ok := m.codes[canon]; ok {
		return fmt.Errorf("chrom: %q already registered", canon)
	}
	if prev, ok := m.names[code]; ok {
		return fmt.Errorf("chrom: code %d already assigned to %q", code, prev)
	}
	m.codes[canon] = code
	m.names[code] = canon
	return nil
}

// Code returns the integer code for a chromosome name. Names are normalized
// before lookup, so "chr1", "1", "chrM" and "MT" all resolve.
func (m *Map) Code(name string) (int, bool) {
	code, ok := m.codes[Normalize(name)]
	return code, ok
}

// Name returns the canonical name for a code.
func (m *Map) Name(code int) (string, bool) {
	name, ok := m.names[code]
	return name, ok
}

// Normalize strips a "chr" prefix and canonicalizes the mitochondrial name.
func Normalize(name string) string {
	name = strings.TrimPrefix(name, "chr")
	if name == "M" {
		return "MT"
	}
	return name
}
