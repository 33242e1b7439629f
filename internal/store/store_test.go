package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkty13/match-gennotes/internal/chrom"
	"github.com/rkty13/match-gennotes/internal/clinvar"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// sliceSource feeds records from a slice.
type sliceSource struct {
	recs []*clinvar.Record
	i    int
}

func (s *sliceSource) Next() (*clinvar.Record, error) {
	if s.i >= len(s.recs) {
		return nil, nil
	}
	r := s.recs[s.i]
	s.i++
	return r, nil
}

func rec(chromName string, pos int64, id, ref string, alts ...string) *clinvar.Record {
	return &clinvar.Record{
		Chrom: chromName,
		Start: pos,
		ID:    id,
		Ref:   ref,
		Alts:  alts,
		Ann:   clinvar.Annotation{Significance: []string{"Pathogenic"}},
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestBuildAndLookupByCoordinate(t *testing.T) {
	s := openInMemory(t)
	cm := chrom.Default()

	src := &sliceSource{recs: []*clinvar.Record{
		rec("1", 1000, "rs1", "A", "G"),
		rec("1", 1000, "rs2", "A", "T"),
		rec("2", 2000, "", "C", "T"),
	}}
	require.NoError(t, s.Build(src, cm))

	built, err := s.Built()
	require.NoError(t, err)
	assert.True(t, built)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err := s.Lookup(1, 1000, "G", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "rs1", rows[0].ID)
	assert.Equal(t, []string{"G"}, rows[0].Alts)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rows[0].Document, &doc))
	assert.Equal(t, "1", doc["chrom"])
}

func TestLookupORSemantics(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.Build(&sliceSource{recs: []*clinvar.Record{
		rec("1", 1000, "rs1", "A", "G"),
	}}, chrom.Default()))

	// Identifier matches, coordinate wrong.
	rows, err := s.Lookup(9, 99999, "C", "rs1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "rs1", rows[0].ID)

	// Coordinate+allele matches, identifier wrong.
	rows, err = s.Lookup(1, 1000, "G", "rs999")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Coordinate+allele matches, identifier absent.
	rows, err = s.Lookup(1, 1000, "G", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Neither predicate matches.
	rows, err = s.Lookup(9, 99999, "C", "rs999")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLookupPlaceholderAlleleMatchesCoordinateOnly(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.Build(&sliceSource{recs: []*clinvar.Record{
		rec("1", 1000, "rs1", "A", "G"),
	}}, chrom.Default()))

	rows, err := s.Lookup(1, 1000, ".", "")
	require.NoError(t, err)
	require.Len(t, rows, 1, "placeholder allele should match any allele at the coordinate")

	rows, err = s.Lookup(1, 2000, ".", "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuildDuplicateIdentifier(t *testing.T) {
	s := openInMemory(t)

	src := &sliceSource{recs: []*clinvar.Record{
		rec("1", 1000, "rs1", "A", "G"),
		rec("2", 2000, "rs1", "C", "T"),
	}}
	err := s.Build(src, chrom.Default())
	require.Error(t, err)

	var dup *DuplicateIdentifierError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "rs1", dup.ID)

	// The first insert must remain queryable; there is no rollback.
	rows, err := s.Lookup(1, 1000, "G", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// A failed build never marks the index complete.
	built, err := s.Built()
	require.NoError(t, err)
	assert.False(t, built)
}

func TestAbsentIdentifiersNeverCollide(t *testing.T) {
	s := openInMemory(t)

	src := &sliceSource{recs: []*clinvar.Record{
		rec("1", 1000, "", "A", "G"),
		rec("2", 2000, "", "C", "T"),
		rec("3", 3000, "", "G", "A"),
	}}
	require.NoError(t, s.Build(src, chrom.Default()))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// An empty identifier in a query matches none of the stored nulls.
	rows, err := s.Lookup(9, 99999, "C", "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuildUnknownChromosomeFails(t *testing.T) {
	s := openInMemory(t)

	src := &sliceSource{recs: []*clinvar.Record{
		rec("GL000999.9", 100, "rs1", "A", "G"),
	}}
	err := s.Build(src, chrom.Default())
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.Build(&sliceSource{recs: []*clinvar.Record{
		rec("1", 1000, "rs1", "A", "G"),
	}}, chrom.Default()))

	require.NoError(t, s.Clear())

	built, err := s.Built()
	require.NoError(t, err)
	assert.False(t, built)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLookupAltSubstring(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.Build(&sliceSource{recs: []*clinvar.Record{
		rec("1", 1000, "rs1", "A", "G", "T"),
	}}, chrom.Default()))

	// Allele list is stored serialized; lookup matches by substring.
	rows, err := s.Lookup(1, 1000, "T", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"G", "T"}, rows[0].Alts)

	rows, err = s.Lookup(1, 1000, "C", "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
