// Package match matches an individual's variants against the reference
// variant index and enriches every match with external annotation lookups.
package match

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/rkty13/match-gennotes/internal/chrom"
	"github.com/rkty13/match-gennotes/internal/store"
	"github.com/rkty13/match-gennotes/internal/variantkey"
	"github.com/rkty13/match-gennotes/internal/vcf"
)

// IndexLookup is the reference variant index query surface.
type IndexLookup interface {
	Lookup(code int, pos int64, alt, id string) ([]store.Row, error)
}

// CoordinateLookup fetches an annotation payload by coordinate key.
type CoordinateLookup interface {
	Variant(key string) (json.RawMessage, error)
}

// NomenclatureLookup fetches an annotation payload by genomic HGVS name.
type NomenclatureLookup interface {
	Variant(hgvs string) (json.RawMessage, error)
}

// Match is one individual variant paired with one reference index record.
// A variant matching several index records produces several Match values;
// duplicates are preserved, not collapsed.
type Match struct {
	Chrom    string `json:"chrom"`
	Pos      int64  `json:"pos"`
	ID       string `json:"id"`
	Ref      string `json:"ref_allele"`
	Alt      string `json:"alt_allele"`
	Qual     string `json:"qual"`
	Filter   string `json:"filter"`
	Info     string `json:"info"`
	Format   string `json:"format"`
	Genotype string `json:"genotype"`

	// Enrichment slots. All four stay null for placeholder-allele variants
	// and individually null when a lookup fails.
	ClinVarData  json.RawMessage `json:"clinvar_data"`
	GennotesID   *string         `json:"gennotes_id"`
	GennotesData json.RawMessage `json:"gennotes_data"`
	HGVSID       *string         `json:"hgvs_id"`
	MVData       json.RawMessage `json:"mv_data"`
}

// Matcher runs the per-variant match-and-enrich pipeline. Processing is
// strictly sequential; external lookup failures are logged and leave the
// corresponding slot null, they never abort the run.
type Matcher struct {
	index     IndexLookup
	chromMap  *chrom.Map
	build     string
	gennotes  CoordinateLookup
	myvariant NomenclatureLookup
	logger    *zap.Logger
}

// NewMatcher creates a matcher. The chromosome map and genome-build token
// are supplied explicitly; build defaults to variantkey.DefaultBuild when
// empty.
func NewMatcher(index IndexLookup, cm *chrom.Map, build string, gn CoordinateLookup, mv NomenclatureLookup) *Matcher {
	if build == "" {
		build = variantkey.DefaultBuild
	}
	return &Matcher{
		index:     index,
		chromMap:  cm,
		build:     build,
		gennotes:  gn,
		myvariant: mv,
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger for lookup-failure messages.
func (m *Matcher) SetLogger(l *zap.Logger) {
	m.logger = l
}

// MatchVariant looks the variant up in the index and returns one enriched
// Match per index record. An unknown chromosome is a data error in the
// individual's file and propagates.
func (m *Matcher) MatchVariant(v *vcf.Variant) ([]*Match, error) {
	chromName := v.NormalizeChrom()
	code, ok := m.chromMap.Code(chromName)
	if !ok {
		return nil, fmt.Errorf("unknown chromosome %q at position %d", v.Chrom, v.Pos)
	}

	id := ""
	if v.HasID() {
		id = v.ID
	}
	rows, err := m.index.Lookup(code, v.Pos, v.Alt, id)
	if err != nil {
		return nil, fmt.Errorf("index lookup for %s:%d: %w", v.Chrom, v.Pos, err)
	}

	var matches []*Match
	for _, row := range rows {
		match := &Match{
			Chrom:       v.Chrom,
			Pos:         v.Pos,
			ID:          v.ID,
			Ref:         v.Ref,
			Alt:         v.Alt,
			Qual:        v.Qual,
			Filter:      v.Filter,
			Info:        v.Info,
			Format:      v.Format,
			Genotype:    v.Genotype,
			ClinVarData: row.Document,
		}

		// No-call positions still match by coordinate but are never sent to
		// the external services.
		if v.HasAlt() {
			m.enrich(match, chromName, v)
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// enrich fills the external enrichment slots. Each lookup fails
// independently: the slot stays null and processing continues.
func (m *Matcher) enrich(match *Match, chromName string, v *vcf.Variant) {
	coordKey := variantkey.Coordinate(m.build, chromName, v.Pos, v.Ref, v.Alt)
	match.GennotesID = &coordKey

	payload, err := m.gennotes.Variant(coordKey)
	if err != nil {
		m.logger.Warn("gennotes lookup failed",
			zap.String("key", coordKey),
			zap.Error(err))
	} else {
		match.GennotesData = payload
	}

	hgvs, err := variantkey.HGVS(chromName, v.Pos, v.Ref, v.Alt)
	if err != nil {
		m.logger.Warn("hgvs name unavailable",
			zap.String("chrom", v.Chrom),
			zap.Int64("pos", v.Pos),
			zap.Error(err))
		return
	}
	match.HGVSID = &hgvs

	payload, err = m.myvariant.Variant(hgvs)
	if err != nil {
		m.logger.Warn("myvariant lookup failed",
			zap.String("hgvs", hgvs),
			zap.Error(err))
		return
	}
	match.MVData = payload
}

// VariantSource yields individual variants until it returns nil, nil.
type VariantSource interface {
	Next() (*vcf.Variant, error)
}

// MatchAll matches every variant from the source in input order. A parse or
// index failure propagates; the caller decides what to do with the file.
func (m *Matcher) MatchAll(src VariantSource) ([]*Match, error) {
	var all []*Match
	count := 0
	for {
		v, err := src.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			break
		}
		count++

		matches, err := m.MatchVariant(v)
		if err != nil {
			return nil, err
		}
		all = append(all, matches...)
	}

	m.logger.Info("matched variants",
		zap.Int("variants", count),
		zap.Int("matches", len(all)))
	return all, nil
}
