// Package clinvar parses the ClinVar VCF dump into reference variant records.
package clinvar

import (
	"encoding/json"
	"strings"

	"github.com/rkty13/match-gennotes/internal/vcf"
)

// Record is a single reference variant from the ClinVar dump, normalized for
// storage in the variant index. Positions are 1-based coordinates in the
// genome build the dump declares in its header.
type Record struct {
	Chrom string   // chromosome name without "chr" prefix
	Start int64    // 1-based position
	ID    string   // dbSNP identifier, empty when the dump used "."
	Ref   string   // reference allele
	Alts  []string // alternate alleles
	Ann   Annotation
}

// Annotation holds the clinical-significance sub-fields from the INFO column.
type Annotation struct {
	Significance []string `json:"clinical_significance,omitempty"` // CLNSIG
	Diseases     []string `json:"diseases,omitempty"`              // CLNDN
	ReviewStatus string   `json:"review_status,omitempty"`         // CLNREVSTAT
	HGVS         string   `json:"hgvs,omitempty"`                  // CLNHGVS
	VariantType  string   `json:"variant_type,omitempty"`          // CLNVC
	GeneInfo     string   `json:"gene_info,omitempty"`             // GENEINFO
	AlleleID     string   `json:"allele_id,omitempty"`             // ALLELEID
}

// NewRecord normalizes a parsed VCF line into a Record. The "." identifier
// placeholder becomes an empty ID so absent identifiers never collide in the
// index's unique constraint.
func NewRecord(v *vcf.Variant) *Record {
	r := &Record{
		Chrom: v.NormalizeChrom(),
		Start: v.Pos,
		Ref:   v.Ref,
		Alts:  strings.Split(v.Alt, ","),
	}
	if v.HasID() {
		r.ID = v.ID
	}

	info := parseInfo(v.Info)
	r.Ann = Annotation{
		Significance: splitList(info["CLNSIG"]),
		Diseases:     splitList(info["CLNDN"]),
		ReviewStatus: info["CLNREVSTAT"],
		HGVS:         info["CLNHGVS"],
		VariantType:  info["CLNVC"],
		GeneInfo:     info["GENEINFO"],
		AlleleID:     info["ALLELEID"],
	}

	return r
}

// document is the serialized shape of the full annotation payload stored in
// the index and attached to matched individual variants.
type document struct {
	Chrom   string     `json:"chrom"`
	Pos     int64      `json:"pos"`
	DBSNPID *string    `json:"dbsnp_id"`
	Ref     string     `json:"ref_allele"`
	Alts    []string   `json:"alt_alleles"`
	ClinVar Annotation `json:"clinvar"`
}

// Document serializes the record's full clinical annotation payload.
// An empty identifier serializes as null, never as the "." placeholder.
func (r *Record) Document() ([]byte, error) {
	doc := document{
		Chrom:   r.Chrom,
		Pos:     r.Start,
		Ref:     r.Ref,
		Alts:    r.Alts,
		ClinVar: r.Ann,
	}
	if r.ID != "" {
		doc.DBSNPID = &r.ID
	}
	return json.Marshal(doc)
}

// parseInfo splits the raw INFO column into key-value pairs. Flag-type
// entries map to an empty value.
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	if info == "" || info == vcf.Placeholder {
		return result
	}
	for _, kv := range strings.Split(info, ";") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		} else {
			result[parts[0]] = ""
		}
	}
	return result
}

// splitList splits a |-separated ClinVar INFO value into its entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}
