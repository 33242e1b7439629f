// Package vcf provides VCF file parsing functionality.
package vcf

// Placeholder is the VCF token for a missing value.
const Placeholder = "."

// Variant represents a single genomic variant line from a VCF file.
// Qual, Filter and Info are carried as opaque strings; callers that need
// INFO sub-fields parse them on demand.
type Variant struct {
	Chrom    string // chromosome name as written (e.g. "12", "chr12")
	Pos      int64  // 1-based genomic position
	ID       string // variant identifier (e.g. rs ID), "." when absent
	Ref      string // reference allele
	Alt      string // alternate allele(s), comma-separated when multiple
	Qual     string
	Filter   string
	Info     string
	Format   string // FORMAT column, empty for sites-only files
	Genotype string // first sample column, empty for sites-only files
}

// HasID reports whether the variant carries a real identifier rather than
// the "." placeholder.
func (v *Variant) HasID() bool {
	return v.ID != "" && v.ID != Placeholder
}

// HasAlt reports whether the alternate allele is a real allele rather than
// the "." placeholder. 23andMe VCFs use "." at no-call positions.
func (v *Variant) HasAlt() bool {
	return v.Alt != "" && v.Alt != Placeholder
}

// NormalizeChrom returns the chromosome name without a "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.Chrom) > 3 && v.Chrom[:3] == "chr" {
		return v.Chrom[3:]
	}
	return v.Chrom
}
