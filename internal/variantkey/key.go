// Package variantkey derives lookup keys from a variant's coordinates and
// alleles: the coordinate key used for GenNotes queries and the genomic HGVS
// key used for MyVariant.info queries.
package variantkey

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBuild is the genome-build token used when none is configured.
const DefaultBuild = "b37"

// Coordinate returns the build-qualified coordinate key for a variant,
// `{build}-{chrom}-{pos}-{ref}-{alt}`. Pure and deterministic.
func Coordinate(build, chrom string, pos int64, ref, alt string) string {
	return fmt.Sprintf("%s-%s-%d-%s-%s", build, chrom, pos, ref, alt)
}

// HGVS returns the percent-decoded genomic HGVS name for a variant, e.g.
// `chr1:g.1000A>G`. It supports SNVs, anchored deletions and insertions, and
// equal-length multi-base substitutions (delins); any other allele shape
// fails, and callers treat that as "nomenclature key unavailable for this
// variant" rather than a fatal condition.
func HGVS(chrom string, pos int64, ref, alt string) (string, error) {
	chrom = strings.TrimPrefix(chrom, "chr")
	if !validAllele(ref) || !validAllele(alt) {
		return "", fmt.Errorf("hgvs: unsupported alleles %q>%q", ref, alt)
	}

	var name string
	switch {
	case len(ref) == 1 && len(alt) == 1:
		name = fmt.Sprintf("chr%s:g.%d%s>%s", chrom, pos, ref, alt)

	case len(ref) > 1 && len(alt) == 1:
		// Deletion: the alt is the retained anchor base.
		if ref[0] != alt[0] {
			return "", fmt.Errorf("hgvs: deletion %q>%q has no shared anchor base", ref, alt)
		}
		start := pos + 1
		end := pos + int64(len(ref)) - 1
		if start == end {
			name = fmt.Sprintf("chr%s:g.%ddel", chrom, start)
		} else {
			name = fmt.Sprintf("chr%s:g.%d_%ddel", chrom, start, end)
		}

	case len(alt) > 1 && len(ref) == 1:
		// Insertion: the ref is the anchor base preceding the inserted sequence.
		if ref[0] != alt[0] {
			return "", fmt.Errorf("hgvs: insertion %q>%q has no shared anchor base", ref, alt)
		}
		name = fmt.Sprintf("chr%s:g.%d_%dins%s", chrom, pos, pos+1, alt[1:])

	case len(ref) == len(alt):
		// Multi-base substitution: delins over the replaced range.
		end := pos + int64(len(ref)) - 1
		name = fmt.Sprintf("chr%s:g.%d_%ddelins%s", chrom, pos, end, alt)

	default:
		return "", fmt.Errorf("hgvs: unsupported allele shape %q>%q", ref, alt)
	}

	decoded, err := url.PathUnescape(name)
	if err != nil {
		return "", fmt.Errorf("hgvs: decode %q: %w", name, err)
	}
	return decoded, nil
}

// validAllele reports whether s is a plain nucleotide sequence. The "."
// placeholder and symbolic alleles are rejected.
func validAllele(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return false
		}
	}
	return true
}
