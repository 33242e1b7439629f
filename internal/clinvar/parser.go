package clinvar

import (
	"strings"

	"github.com/rkty13/match-gennotes/internal/vcf"
)

// Parser reads reference variant records from a ClinVar VCF dump.
// Any malformed line surfaces as an error; the dump feeds the index, so
// callers treat parse failures as fatal.
type Parser struct {
	p *vcf.Parser
}

// NewParser opens a ClinVar dump (plain or compressed VCF).
func NewParser(path string) (*Parser, error) {
	p, err := vcf.NewParser(path)
	if err != nil {
		return nil, err
	}
	return &Parser{p: p}, nil
}

// NewParserFrom wraps an already-open VCF parser.
func NewParserFrom(p *vcf.Parser) *Parser {
	return &Parser{p: p}
}

// Next returns the next reference record, or nil, nil at end of input.
func (p *Parser) Next() (*Record, error) {
	v, err := p.p.Next()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return NewRecord(v), nil
}

// Header returns the dump's header lines seen so far.
func (p *Parser) Header() []string {
	return p.p.Header()
}

// ReferenceBuild returns the genome build the dump declares in its
// ##reference header line, or empty if none has been seen yet. Header lines
// are consumed lazily, so call this after reading at least one record.
func (p *Parser) ReferenceBuild() string {
	for _, line := range p.p.Header() {
		if build, ok := strings.CutPrefix(line, "##reference="); ok {
			return build
		}
	}
	return ""
}

// Close closes the underlying file.
func (p *Parser) Close() error {
	return p.p.Close()
}
