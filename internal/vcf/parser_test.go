package vcf

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleVCF = `##fileformat=VCFv4.1
##reference=GRCh37
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	SAMPLE1
1	1000	rs1	A	G	50	PASS	DP=30	GT	0/1
1	2000	.	C	T	.	.	.	GT	1/1
X	3000	rs3	G	.	.	.	.	GT	0/0
`

func TestParser_Basic(t *testing.T) {
	p := NewParserFromReader(strings.NewReader(sampleVCF))

	v, err := p.Next()
	if err != nil {
		t.Fatalf("Failed to read variant: %v", err)
	}
	if v == nil {
		t.Fatal("Expected a variant, got nil")
	}

	if v.Chrom != "1" {
		t.Errorf("Expected chrom 1, got %s", v.Chrom)
	}
	if v.Pos != 1000 {
		t.Errorf("Expected pos 1000, got %d", v.Pos)
	}
	if v.ID != "rs1" {
		t.Errorf("Expected id rs1, got %s", v.ID)
	}
	if v.Ref != "A" || v.Alt != "G" {
		t.Errorf("Expected A>G, got %s>%s", v.Ref, v.Alt)
	}
	if v.Format != "GT" || v.Genotype != "0/1" {
		t.Errorf("Expected FORMAT/sample columns, got %q %q", v.Format, v.Genotype)
	}
}

func TestParser_PlaceholderFields(t *testing.T) {
	p := NewParserFromReader(strings.NewReader(sampleVCF))

	if _, err := p.Next(); err != nil {
		t.Fatal(err)
	}

	v, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	if v.HasID() {
		t.Error("Expected placeholder id to report absent")
	}
	if !v.HasAlt() {
		t.Error("Expected real alt allele")
	}

	v, err = p.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !v.HasID() {
		t.Error("Expected rs3 id to report present")
	}
	if v.HasAlt() {
		t.Error("Expected placeholder alt to report absent")
	}
}

func TestParser_EOFIsNotAnError(t *testing.T) {
	p := NewParserFromReader(strings.NewReader(sampleVCF))

	count := 0
	for {
		v, err := p.Next()
		if err != nil {
			t.Fatalf("Error reading variant: %v", err)
		}
		if v == nil {
			break
		}
		count++
	}
	if count != 3 {
		t.Errorf("Expected 3 variants, got %d", count)
	}

	// Repeated calls past EOF stay terminal.
	v, err := p.Next()
	if err != nil || v != nil {
		t.Errorf("Expected nil, nil past EOF, got %v, %v", v, err)
	}
}

func TestParser_Header(t *testing.T) {
	p := NewParserFromReader(strings.NewReader(sampleVCF))

	if _, err := p.Next(); err != nil {
		t.Fatal(err)
	}

	header := p.Header()
	if len(header) != 3 {
		t.Fatalf("Expected 3 header lines, got %d", len(header))
	}
	if !strings.HasPrefix(header[0], "##fileformat") {
		t.Errorf("Unexpected first header line: %s", header[0])
	}

	samples := p.SampleNames()
	if len(samples) != 1 || samples[0] != "SAMPLE1" {
		t.Errorf("Expected sample names [SAMPLE1], got %v", samples)
	}
}

func TestParser_NoTrailingNewline(t *testing.T) {
	p := NewParserFromReader(strings.NewReader("1\t1000\trs1\tA\tG\t.\t.\t."))

	v, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || v.Pos != 1000 {
		t.Fatalf("Expected variant at 1000, got %+v", v)
	}

	v, err = p.Next()
	if err != nil || v != nil {
		t.Errorf("Expected clean EOF, got %v, %v", v, err)
	}
}

func TestParser_TooFewColumns(t *testing.T) {
	p := NewParserFromReader(strings.NewReader("1\t1000\trs1\tA\tG\n"))

	_, err := p.Next()
	if err == nil {
		t.Fatal("Expected parse error for short line")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *ParseError, got %T", err)
	}
	if pe.Line != 1 {
		t.Errorf("Expected line 1, got %d", pe.Line)
	}
}

func TestParser_BadPosition(t *testing.T) {
	p := NewParserFromReader(strings.NewReader("1\tabc\trs1\tA\tG\t.\t.\t.\n"))

	_, err := p.Next()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
}

func TestParser_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.vcf.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	if _, err := gw.Write([]byte(sampleVCF)); err != nil {
		t.Fatal(err)
	}
	gw.Close()
	f.Close()

	p, err := NewParser(path)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer p.Close()

	count := 0
	for {
		v, err := p.Next()
		if err != nil {
			t.Fatal(err)
		}
		if v == nil {
			break
		}
		count++
	}
	if count != 3 {
		t.Errorf("Expected 3 variants from gzip file, got %d", count)
	}
}

func TestParser_PlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.vcf")
	if err := os.WriteFile(path, []byte(sampleVCF), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := NewParser(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	v, err := p.Next()
	if err != nil || v == nil {
		t.Fatalf("Expected first variant, got %v, %v", v, err)
	}
}
