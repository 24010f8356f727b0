// Package panel provides the read-only reference panel: a
// position-keyed table of canonical REF/ALT alleles and pre-stored
// anonymous sample genotypes, used to assign allele direction during
// VCF export.
package panel

import (
	"fmt"

	"github.com/genomelab/snp2vcf/internal/genotype"
)

// Entry is the reference information for one panel site.
type Entry struct {
	Chromosome string
	Position   uint64
	// Ref and Alt are the canonical single-base alleles.
	Ref byte
	Alt byte
	// SampleGenotypes are the anonymous samples' GT strings
	// ("0/0", "0/1", "1/1", "1/0", or "./."), in fixed panel order.
	SampleGenotypes []string
}

// Biallelic reports whether the site carries a clean single-base
// REF/ALT pair with distinct alleles.
func (e *Entry) Biallelic() bool {
	return isBase(e.Ref) && isBase(e.Alt) && e.Ref != e.Alt
}

// record is the packed in-memory form of an entry.
type record struct {
	refAlt    byte
	genotypes []byte
}

// Panel is the loaded reference table. Read-only after load; shared by
// all concurrent chromosome build tasks without locking.
type Panel struct {
	version     string
	build       string
	sampleCount int
	entries     map[uint64]record
}

// Stats describes a loaded panel.
type Stats struct {
	Version     string
	Build       string
	SampleCount int
	EntryCount  int
}

// New creates an empty panel with the given identity. Used by the
// build path; loaded panels come from Load.
func New(version, build string, sampleCount int) *Panel {
	return &Panel{
		version:     version,
		build:       build,
		sampleCount: sampleCount,
		entries:     make(map[uint64]record),
	}
}

// key packs (chromosome code, position) into one map key.
func key(chromCode uint8, pos uint64) uint64 {
	return uint64(chromCode)<<32 | pos
}

// Add inserts an entry. Later duplicates for the same (chromosome,
// position) replace earlier ones.
func (p *Panel) Add(e *Entry) error {
	code, ok := encodeChrom(e.Chromosome)
	if !ok {
		return fmt.Errorf("unrecognized chromosome %q", e.Chromosome)
	}
	if len(e.SampleGenotypes) != p.sampleCount {
		return fmt.Errorf("entry at %s:%d has %d sample genotypes, panel carries %d",
			e.Chromosome, e.Position, len(e.SampleGenotypes), p.sampleCount)
	}
	refAlt, err := encodeRefAlt(e.Ref, e.Alt)
	if err != nil {
		return fmt.Errorf("entry at %s:%d: %w", e.Chromosome, e.Position, err)
	}
	genos := make([]byte, p.sampleCount)
	for i, gt := range e.SampleGenotypes {
		b, err := encodeSampleGenotype(gt)
		if err != nil {
			return fmt.Errorf("entry at %s:%d sample %d: %w", e.Chromosome, e.Position, i, err)
		}
		genos[i] = b
	}
	p.entries[key(code, e.Position)] = record{refAlt: refAlt, genotypes: genos}
	return nil
}

// Lookup returns the panel entry at (chromosome, position), or false.
func (p *Panel) Lookup(chrom string, pos uint64) (*Entry, bool) {
	code, ok := encodeChrom(genotype.NormalizeChrom(chrom))
	if !ok {
		return nil, false
	}
	rec, ok := p.entries[key(code, pos)]
	if !ok {
		return nil, false
	}

	e := &Entry{
		Chromosome:      decodeChrom(code),
		Position:        pos,
		Ref:             decodeNucleotide(rec.refAlt >> 6 & 0x03),
		Alt:             decodeNucleotide(rec.refAlt >> 4 & 0x03),
		SampleGenotypes: make([]string, len(rec.genotypes)),
	}
	for i, b := range rec.genotypes {
		e.SampleGenotypes[i] = decodeSampleGenotype(b)
	}
	return e, true
}

// Stats returns the panel's identity and entry count.
func (p *Panel) Stats() Stats {
	return Stats{
		Version:     p.version,
		Build:       p.build,
		SampleCount: p.sampleCount,
		EntryCount:  len(p.entries),
	}
}

// SampleCount returns the number of anonymous samples per entry.
func (p *Panel) SampleCount() int {
	return p.sampleCount
}

// Build returns the reference genome build the panel coordinates use.
func (p *Panel) Build() string {
	return p.build
}
