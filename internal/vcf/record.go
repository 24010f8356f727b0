// Package vcf builds reference-guided Variant Call Format output from
// a genome store and a reference panel.
package vcf

import (
	"strconv"
	"strings"
)

// Record is one VCF data line. Transient: constructed, serialized, and
// discarded during a single build.
type Record struct {
	Chromosome string
	Position   uint64
	ID         string
	Ref        string
	Alt        string
	Qual       string
	Filter     string
	Info       string
	Format     string
	// Samples holds one GT string per output sample, anonymous panel
	// samples first, the user's sample last. Order must match the
	// header's sample-name row.
	Samples []string
}

// WriteTo appends the tab-separated line (with trailing newline) to b.
func (r *Record) WriteTo(b *strings.Builder) {
	b.WriteString(r.Chromosome)
	b.WriteByte('\t')
	b.WriteString(strconv.FormatUint(r.Position, 10))
	b.WriteByte('\t')
	b.WriteString(r.ID)
	b.WriteByte('\t')
	b.WriteString(r.Ref)
	b.WriteByte('\t')
	b.WriteString(r.Alt)
	b.WriteByte('\t')
	b.WriteString(r.Qual)
	b.WriteByte('\t')
	b.WriteString(r.Filter)
	b.WriteByte('\t')
	b.WriteString(r.Info)
	b.WriteByte('\t')
	b.WriteString(r.Format)
	for _, s := range r.Samples {
		b.WriteByte('\t')
		b.WriteString(s)
	}
	b.WriteByte('\n')
}

// String returns the serialized line without a trailing newline.
func (r *Record) String() string {
	var b strings.Builder
	r.WriteTo(&b)
	return strings.TrimSuffix(b.String(), "\n")
}
