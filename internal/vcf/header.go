package vcf

import (
	"fmt"
	"strings"
	"time"
)

// source identifies the generator in the VCF header.
const source = "snp2vcf"

// degradedNote is emitted when no reference panel is loaded and
// REF/ALT come from the raw genotype alone. Files carrying it must not
// be uploaded to an imputation service.
const degradedNote = "##note=REF/ALT inferred from raw genotype calls; not suitable for imputation\n"

// writeHeader emits the fixed VCFv4.2 header block followed by the
// column header row. sampleNames must match the per-record sample
// column order.
func writeHeader(b *strings.Builder, chrom, build string, date time.Time, sampleNames []string, imputationReady bool) {
	b.WriteString("##fileformat=VCFv4.2\n")
	fmt.Fprintf(b, "##fileDate=%s\n", date.UTC().Format("20060102"))
	fmt.Fprintf(b, "##source=%s\n", source)
	fmt.Fprintf(b, "##reference=%s\n", build)
	fmt.Fprintf(b, "##contig=<ID=%s>\n", chrom)
	b.WriteString("##INFO=<ID=NS,Number=1,Type=Integer,Description=\"Number of samples with data\">\n")
	b.WriteString("##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">\n")
	b.WriteString("##FILTER=<ID=PASS,Description=\"All filters passed\">\n")
	if !imputationReady {
		b.WriteString(degradedNote)
	}
	b.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT")
	for _, name := range sampleNames {
		b.WriteByte('\t')
		b.WriteString(name)
	}
	b.WriteByte('\n')
}

// sampleNames builds the fixed output sample order: anonymous panel
// samples first, the user's sample last.
func sampleNames(anonymous int, userSample string) []string {
	names := make([]string, 0, anonymous+1)
	for i := 1; i <= anonymous; i++ {
		names = append(names, fmt.Sprintf("anonymous-%d", i))
	}
	return append(names, userSample)
}
