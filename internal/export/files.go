package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/genomelab/snp2vcf/internal/bgzf"
	"github.com/genomelab/snp2vcf/internal/vcf"
)

// FileName names one chromosome's output file for a sample label.
// Block-compressed files carry a .gz suffix.
func FileName(sample, chrom string, compressed bool) string {
	name := fmt.Sprintf("%s_chr%s.vcf", sample, chrom)
	if compressed {
		name += ".gz"
	}
	return name
}

// WriteFiles writes per-chromosome results under dir, named by the
// sample label. With compress set, each chromosome's text is wrapped
// in the block-gzip container. Returns the written paths keyed by
// chromosome.
func WriteFiles(dir, sample string, results map[string]*vcf.Result, compress bool) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	paths := make(map[string]string, len(results))
	for chrom, r := range results {
		path := filepath.Join(dir, FileName(sample, chrom, compress))

		data := []byte(r.Text)
		if compress {
			var err error
			data, err = bgzf.Compress(data)
			if err != nil {
				return nil, fmt.Errorf("compress chromosome %s: %w", chrom, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write chromosome %s: %w", chrom, err)
		}
		paths[chrom] = path
	}
	return paths, nil
}
