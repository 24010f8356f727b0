// Package export fans VCF generation out across chromosomes and
// optionally wraps each output in a block-gzip container.
package export

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/genomelab/snp2vcf/internal/genotype"
	"github.com/genomelab/snp2vcf/internal/vcf"
)

// Driver runs per-chromosome VCF builds over a bounded worker pool.
// The genome store and reference panel behind the builder are
// read-only during a run, so chromosome tasks share them without
// locking.
type Driver struct {
	builder *vcf.Builder
	workers int
	logger  *zap.Logger
}

// NewDriver creates a driver. If workers is 0, runtime.NumCPU() is
// used.
func NewDriver(b *vcf.Builder, workers int) *Driver {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Driver{builder: b, workers: workers, logger: zap.NewNop()}
}

// SetLogger sets the logger for batch progress messages.
func (d *Driver) SetLogger(l *zap.Logger) {
	d.logger = l
}

// GenerateAll builds VCF output for chromosomes 1-22. See Generate.
func (d *Driver) GenerateAll(ctx context.Context) map[string]*vcf.Result {
	return d.Generate(ctx, genotype.Autosomes)
}

// Generate builds VCF output for the given chromosomes in parallel.
// Completion order is unconstrained; results are keyed by chromosome
// as tasks finish. When ctx is cancelled, chromosomes not yet started
// are skipped and simply absent from the result; completed outputs are
// kept intact.
func (d *Driver) Generate(ctx context.Context, chroms []string) map[string]*vcf.Result {
	items := make(chan string, len(chroms))
	for _, chrom := range chroms {
		items <- chrom
	}
	close(items)

	results := make(chan *vcf.Result, len(chroms))

	var wg sync.WaitGroup
	wg.Add(d.workers)
	for range d.workers {
		go func() {
			defer wg.Done()
			for chrom := range items {
				// Cancellation boundary: between chromosome tasks only,
				// so no partially-built chromosome escapes.
				if ctx.Err() != nil {
					continue
				}
				results <- d.builder.Build(chrom)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[string]*vcf.Result, len(chroms))
	for r := range results {
		out[r.Chromosome] = r
		d.logger.Debug("chromosome exported",
			zap.String("chrom", r.Chromosome),
			zap.Int("records", r.Stats.Emitted))
	}
	if err := ctx.Err(); err != nil {
		d.logger.Warn("batch generation interrupted",
			zap.Int("completed", len(out)),
			zap.Error(err))
	}
	return out
}
