package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/genomelab/snp2vcf/internal/engine"
	"github.com/genomelab/snp2vcf/internal/export"
	"github.com/genomelab/snp2vcf/internal/genotype"
	"github.com/genomelab/snp2vcf/internal/panel"
)

// loadSession builds a session from CLI flags, attaching the reference
// panel when one is configured. A panel that fails to load degrades to
// panel-less export with a warning instead of aborting.
func loadSession(genomePath, panelPath, sample string) (*engine.Session, error) {
	opts := []engine.Option{engine.WithLogger(logger)}
	if sample != "" {
		opts = append(opts, engine.WithSampleName(sample))
	}

	if panelPath == "" {
		panelPath = viper.GetString("panel.path")
	}
	if panelPath != "" {
		p, err := panel.Load(panelPath)
		if err != nil {
			logger.Warn("reference panel unavailable; output will not be imputation-ready",
				zap.String("path", panelPath),
				zap.Error(err))
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			fmt.Fprintf(os.Stderr, "Continuing without reference panel; output is NOT suitable for imputation.\n")
		} else {
			st := p.Stats()
			logger.Info("reference panel loaded",
				zap.String("path", panelPath),
				zap.Int("entries", st.EntryCount),
				zap.Int("samples", st.SampleCount))
			opts = append(opts, engine.WithPanel(p))
		}
	}

	return engine.NewSession(genomePath, opts...)
}

func newVCFCmd() *cobra.Command {
	var (
		panelPath string
		chrom     string
		outPath   string
		sample    string
	)

	cmd := &cobra.Command{
		Use:   "vcf <genome-file>",
		Short: "Generate VCF output for one chromosome",
		Example: `  snp2vcf vcf genome.txt --chrom 1 --panel reference.panel -o chr1.vcf
  snp2vcf vcf genome.txt --chrom X`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(args[0], panelPath, sample)
			if err != nil {
				return err
			}

			result := session.GenerateVCF(chrom)
			if !result.ImputationReady {
				fmt.Fprintf(os.Stderr, "Note: output is not imputation-ready (no reference panel)\n")
			}
			fmt.Fprintf(os.Stderr, "chr%s: %d records emitted, %d sites without panel entry, %d non-biallelic\n",
				result.Chromosome, result.Stats.Emitted, result.Stats.NoPanelMatch, result.Stats.NonBiallelic)

			if outPath == "" {
				fmt.Print(result.Text)
				return nil
			}
			return os.WriteFile(outPath, []byte(result.Text), 0o644)
		},
	}

	cmd.Flags().StringVar(&panelPath, "panel", "", "reference panel file (binary or .duckdb)")
	cmd.Flags().StringVar(&chrom, "chrom", "1", "chromosome to export (1-22, X, Y, MT)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&sample, "sample", "", "sample name for the user's VCF column")

	return cmd
}

func newBatchCmd() *cobra.Command {
	var (
		panelPath string
		outDir    string
		sample    string
		compress  bool
	)

	cmd := &cobra.Command{
		Use:   "batch <genome-file>",
		Short: "Generate VCF files for chromosomes 1-22 in parallel",
		Example: `  snp2vcf batch genome.txt --panel reference.panel --out-dir vcf/
  snp2vcf batch genome.txt --panel reference.panel --out-dir vcf/ --bgzf --sample alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(args[0], panelPath, sample)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			results := session.GenerateAll(ctx)
			if ctx.Err() != nil {
				fmt.Fprintf(os.Stderr, "Interrupted: %d of %d chromosomes completed\n",
					len(results), len(genotype.Autosomes))
			}

			label := sample
			if label == "" {
				label = "sample"
			}
			paths, err := export.WriteFiles(outDir, label, results, compress)
			if err != nil {
				return err
			}

			total := 0
			for _, r := range results {
				total += r.Stats.Emitted
			}
			fmt.Fprintf(os.Stderr, "Wrote %d files (%d records) to %s\n", len(paths), total, outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&panelPath, "panel", "", "reference panel file (binary or .duckdb)")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "output directory")
	cmd.Flags().StringVar(&sample, "sample", "", "sample label used in output file names")
	cmd.Flags().BoolVar(&compress, "bgzf", false, "wrap each output in a block-gzip container")

	return cmd
}
