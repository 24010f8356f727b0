package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genomelab/snp2vcf/internal/engine"
)

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <genome-file>",
		Short: "Print summary statistics for a genotyping export",
		Example: `  snp2vcf summarize genome.txt
  snp2vcf summarize genome.txt.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := engine.NewSession(args[0], engine.WithLogger(logger))
			if err != nil {
				return err
			}
			fmt.Print(session.Summarize().String())
			if w := session.Genome().Warnings(); w > 0 {
				fmt.Printf("\nWarning: %d malformed input lines were skipped\n", w)
			}
			return nil
		},
	}
}

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <genome-file> <rsid>",
		Short: "Look up a single SNP by rsid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := engine.NewSession(args[0], engine.WithLogger(logger))
			if err != nil {
				return err
			}
			snp := session.LookupSNP(args[1])
			if snp == nil {
				return fmt.Errorf("rsid %q not found", args[1])
			}
			fmt.Printf("rsid: %s\nchromosome: %s\nposition: %d\ngenotype: %s\nheterozygous: %t\n",
				snp.Rsid, snp.Chromosome, snp.Position, snp.Genotype, snp.IsHeterozygous())
			return nil
		},
	}
}

func newChromStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chrom-stats <genome-file> <chromosome>",
		Short: "Print statistics for one chromosome",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := engine.NewSession(args[0], engine.WithLogger(logger))
			if err != nil {
				return err
			}
			cs := session.ChromosomeStats(args[1])
			fmt.Printf("chromosome: %s\ntotal SNPs: %d\nheterozygous: %d\nheterozygosity rate: %.4f\n",
				cs.Chromosome, cs.TotalSNPs, cs.HeterozygousCount, cs.HeterozygosityRate)
			return nil
		},
	}
}
