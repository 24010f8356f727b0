package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genomelab/snp2vcf/internal/panel"
)

func newPanelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Build and inspect reference panel files",
	}
	cmd.AddCommand(newPanelBuildCmd())
	cmd.AddCommand(newPanelInfoCmd())
	return cmd
}

func newPanelBuildCmd() *cobra.Command {
	var (
		outPath string
		version string
		build   string
	)

	cmd := &cobra.Command{
		Use:   "build <source-tsv>",
		Short: "Compile a tab-separated panel source into the binary panel format",
		Long: `Compile a panel source into the compact binary panel format.

Each source line is: chromosome, position, ref, alt, then one genotype
column (0/0, 0/1, 1/1, or ./.) per anonymous sample. Lines starting
with '#' are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open panel source: %w", err)
			}
			defer f.Close()

			p, err := panel.BuildFromTSV(f, version, build)
			if err != nil {
				return err
			}
			if err := p.WriteFile(outPath); err != nil {
				return err
			}

			st := p.Stats()
			fmt.Printf("Wrote %s: %d entries, %d anonymous samples, build %s\n",
				outPath, st.EntryCount, st.SampleCount, st.Build)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "reference.panel", "output panel file")
	cmd.Flags().StringVar(&version, "panel-version", "1", "panel version identifier")
	cmd.Flags().StringVar(&build, "build", "GRCh37/hg19", "reference genome build")

	return cmd
}

func newPanelInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <panel-file>",
		Short: "Show statistics for a reference panel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := panel.Load(args[0])
			if err != nil {
				return err
			}
			st := p.Stats()
			fmt.Printf("version: %s\nbuild: %s\nentries: %d\nanonymous samples: %d\n",
				st.Version, st.Build, st.EntryCount, st.SampleCount)
			return nil
		},
	}
}
