package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rkty13/match-gennotes/internal/chrom"
	"github.com/rkty13/match-gennotes/internal/clinvar"
	"github.com/rkty13/match-gennotes/internal/store"
)

func newIndexCmd() *cobra.Command {
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the ClinVar reference variant index",
		Long: `Build the DuckDB reference variant index from the downloaded ClinVar dump.
An index that is already built is left untouched unless --rebuild is given.`,
		Example: `  match-gennotes index
  match-gennotes index --rebuild`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(rebuild)
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "discard the existing index and rebuild from the dump")

	return cmd
}

func runIndex(rebuild bool) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	s, err := store.Open(indexPath())
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer s.Close()
	s.SetLogger(logger)

	built, err := s.Built()
	if err != nil {
		return err
	}
	if built && !rebuild {
		logger.Info("index already built, skipping", zap.String("path", indexPath()))
		return nil
	}
	if err := s.Clear(); err != nil {
		return err
	}

	p, err := clinvar.NewParser(clinvarDumpPath())
	if err != nil {
		return fmt.Errorf("open clinvar dump (run 'match-gennotes download' first): %w", err)
	}
	defer p.Close()

	logger.Info("parsing clinvar dump", zap.String("path", clinvarDumpPath()))
	if err := s.Build(p, chrom.Default()); err != nil {
		var dup *store.DuplicateIdentifierError
		if errors.As(err, &dup) {
			return fmt.Errorf("%w; the partial index is inconsistent, rerun with --rebuild", dup)
		}
		return err
	}

	n, err := s.Count()
	if err != nil {
		return err
	}
	logger.Info("index ready",
		zap.Int64("records", n),
		zap.String("reference_build", p.ReferenceBuild()),
		zap.String("path", indexPath()))
	return nil
}
