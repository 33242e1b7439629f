package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rkty13/match-gennotes/internal/chrom"
	"github.com/rkty13/match-gennotes/internal/gennotes"
	"github.com/rkty13/match-gennotes/internal/match"
	"github.com/rkty13/match-gennotes/internal/myvariant"
	"github.com/rkty13/match-gennotes/internal/openhumans"
	"github.com/rkty13/match-gennotes/internal/output"
	"github.com/rkty13/match-gennotes/internal/store"
	"github.com/rkty13/match-gennotes/internal/vcf"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match [vcf-files...]",
		Short: "Match individual VCF files against the ClinVar index",
		Long: `Match each individual's variants against the reference variant index and
write a JSON array of enriched matches per individual. With no arguments,
every downloaded OpenHumans individual is processed in order; with file
arguments, only those VCF files are.`,
		Example: `  match-gennotes match
  match-gennotes match alice.vcf.bz2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(args)
		},
	}

	return cmd
}

func runMatch(files []string) error {
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

	built, err := s.Built()
	if err != nil {
		return err
	}
	if !built {
		return fmt.Errorf("no reference index at %s; run 'match-gennotes index' first", indexPath())
	}

	cache, err := myvariant.OpenDuckDBCache(cachePath())
	if err != nil {
		return fmt.Errorf("open myvariant cache: %w", err)
	}
	defer cache.Close()

	m := match.NewMatcher(
		s,
		chrom.Default(),
		viper.GetString("build"),
		gennotes.NewClient(viper.GetString("gennotes.base_url")),
		myvariant.NewClient(viper.GetString("myvariant.base_url"), cache),
	)
	m.SetLogger(logger)

	if len(files) > 0 {
		for _, path := range files {
			name := outputName(path)
			if err := matchFile(m, logger, path, filepath.Join(mappedDir(), name+".json")); err != nil {
				return err
			}
		}
		return nil
	}

	results, err := readMetadata()
	if err != nil {
		return fmt.Errorf("read individuals metadata (run 'match-gennotes download' first): %w", err)
	}

	for i := range results {
		r := &results[i]
		if r.LocalFilename == "" {
			r.LocalFilename = r.Filename()
		}
		path := filepath.Join(userVCFDir(), r.LocalFilename+".vcf.bz2")
		out := filepath.Join(mappedDir(), r.LocalFilename+".json")

		logger.Info("matching individual", zap.String("user", r.User.Username))
		if err := matchFile(m, logger, path, out); err != nil {
			return err
		}
	}

	return output.WriteMetadata(metadataPath(), results)
}

// matchFile parses one individual's VCF, matches it and writes the output
// artifact. Parse and index errors propagate; a corrupt file fails the run
// rather than producing silently incomplete matches.
func matchFile(m *match.Matcher, logger *zap.Logger, path, outPath string) error {
	p, err := vcf.NewParser(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer p.Close()

	matches, err := m.MatchAll(p)
	if err != nil {
		return fmt.Errorf("match %s: %w", path, err)
	}

	if err := output.WriteMatches(outPath, matches); err != nil {
		return err
	}
	logger.Info("wrote matches",
		zap.String("file", outPath),
		zap.Strings("samples", p.SampleNames()),
		zap.Int("lines", p.LineNumber()),
		zap.Int("matches", len(matches)))
	return nil
}

// readMetadata loads the individuals metadata written by the download step.
func readMetadata() ([]openhumans.Result, error) {
	data, err := os.ReadFile(metadataPath())
	if err != nil {
		return nil, err
	}
	var results []openhumans.Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return results, nil
}

// outputName strips the VCF extensions from a file path.
func outputName(path string) string {
	name := filepath.Base(path)
	for _, ext := range []string{".bz2", ".gz", ".vcf"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
