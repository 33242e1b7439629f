package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rkty13/match-gennotes/internal/gennotes"
	"github.com/rkty13/match-gennotes/internal/myvariant"
	"github.com/rkty13/match-gennotes/internal/openhumans"
	"github.com/rkty13/match-gennotes/internal/variantkey"
)

var verbose bool

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match-gennotes",
		Short: "Match 23andMe VCF data against ClinVar",
		Long: `match-gennotes builds a ClinVar reference variant index and matches
23andMe-derived VCF files shared on OpenHumans against it, enriching every
match with GenNotes and MyVariant.info annotations.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig wires viper: ~/.match-gennotes.yaml plus MATCH_GENNOTES_* env.
func initConfig() {
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".match-gennotes")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MATCH_GENNOTES")
	viper.AutomaticEnv()

	viper.SetDefault("build", variantkey.DefaultBuild)
	viper.SetDefault("data_dir", filepath.Join(home, ".match-gennotes"))
	viper.SetDefault("clinvar.url", "https://ftp.ncbi.nlm.nih.gov/pub/clinvar/vcf_GRCh37/clinvar.vcf.gz")
	viper.SetDefault("gennotes.base_url", gennotes.DefaultBaseURL)
	viper.SetDefault("myvariant.base_url", myvariant.DefaultBaseURL)
	viper.SetDefault("openhumans.base_url", openhumans.DefaultBaseURL)
	viper.SetDefault("openhumans.source", openhumans.DefaultSource)

	// Missing config file is fine; defaults and env cover everything.
	_ = viper.ReadInConfig()
}

// newLogger builds the CLI logger.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// Paths derived from the configured data directory.

func dataDir() string {
	return viper.GetString("data_dir")
}

func clinvarDumpPath() string {
	return filepath.Join(dataDir(), "clinvar.vcf.gz")
}

func indexPath() string {
	return filepath.Join(dataDir(), "clinvar.duckdb")
}

func cachePath() string {
	return filepath.Join(dataDir(), "myvariant_cache.duckdb")
}

func userVCFDir() string {
	return filepath.Join(dataDir(), "user_vcf_data")
}

func mappedDir() string {
	return filepath.Join(dataDir(), "mapped_user_vcf")
}

func metadataPath() string {
	return filepath.Join(dataDir(), "openhumans_23andme_metadata.json")
}
