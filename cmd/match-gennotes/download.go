package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rkty13/match-gennotes/internal/openhumans"
	"github.com/rkty13/match-gennotes/internal/output"
)

func newDownloadCmd() *cobra.Command {
	var (
		clinvarOnly     bool
		individualsOnly bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the ClinVar dump and shared 23andMe VCF files",
		Long: `Download the ClinVar VCF dump and every 23andMe VCF shared through the
OpenHumans public-data API. Files already present on disk are skipped.`,
		Example: `  match-gennotes download
  match-gennotes download --clinvar-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(clinvarOnly, individualsOnly)
		},
	}

	cmd.Flags().BoolVar(&clinvarOnly, "clinvar-only", false, "only download the ClinVar dump")
	cmd.Flags().BoolVar(&individualsOnly, "individuals-only", false, "only download individual VCF files")

	return cmd
}

func runDownload(clinvarOnly, individualsOnly bool) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !individualsOnly {
		if err := downloadFile(viper.GetString("clinvar.url"), clinvarDumpPath()); err != nil {
			return fmt.Errorf("download clinvar dump: %w", err)
		}
	}
	if clinvarOnly {
		return nil
	}

	oh := openhumans.NewClient(
		viper.GetString("openhumans.base_url"),
		viper.GetString("openhumans.source"),
	)
	oh.SetLogger(logger)

	results, err := oh.ListVCF()
	if err != nil {
		return fmt.Errorf("list openhumans vcf data: %w", err)
	}

	for i := range results {
		if _, err := oh.Download(&results[i], userVCFDir()); err != nil {
			return fmt.Errorf("download %s: %w", results[i].User.Username, err)
		}
	}
	logger.Info("downloaded individual vcf data", zap.Int("individuals", len(results)))

	if err := output.WriteMetadata(metadataPath(), results); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Printf("  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	fmt.Printf("  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 30 * time.Minute, // large dump files
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Printf("    Done: %s\n", formatSize(downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Printf("\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Printf("\r    Progress: %s  ", formatSize(*pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
