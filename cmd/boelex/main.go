package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/boelex/pkg/boe"
	"github.com/coolbeans/boelex/pkg/config"
	"github.com/coolbeans/boelex/pkg/snapshot"
)

var version = "0.1.0"

const formatUsage = "Output format (text, json, yaml)"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "boelex",
		Short: "BOE article identifier and extraction engine",
		Long: `Boelex reads consolidated laws from Spain's official gazette (BOE)
and turns them into ordered article records.

It provides:
  - Resolution of Spanish numeral headings ("ciento ochenta y cuatro bis")
  - Canonical article identifiers with a total order (4 < 4 bis < 4 ter)
  - Article extraction from BOE consolidated-text pages
  - Fuzzy comparison of article texts
  - Synchronization of extracted articles with a PostgreSQL database`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("env", "", "Environment file (default .env when present)")

	rootCmd.AddCommand(numeralCmd())
	rootCmd.AddCommand(normalizeCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

// loadConfig reads --config and --env and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envPath, _ := cmd.Flags().GetString("env")

	cfg, err := config.Load(path, envPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "boelex: ", log.LstdFlags)
}

func newClient(cfg *config.Config) (*boe.Client, error) {
	client, err := boe.NewClient(cfg.BOE)
	if err != nil {
		return nil, fmt.Errorf("failed to create BOE client: %w", err)
	}
	return client, nil
}

// archiveDocument stores the page in the snapshot archive. It returns an
// empty key when archiving is disabled.
func archiveDocument(ctx context.Context, cfg *config.Config, doc *boe.Document) (string, error) {
	if !cfg.Snapshot.Enabled {
		return "", nil
	}
	archive, err := snapshot.New(ctx, cfg.Snapshot.Config)
	if err != nil {
		return "", fmt.Errorf("failed to open snapshot archive: %w", err)
	}
	key, err := archive.Put(ctx, doc.LawID, doc.FetchedAt, []byte(doc.HTML))
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", doc.LawID, err)
	}
	return key, nil
}

// writeOutput renders value in the requested format. Text output comes from
// the text callback; json and yaml share the JSON field names.
func writeOutput(w io.Writer, format string, value any, text func() string) error {
	switch format {
	case "", "text":
		_, err := fmt.Fprint(w, text())
		return err
	case "json":
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to serialize output: %w", err)
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to serialize output: %w", err)
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("failed to serialize output: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown format %q (use text, json or yaml)", format)
	}
}
