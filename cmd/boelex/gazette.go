package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coolbeans/boelex/pkg/api"
	"github.com/coolbeans/boelex/pkg/boe"
	"github.com/coolbeans/boelex/pkg/config"
	"github.com/coolbeans/boelex/pkg/extract"
	"github.com/coolbeans/boelex/pkg/reconcile"
	"github.com/coolbeans/boelex/pkg/store"
	"github.com/coolbeans/boelex/pkg/watch"
)

const shutdownTimeout = 10 * time.Second

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a consolidated law from the BOE",
		Long: `Download the consolidated-text page of a law. The page is archived
when snapshots are enabled in the configuration.

Example:
  boelex fetch --law BOE-A-1994-26003 --out lau.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lawID, _ := cmd.Flags().GetString("law")
			outPath, _ := cmd.Flags().GetString("out")
			if lawID == "" {
				return fmt.Errorf("--law flag is required")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			doc, err := client.FetchLaw(ctx, lawID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(doc.HTML), 0644); err != nil {
					return fmt.Errorf("failed to write page: %w", err)
				}
				fmt.Fprintf(out, "Saved %s to %s\n", doc.LawID, outPath)
			}

			fmt.Fprintf(out, "Law:      %s\n", doc.LawID)
			if title := doc.Title(); title != "" {
				fmt.Fprintf(out, "Title:    %s\n", title)
			}
			fmt.Fprintf(out, "URL:      %s\n", doc.URL)
			fmt.Fprintf(out, "Size:     %d bytes\n", len(doc.HTML))
			fmt.Fprintf(out, "Cached:   %t\n", doc.Cached)
			fmt.Fprintf(out, "Articles: %d\n", len(doc.Articles()))

			key, err := archiveDocument(ctx, cfg, doc)
			if err != nil {
				return err
			}
			if key != "" {
				fmt.Fprintf(out, "Snapshot: %s\n", key)
			}
			return nil
		},
	}

	cmd.Flags().StringP("law", "l", "", "BOE law identifier, e.g. BOE-A-1994-26003")
	cmd.Flags().StringP("out", "o", "", "Write the page to this file")
	return cmd
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile a law's articles with the database",
		Long: `Download a law, extract its articles and compare them with the
articles stored in PostgreSQL. Added and modified articles are written
back unless --dry-run is set; --prune also deletes stored articles that
are no longer on the page.

Example:
  boelex sync --law BOE-A-1994-26003 --dry-run
  boelex sync --law BOE-A-1994-26003 --prune --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lawID, _ := cmd.Flags().GetString("law")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			prune, _ := cmd.Flags().GetBool("prune")
			verbose, _ := cmd.Flags().GetBool("verbose")
			format, _ := cmd.Flags().GetString("format")
			if lawID == "" {
				return fmt.Errorf("--law flag is required")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			databaseURL, err := cfg.DatabaseURL()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr())

			ctx := cmd.Context()
			doc, err := client.FetchLaw(ctx, lawID)
			if err != nil {
				return err
			}
			scraped := doc.Articles()
			logger.Printf("extracted %d articles from %s", len(scraped), doc.URL)

			db, err := store.Open(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Initialize(ctx); err != nil {
				return err
			}

			stored, err := db.StoredArticles(ctx, doc.LawID)
			if err != nil && !errors.Is(err, store.ErrLawNotFound) {
				return err
			}
			report := reconcile.Reconcile(scraped, stored)

			if err := writeOutput(cmd.OutOrStdout(), format, report, func() string {
				return report.FormatTable(verbose)
			}); err != nil {
				return err
			}

			if dryRun {
				logger.Printf("dry run: database not modified")
				return nil
			}
			return applyReport(ctx, cfg, db, doc, report, prune, logger)
		},
	}

	cmd.Flags().StringP("law", "l", "", "BOE law identifier, e.g. BOE-A-1994-26003")
	cmd.Flags().Bool("dry-run", false, "Report differences without writing to the database")
	cmd.Flags().Bool("prune", false, "Delete stored articles that are no longer published")
	cmd.Flags().BoolP("verbose", "v", false, "List unchanged articles too")
	cmd.Flags().StringP("format", "f", "text", formatUsage)
	return cmd
}

// applyReport writes the reconciliation back to the database and records the
// archived page.
func applyReport(ctx context.Context, cfg *config.Config, db *store.Store, doc *boe.Document, report *reconcile.Report, prune bool, logger *log.Logger) error {
	lawID, err := db.EnsureLaw(ctx, doc.LawID, doc.Title())
	if err != nil {
		return err
	}

	if changed := report.Changed(); len(changed) > 0 {
		written, err := db.UpsertArticles(ctx, lawID, changed)
		if err != nil {
			return err
		}
		logger.Printf("wrote %d articles", written)
	}

	if removed := report.RemovedNumbers(); prune && len(removed) > 0 {
		deleted, err := db.DeleteArticles(ctx, lawID, removed)
		if err != nil {
			return err
		}
		logger.Printf("deleted %d articles: %s", deleted, strings.Join(removed, ", "))
	}

	key, err := archiveDocument(ctx, cfg, doc)
	if err != nil {
		return err
	}
	if key != "" {
		logger.Printf("archived page as %s", key)
	}
	return db.RecordSnapshot(ctx, lawID, key, doc.FetchedAt)
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-extract saved gazette pages when they change",
		Long: `Watch a directory of saved BOE pages (.html, .htm) and print the
articles of each page whenever it is created or rewritten.

Example:
  boelex watch --dir ./pages`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Watch.Dir
			}

			logger := newLogger(cmd.ErrOrStderr())
			out := cmd.OutOrStdout()
			handler := func(path string, records []extract.ArticleRecord) {
				numbers := make([]string, len(records))
				for i, record := range records {
					numbers[i] = record.ArticleNumber
				}
				fmt.Fprintf(out, "%s: %d articles [%s]\n", path, len(records), strings.Join(numbers, ", "))
			}

			watcher := watch.New(dir, handler, watch.WithLogger(logger), watch.WithDebounce(cfg.Watch.Debounce))
			processed, err := watcher.Scan()
			if err != nil {
				return err
			}
			logger.Printf("scanned %d pages in %s", processed, dir)

			if err := watcher.Start(); err != nil {
				return err
			}
			defer watcher.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Printf("watching %s (Ctrl+C to stop)", dir)
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringP("dir", "d", "", "Directory to watch (default from configuration)")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the engine over HTTP. Law endpoints download pages from the BOE;
reconciliation also needs a database (BOELEX_DATABASE_URL).

Example:
  boelex serve --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := api.Options{
				Fetcher:      client,
				Logger:       logger,
				Mode:         cfg.Server.Mode,
				MaxBodyBytes: cfg.BOE.MaxBodyBytes,
			}
			if databaseURL, err := cfg.DatabaseURL(); err == nil {
				db, err := store.Open(ctx, databaseURL)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.Initialize(ctx); err != nil {
					return err
				}
				opts.Articles = db
			} else {
				logger.Printf("warning: %v; reconcile endpoint disabled", err)
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(opts),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errChan := make(chan error, 1)
			go func() {
				logger.Printf("server starting on %s", addr)
				errChan <- server.ListenAndServe()
			}()

			select {
			case err := <-errChan:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Printf("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from configuration, or :$PORT)")
	return cmd
}
