package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coolbeans/boelex/pkg/extract"
	"github.com/coolbeans/boelex/pkg/identifier"
	"github.com/coolbeans/boelex/pkg/numeral"
	"github.com/coolbeans/boelex/pkg/similarity"
)

type numeralOutput struct {
	Text     string         `json:"text"`
	Resolved string         `json:"resolved"`
	Number   int            `json:"number"`
	Suffix   numeral.Suffix `json:"suffix"`
}

func numeralCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "numeral <words...>",
		Short: "Resolve a Spanish numeral heading to an article number",
		Long: `Resolve a Spanish ordinal or cardinal phrase, with an optional Latin
suffix, to its decimal article number.

Example:
  boelex numeral ciento ochenta y cuatro
  boelex numeral "cuarto bis" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			phrase := strings.Join(args, " ")
			value, ok := numeral.ResolveValue(phrase)
			if !ok {
				return fmt.Errorf("cannot resolve %q as a Spanish numeral", phrase)
			}

			out := numeralOutput{Text: phrase, Resolved: value.String(), Number: value.Number, Suffix: value.Suffix}
			return writeOutput(cmd.OutOrStdout(), format, out, func() string {
				return value.String() + "\n"
			})
		},
	}

	cmd.Flags().StringP("format", "f", "text", formatUsage)
	return cmd
}

type normalizeOutput struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical"`
	Valid     bool   `json:"valid"`
}

func normalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <identifier...>",
		Short: "Print the canonical form of article identifiers",
		Long: `Normalize article identifiers as written by people or in headings.
Identifiers are printed in canonical form and, with --sort, in article order.

Example:
  boelex normalize 55BIS "22 quáter" 216bis2
  boelex normalize --sort "4 ter" 4 "4 bis"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			sorted, _ := cmd.Flags().GetBool("sort")

			results := make([]normalizeOutput, 0, len(args))
			for _, arg := range args {
				result := normalizeOutput{Input: arg, Canonical: identifier.NormalizeText(arg)}
				if id, err := identifier.Parse(arg); err == nil {
					result.Canonical = id.String()
					result.Valid = true
				}
				results = append(results, result)
			}
			if sorted {
				identifier.SortBy(results, func(r normalizeOutput) string { return r.Canonical })
			}

			return writeOutput(cmd.OutOrStdout(), format, results, func() string {
				var sb strings.Builder
				for _, r := range results {
					marker := ""
					if !r.Valid {
						marker = "\t(not an article identifier)"
					}
					fmt.Fprintf(&sb, "%s\t%s%s\n", r.Input, r.Canonical, marker)
				}
				return sb.String()
			})
		},
	}

	cmd.Flags().StringP("format", "f", "text", formatUsage)
	cmd.Flags().Bool("sort", false, "Sort identifiers in article order")
	return cmd
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract articles from a BOE consolidated-text page",
		Long: `Extract the articles of a BOE consolidated-text page, from a saved
file or downloaded by law identifier.

Example:
  boelex extract --source BOE-A-1994-26003.html
  boelex extract --law BOE-A-1994-26003 --article "4 bis"
  boelex extract --source page.html --skipped --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, _ := cmd.Flags().GetString("source")
			lawID, _ := cmd.Flags().GetString("law")
			articleNumber, _ := cmd.Flags().GetString("article")
			format, _ := cmd.Flags().GetString("format")
			showSkipped, _ := cmd.Flags().GetBool("skipped")

			if (sourcePath == "") == (lawID == "") {
				return fmt.Errorf("exactly one of --source or --law is required")
			}

			var document string
			if sourcePath != "" {
				data, err := os.ReadFile(sourcePath)
				if err != nil {
					return fmt.Errorf("failed to read source: %w", err)
				}
				document = string(data)
			} else {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				client, err := newClient(cfg)
				if err != nil {
					return err
				}
				doc, err := client.FetchLaw(cmd.Context(), lawID)
				if err != nil {
					return err
				}
				document = doc.HTML
			}

			out := cmd.OutOrStdout()
			if articleNumber != "" {
				record, ok := extract.FindArticle(document, articleNumber)
				if !ok {
					return fmt.Errorf("article %s not found", articleNumber)
				}
				return writeOutput(out, format, record, func() string {
					return formatArticle(record)
				})
			}

			extraction := extract.NewExtractor().ExtractDetailed(document)
			if !showSkipped {
				extraction.Skipped = nil
			}
			return writeOutput(out, format, extraction, func() string {
				return formatExtraction(extraction)
			})
		},
	}

	cmd.Flags().StringP("source", "s", "", "Saved gazette page (HTML)")
	cmd.Flags().StringP("law", "l", "", "BOE law identifier to download, e.g. BOE-A-1994-26003")
	cmd.Flags().StringP("article", "a", "", "Only print this article, e.g. \"4 bis\" or \"cuarto bis\"")
	cmd.Flags().StringP("format", "f", "text", formatUsage)
	cmd.Flags().Bool("skipped", false, "Also report containers that produced no article")
	return cmd
}

func formatArticle(record extract.ArticleRecord) string {
	var sb strings.Builder
	sb.WriteString("Artículo " + record.ArticleNumber)
	if record.Title != nil {
		sb.WriteString(". " + *record.Title)
	}
	sb.WriteString("\n\n")
	if record.Content != "" {
		sb.WriteString(record.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func formatExtraction(extraction *extract.Extraction) string {
	var sb strings.Builder
	for _, record := range extraction.Articles {
		sb.WriteString(formatArticle(record))
	}
	fmt.Fprintf(&sb, "%d articles from %d containers\n", len(extraction.Articles), extraction.Containers)
	for _, skipped := range extraction.Skipped {
		fmt.Fprintf(&sb, "  skipped %s: %s\n", skipped.BlockID, skipped.Reason)
	}
	return sb.String()
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [fileA fileB]",
		Short: "Compare two article texts",
		Long: `Decide whether two article texts carry the same legal content,
ignoring case, accents, punctuation and short words.

Example:
  boelex compare stored.txt scraped.txt
  boelex compare --a "El plazo será de un mes." --b "el plazo sera de un mes"`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			textA, _ := cmd.Flags().GetString("a")
			textB, _ := cmd.Flags().GetString("b")
			format, _ := cmd.Flags().GetString("format")

			switch {
			case len(args) == 2:
				dataA, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[0], err)
				}
				dataB, err := os.ReadFile(args[1])
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[1], err)
				}
				textA, textB = string(dataA), string(dataB)
			case len(args) == 0 && cmd.Flags().Changed("a") && cmd.Flags().Changed("b"):
			default:
				return fmt.Errorf("provide two files or both --a and --b")
			}

			result := similarity.CompareContent(textA, textB)
			return writeOutput(cmd.OutOrStdout(), format, result, func() string {
				return fmt.Sprintf("match: %t\nsimilarity: %d\n", result.Match, result.Similarity)
			})
		},
	}

	cmd.Flags().String("a", "", "First text")
	cmd.Flags().String("b", "", "Second text")
	cmd.Flags().StringP("format", "f", "text", formatUsage)
	return cmd
}
