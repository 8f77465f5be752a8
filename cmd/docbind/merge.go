package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docbind/internal/exhibit"
	"github.com/dgallion1/docbind/internal/pipeline"
	"github.com/dgallion1/docbind/internal/render"
)

var (
	mergeOutput      string
	mergeSortBy      string
	mergeNoBookmarks bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge <descriptors.json>",
	Short: "Bind the documents listed in a JSON file into one PDF",
	Long: `Fetch every document listed in a JSON file, bind them and write the
result to a local file. The exhibit list is printed as Markdown.

The file holds either {"documents": [...]} or a bare array of
{"order", "section", "title", "pdf_url"} objects. Use "-" to read stdin.

Examples:
  docbind merge exhibits.json -o binder.pdf
  docbind merge exhibits.json --sort-by label`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(nil)
		if err != nil {
			return err
		}
		if mergeNoBookmarks {
			cfg.Bookmarks = false
		}

		in := cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		req, err := pipeline.DecodeRequest(in)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if mergeSortBy != "" {
			if req.SortMode, err = exhibit.ParseSortMode(mergeSortBy); err != nil {
				return err
			}
		}

		merger := pipeline.New(newFetcher(cfg, log), nil, log, mergerOptions(cfg))
		out, err := merger.Build(cmd.Context(), req)
		if err != nil {
			return err
		}

		path := mergeOutput
		if path == "" {
			path = out.ID + ".pdf"
		}
		if err := os.WriteFile(path, out.Data, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprint(w, exhibit.Markdown(render.IndexTitle, out.Entries))
		fmt.Fprintf(w, "\nWrote %s (%d pages)\n", path, out.Pages)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "output file (default: <id>.pdf)")
	mergeCmd.Flags().StringVar(&mergeSortBy, "sort-by", "", "sort mode: order or label (overrides the file and DOCBIND_SORT_MODE)")
	mergeCmd.Flags().BoolVar(&mergeNoBookmarks, "no-bookmarks", false, "do not add a PDF outline")
}
