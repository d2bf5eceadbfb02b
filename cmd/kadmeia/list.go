package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"io"
	"kadmeia/internal/domain/content"
	"kadmeia/internal/index"
	"text/tabwriter"
)

var (
	flagKind string
	flagLang string
	flagPage int
	flagSize int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries from the last build's index",
	Long:  "Without --kind, prints per kind and locale counts. With --kind, lists the entries newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := index.Open(index.OpenOptions{Path: cfg.Build.IndexPath, ReadOnly: true})
		if err != nil {
			return fmt.Errorf("open index (run build first): %w", err)
		}
		defer st.Close()

		out := cmd.OutOrStdout()
		if flagKind == "" {
			sums, err := st.Summaries()
			if err != nil {
				return err
			}
			return printSummaries(out, sums)
		}

		kind, lang, err := resolveListQuery(flagKind, flagLang)
		if err != nil {
			return err
		}
		entries, err := st.List(kind, lang, index.ListOptions{Page: flagPage, Size: flagSize})
		if err != nil {
			return err
		}
		return printEntries(out, entries)
	},
}

func init() {
	listCmd.Flags().StringVar(&flagKind, "kind", "", "post or case")
	listCmd.Flags().StringVar(&flagLang, "lang", "es", "es or en")
	listCmd.Flags().IntVar(&flagPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&flagSize, "size", 20, "page size")
}

func resolveListQuery(kind, lang string) (content.Kind, content.Lang, error) {
	k, ok := content.ParseKind(kind)
	if !ok {
		return "", "", fmt.Errorf("unknown kind %q (want post or case)", kind)
	}
	switch lang {
	case string(content.LangES), string(content.LangEN):
		return k, content.Lang(lang), nil
	}
	return "", "", fmt.Errorf("unknown lang %q (want es or en)", lang)
}

func printSummaries(w io.Writer, sums []index.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tLANG\tCOUNT\tLATEST")
	for _, s := range sums {
		latest := "-"
		if !s.Latest.IsZero() {
			latest = s.Latest.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Kind, s.Lang, s.Count, latest)
	}
	return tw.Flush()
}

func printEntries(w io.Writer, entries []content.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tURL\tTITLE")
	for _, e := range entries {
		d := "-"
		if e.HasDate() {
			d = e.Date.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d, e.URL(), e.Title)
	}
	return tw.Flush()
}
