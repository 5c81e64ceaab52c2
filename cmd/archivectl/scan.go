package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"xr-archive/internal/archive"
	"xr-archive/internal/storage"
)

func init() {
	cmdRoot.AddCommand(cmdScan())
}

type scanReport struct {
	Total      int                `json:"total"`
	Ignored    int                `json:"ignored"`
	Categories archive.Categories `json:"categories"`
	Tracks     []scannedTrack     `json:"tracks"`
}

type scannedTrack struct {
	archive.Track
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

func cmdScan() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Parse a folder of .wav files and print tracks and categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				category, _  = cmd.Flags().GetString("category")
				search, _    = cmd.Flags().GetString("search")
				asJSON, _    = cmd.Flags().GetBool("json")
				vocabPath, _ = cmd.Flags().GetString("vocabulary")
			)

			vocab := archive.DefaultVocabulary()
			if vocabPath != "" {
				v, err := archive.LoadVocabulary(vocabPath)
				if err != nil {
					return err
				}
				vocab = v
			}

			report, err := scan(args[0], vocab, archive.Query{Category: category, Search: search})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringP("category", "c", archive.AllCategory, "Only show tracks carrying this tag")
	cmd.Flags().StringP("search", "s", "", "Only show titles containing this text")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	cmd.Flags().String("vocabulary", "", "YAML vocabulary file (instruments, gradients, mood_limit)")
	return cmd
}

func scan(dir string, vocab archive.Vocabulary, q archive.Query) (scanReport, error) {
	if fi, err := os.Stat(dir); err != nil {
		return scanReport{}, err
	} else if !fi.IsDir() {
		return scanReport{}, fmt.Errorf("%s is not a directory", dir)
	}

	store := storage.NewClient(storage.NewLocalProvider(dir), "", nil)
	objects, err := store.ListLibrary("")
	if err != nil {
		return scanReport{}, err
	}

	parser := archive.NewParser(vocab, nil)
	var tracks []archive.Track
	keys := make(map[string]string)
	ignored := 0
	for _, info := range objects {
		name := path.Base(info.Key)
		if !archive.IsImportable(name) {
			ignored++
			continue
		}
		t := parser.Parse(archive.Source{Name: name, Payload: store.LibraryObject(info)})
		keys[t.ID] = info.Key
		tracks = append(tracks, t)
	}

	report := scanReport{
		Total:      len(tracks),
		Ignored:    ignored,
		Categories: archive.NewCategorizer(vocab).Categorize(tracks),
		Tracks:     []scannedTrack{},
	}
	for _, t := range archive.Filter(tracks, q) {
		report.Tracks = append(report.Tracks, scannedTrack{Track: t, Key: keys[t.ID], Size: t.Blob.Size()})
	}
	return report, nil
}

func printReport(w io.Writer, r scanReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tTAGS\tGRADIENT\tSIZE\tFILE")
	for _, t := range r.Tracks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.Title, strings.Join(t.Features, ", "), t.Gradient, humanize.Bytes(uint64(t.Size)), t.Key)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d of %d tracks shown, %d files ignored\n", len(r.Tracks), r.Total, r.Ignored)
	fmt.Fprintf(w, "Instruments: %s\n", strings.Join(r.Categories.Instruments, ", "))
	fmt.Fprintf(w, "Moods:       %s\n", strings.Join(r.Categories.Moods, ", "))
}
