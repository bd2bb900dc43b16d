// Extract character lists from a wikipedia dump.
package main

import (
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dustin/go-wikichars"
)

var (
	indexFile   string
	numWorkers  int
	profileName string
	rulesFile   string
	outputFile  string
	format      string
	templates   string
	errorsFile  string
	reportTop   int
	reportEvery int64
)

var rootCmd = &cobra.Command{
	Use:   "charextract [flags] dump.xml[.bz2]",
	Short: "Extract character lists from a wikipedia dump",
	Long: `Reads a MediaWiki xml dump and writes a record for every article
that lists the characters of a work: its id, its titles and each
character's description, all reduced to plain text.

With --index, the dump is read as a multistream dump by a pool of
workers and records come out in no particular order.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExtract,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&indexFile, "index", "", "multistream index for the dump")
	f.IntVar(&numWorkers, "workers", runtime.GOMAXPROCS(0), "number of multistream workers")
	f.StringVar(&profileName, "profile", "ja", "wiki profile (ja or zh)")
	f.StringVar(&rulesFile, "rules", "", "yaml file of extra template rules")
	f.StringVarP(&outputFile, "output", "o", "-", "where to write records")
	f.StringVar(&format, "format", "json", "record format (json or jsonl)")
	f.StringVar(&templates, "templates", "template_names.json",
		"where to write unresolved template counts (empty to skip)")
	f.StringVar(&errorsFile, "errors", "", "gob file of skipped articles")
	f.IntVarP(&reportTop, "report", "n", 0, "log the top n unresolved templates")
	f.Int64Var(&reportEvery, "report-every", 1000, "log progress every this many records")
}

func create(fn string) (io.WriteCloser, error) {
	if fn == "-" {
		return os.Stdout, nil
	}
	return os.Create(fn)
}

// errorHandler gobs every skipped article so it can be looked at
// later.
func errorHandler(fn string) (func(*wikichars.Page, error), io.Closer, error) {
	f, err := os.Create(fn)
	if err != nil {
		return nil, nil, fmt.Errorf("creating error file: %w", err)
	}
	g := gob.NewEncoder(f)
	return func(p *wikichars.Page, _ error) {
		if err := g.Encode(p); err != nil {
			log.Printf("Error gobbing page %q: %v", p.Title, err)
		}
	}, f, nil
}

func lockedSkip(f func(*wikichars.Page, error)) func(*wikichars.Page, error) {
	var mu sync.Mutex
	return func(p *wikichars.Page, err error) {
		mu.Lock()
		defer mu.Unlock()
		f(p, err)
	}
}

func writeTemplates(fn string, stats *wikichars.TemplateStats) error {
	if fn == "" {
		return nil
	}
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := wikichars.WriteTemplateStats(f, stats); err != nil {
		f.Close()
		return fmt.Errorf("writing %v: %w", fn, err)
	}
	return f.Close()
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := wikichars.NewConfig(profileName, rulesFile)
	if err != nil {
		return err
	}

	if errorsFile != "" {
		onSkip, c, err := errorHandler(errorsFile)
		if err != nil {
			return err
		}
		defer c.Close()
		// Multistream workers skip concurrently.
		if indexFile != "" {
			onSkip = lockedSkip(onSkip)
		}
		cfg.OnSkip = onSkip
	}

	paths := args
	if indexFile != "" {
		paths = []string{indexFile, args[0]}
	}
	src, closer, err := wikichars.OpenSource(paths, numWorkers, cfg)
	if err != nil {
		return fmt.Errorf("opening %v: %w", paths, err)
	}
	defer closer.Close()

	log.Printf("Got site info:  %+v", src.SiteInfo())

	out, err := create(outputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	w, err := wikichars.NewRecordWriter(format, out)
	if err != nil {
		return err
	}

	_, err = wikichars.Drain(src, reportEvery, nil, w.Write)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	// The counts so far are kept even when the run fails.
	if terr := writeTemplates(templates, cfg.Stats); err == nil {
		err = terr
	}
	if err != nil {
		return err
	}

	if reportTop > 0 {
		return cfg.Stats.Report(os.Stderr, reportTop)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
