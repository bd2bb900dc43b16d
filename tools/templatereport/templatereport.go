// Print the unresolved template tables of one or more extraction runs,
// most frequent first.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-wikichars"
)

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] template_names.json [...]\n",
		os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func load(fn string) (*wikichars.TemplateStats, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return wikichars.LoadTemplateStats(f)
}

func main() {
	top := flag.Int("n", 50, "How many templates to show (0 for all)")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
	}

	total := wikichars.NewTemplateStats()
	for _, fn := range flag.Args() {
		t, err := load(fn)
		if err != nil {
			log.Fatalf("Error loading %v: %v", fn, err)
		}
		total.Merge(t.Snapshot())
	}

	if err := total.Report(os.Stdout, *top); err != nil {
		log.Fatalf("Error writing report: %v", err)
	}
}
