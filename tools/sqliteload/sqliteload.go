// Load extracted character lists into a SQLite database
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/dustin/go-wikichars"
)

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] (dump.xml.bz2 | index.bz2 dump.xml.bz2 | records.json)\n",
		os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	dbPath := flag.String("db", "characters.db", "SQLite database path")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "Number of multistream workers")
	profile := flag.String("profile", "ja", "Wiki profile")
	rules := flag.String("rules", "", "Extra template rules")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
	}

	store, err := OpenStore(*dbPath)
	if err != nil {
		log.Fatalf("Error opening %v: %v", *dbPath, err)
	}
	defer store.Close()

	cfg, err := wikichars.NewConfig(*profile, *rules)
	if err != nil {
		log.Fatalf("Error configuring: %v", err)
	}

	p, closer, err := wikichars.OpenSource(flag.Args(), *workers, cfg)
	if err != nil {
		log.Fatalf("Error setting up parser:  %v", err)
	}
	defer closer.Close()

	log.Printf("Got site info:  %+v", p.SiteInfo())

	if _, err := wikichars.Drain(p, 1000, nil, store.Put); err != nil {
		log.Fatalf("Error loading records: %v", err)
	}
}
