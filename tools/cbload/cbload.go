// Load extracted character lists into CouchBase
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/couchbase/go-couchbase"

	"github.com/dustin/go-wikichars"
)

var numWorkers = flag.Int("numWorkers", 8, "Number of record workers")

var wg sync.WaitGroup

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

type Article struct {
	Titles     []string          `json:"titles"`
	Characters map[string]string `json:"characters"`
}

func doRecord(db *couchbase.Bucket, r *wikichars.Record) {
	article := Article{Titles: r.Titles, Characters: r.Characters}
	key := strconv.FormatUint(r.ID, 10)

	err := db.Set(key, 0, article)
	if err != nil {
		log.Printf("Error setting %v: %v", key, err)
		return
	}
}

func recordHandler(db *couchbase.Bucket, ch <-chan *wikichars.Record) {
	defer wg.Done()
	for r := range ch {
		doRecord(db, r)
	}
}

func main() {
	couchbaseServer := flag.String("couchbase", "http://localhost:8091/",
		"Couchbase URL")
	couchbaseBucket := flag.String("bucket", "default", "Couchbase bucket")
	procs := flag.Int("cpus", runtime.NumCPU(), "Number of CPUS to use")
	profile := flag.String("profile", "ja", "Wiki profile")
	rules := flag.String("rules", "", "Extra template rules")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
	}

	runtime.GOMAXPROCS(*procs)

	db, err := couchbase.GetBucket(*couchbaseServer,
		"default", *couchbaseBucket)
	if err != nil {
		log.Fatalf("Error connecting to couchbase: %v", err)
	}
	defer db.Close()

	cfg, err := wikichars.NewConfig(*profile, *rules)
	if err != nil {
		log.Fatalf("Error configuring: %v", err)
	}

	p, closer, err := wikichars.OpenSource(flag.Args(),
		runtime.GOMAXPROCS(0), cfg)
	if err != nil {
		log.Fatalf("Error initializing parser: %v", err)
	}
	defer closer.Close()

	ch := make(chan *wikichars.Record, 1000)

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go recordHandler(db, ch)
	}

	_, err = wikichars.Drain(p, 1000, nil, func(r *wikichars.Record) error {
		ch <- r
		return nil
	})
	close(ch)
	wg.Wait()
	if err != nil {
		log.Fatalf("Error extracting records: %v", err)
	}
}
