// Load extracted character lists into CouchDB
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"sync"

	"github.com/dustin/go-couch"

	"github.com/dustin/go-wikichars"
)

var numWorkers = flag.Int("numWorkers", 20, "Number of record workers")

var wg sync.WaitGroup

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] http://localhost:5984/chars "+
			"(dump.xml.bz2 | index.bz2 dump.xml.bz2 | records.json)\n",
		os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

type Article struct {
	ID         string            `json:"_id"`
	Rev        string            `json:"_rev,omitempty"`
	Titles     []string          `json:"titles"`
	Characters map[string]string `json:"characters"`
}

func newArticle(r *wikichars.Record) *Article {
	return &Article{
		ID:         strconv.FormatUint(r.ID, 10),
		Titles:     r.Titles,
		Characters: r.Characters,
	}
}

func resolveConflict(db *couch.Database, a *Article) {
	log.Printf("Resolving conflict on %s", a.ID)
	var prev Article
	err := db.Retrieve(a.ID, &prev)
	if err != nil {
		log.Printf("  Error retrieving existing %v: %v", a.ID, err)
		return
	}
	if prev.Rev == "" {
		log.Printf("Got no rev from %v", a.ID)
		return
	}
	if reflect.DeepEqual(prev.Titles, a.Titles) &&
		reflect.DeepEqual(prev.Characters, a.Characters) {
		return
	}
	log.Printf("  This one differs...replacing %s.", prev.Rev)
	_, err = db.EditWith(a, a.ID, prev.Rev)
	if err != nil {
		log.Printf("  Error updating %v: %v", prev.ID, err)
	}
}

func doRecord(db *couch.Database, r *wikichars.Record) {
	article := newArticle(r)

	_, _, err := db.Insert(article)
	httpe, isHttpError := err.(*couch.HTTPError)
	switch {
	case err == nil:
		// yay
	case isHttpError && httpe.Status == 409:
		resolveConflict(db, article)
	default:
		log.Printf("Error inserting %v: %v", article.ID, err)
	}
}

func recordHandler(db couch.Database, ch <-chan *wikichars.Record) {
	defer wg.Done()
	for r := range ch {
		doRecord(&db, r)
	}
}

func main() {
	profile := flag.String("profile", "ja", "Wiki profile")
	rules := flag.String("rules", "", "Extra template rules")
	flag.Parse()

	if flag.NArg() < 2 {
		usage()
	}

	db, err := couch.Connect(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error connecting to couchdb: %v", err)
	}

	cfg, err := wikichars.NewConfig(*profile, *rules)
	if err != nil {
		log.Fatalf("Error configuring: %v", err)
	}

	p, closer, err := wikichars.OpenSource(flag.Args()[1:],
		runtime.GOMAXPROCS(0), cfg)
	if err != nil {
		log.Fatalf("Error initializing parser: %v", err)
	}
	defer closer.Close()

	log.Printf("Got site info:  %+v", p.SiteInfo())

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
