package main

import (
	"flag"
	"log"
	"runtime"
	"sort"
	"sync"

	"gopkg.in/mgo.v2"

	"github.com/dustin/go-wikichars"
)

var proc = flag.Int("proc", 8, "How many processes to run.")
var cpus = flag.Int("cpus", runtime.NumCPU(), "Number of CPUs to use.")
var dburl = flag.String("dburl", "localhost", "The dburl(s). I.e. localhost.")
var verbose = flag.Bool("v", false, "Verbose logging?")
var collection = flag.String("collection", "characters", "The collection to store records in.")
var dbname = flag.String("dbname", "wp", "The database name to use.")
var profile = flag.String("profile", "ja", "Wiki profile.")
var rules = flag.String("rules", "", "Extra template rules.")

var wg sync.WaitGroup

// Look up works by any of their titles.
var titleIndex = mgo.Index{
	Key:        []string{"titles"},
	Background: true,
}

// Mongo won't have dots in keys, and character names have plenty.
type character struct {
	Name        string `bson:"name"`
	Description string `bson:"description"`
}

type article struct {
	ID         uint64      `bson:"_id"`
	Titles     []string    `bson:"titles"`
	Characters []character `bson:"characters"`
}

func newArticle(r *wikichars.Record) *article {
	a := &article{ID: r.ID, Titles: r.Titles}
	for k, v := range r.Characters {
		a.Characters = append(a.Characters, character{k, v})
	}
	sort.Slice(a.Characters, func(i, j int) bool {
		return a.Characters[i].Name < a.Characters[j].Name
	})
	return a
}

func recordHandler(db *mgo.Database, ch <-chan *wikichars.Record) {
	for r := range ch {
		makeArticle(db, r)
	}
}

func makeArticle(db *mgo.Database, r *wikichars.Record) {
	defer wg.Done()
	a := newArticle(r)
	err := db.C(*collection).Insert(a)
	if err != nil {
		if mgo.IsDup(err) {
			if *verbose {
				log.Printf("Duplicate Key Error inserting %d", a.ID)
			}
		} else {
			log.Printf("Error inserting %d: %s", a.ID, err)
		}
	}
}

func processRecords(p wikichars.RecordSource, db *mgo.Database) {
	ch := make(chan *wikichars.Record, 1000)
	for i := 0; i < *proc; i++ {
		go recordHandler(db, ch)
	}

	_, err := wikichars.Drain(p, 10000, nil, func(r *wikichars.Record) error {
		wg.Add(1)
		ch <- r
		return nil
	})
	wg.Wait()
	close(ch)

	if err != nil {
		log.Fatalf("Error extracting records: %v", err)
	}
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("You must supply a dump, an index and dump, or a record file.")
	}
	runtime.GOMAXPROCS(*cpus)

	session, err := mgo.Dial(*dburl)
	if err != nil {
		panic(err)
	}
	defer session.Close()

	cfg, err := wikichars.NewConfig(*profile, *rules)
	if err != nil {
		log.Fatalf("Error configuring: %v", err)
	}

	p, closer, err := wikichars.OpenSource(flag.Args(), runtime.GOMAXPROCS(0), cfg)
	if err != nil {
		log.Fatalf("Error setting up parser:  %v", err)
	}
	defer closer.Close()

	err = session.DB(*dbname).C(*collection).EnsureIndex(titleIndex)
	if err != nil {
		log.Fatal("Error creating title index", err)
	}
	processRecords(p, session.DB(*dbname))
}
