// Load extracted character lists into ElasticSearch
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/dustin/go-elasticsearch"

	"github.com/dustin/go-wikichars"
)

var (
	esIndex    = flag.String("index", "wikichars", "ElasticSearch index")
	numWorkers = flag.Int("numWorkers", 4, "Number of bulk loaders")
	batchSize  = flag.Int("batch", 1000, "Records per bulk batch")
)

var wg = sync.WaitGroup{}

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] http://localhost:9200/ "+
			"(dump.xml.bz2 | index.bz2 dump.xml.bz2 | records.json)\n",
		os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

// Character names are keys of the record, which makes for an
// unbounded mapping.  They're indexed as a list instead.
type character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func body(r *wikichars.Record) map[string]interface{} {
	chars := make([]character, 0, len(r.Characters))
	for k, v := range r.Characters {
		chars = append(chars, character{k, v})
	}
	return map[string]interface{}{
		"titles":     r.Titles,
		"characters": chars,
	}
}

func recordHandler(u string, ch <-chan *wikichars.Record) {
	defer wg.Done()
	counter := 0
	es := elasticsearch.ElasticSearch{URL: u}
	bulkLoader := es.Bulk()

	for r := range ch {
		counter++
		if counter > *batchSize {
			bulkLoader.SendBatch()
			counter = 0
		}
		ui := elasticsearch.UpdateInstruction{
			Id:    strconv.FormatUint(r.ID, 10),
			Index: *esIndex,
			Type:  "article",
			Body:  body(r),
		}
		bulkLoader.Update(&ui)
	}
	bulkLoader.Quit()
}

func main() {
	profile := flag.String("profile", "ja", "Wiki profile")
	rules := flag.String("rules", "", "Extra template rules")
	flag.Parse()

	if flag.NArg() < 2 {
		usage()
	}
	esurl := flag.Arg(0)

	cfg, err := wikichars.NewConfig(*profile, *rules)
	if err != nil {
		log.Fatalf("Error configuring: %v", err)
	}

	p, closer, err := wikichars.OpenSource(flag.Args()[1:],
		runtime.GOMAXPROCS(0), cfg)
	if err != nil {
		log.Fatalf("Error setting up parser:  %v", err)
	}
	defer closer.Close()

	log.Printf("Got site info:  %+v", p.SiteInfo())

	ch := make(chan *wikichars.Record, 1000)

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go recordHandler(esurl, ch)
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
