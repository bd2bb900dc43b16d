// Rewrite a multistream index with 64 bit offsets.
//
// With -lists, only articles whose titles mark them as character lists
// are written, which is handy for sizing up a dump.
package main

import (
	"bufio"
	"compress/bzip2"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dustin/go-wikichars"
)

func main() {
	lists := flag.Bool("lists", false, "Only write character list articles")
	profile := flag.String("profile", "ja", "Wiki profile for -lists")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("Usage: %s [opts] index.txt[.bz2]", os.Args[0])
	}

	p, err := wikichars.ProfileByName(*profile)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	r, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error opening %v: %v", flag.Arg(0), err)
	}
	defer r.Close()

	var in io.Reader = r
	if strings.HasSuffix(flag.Arg(0), ".bz2") {
		in = bzip2.NewReader(r)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	ir := wikichars.NewIndexReader(in)
	for {
		e, err := ir.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Error reading stream:  %v", err)
		}
		if *lists && !isList(p, e.Title) {
			continue
		}
		fmt.Fprintln(w, e.String())
	}
}

func isList(p wikichars.Profile, title string) bool {
	for _, m := range p.ListMarkers {
		if strings.Contains(title, m) {
			return true
		}
	}
	return false
}
