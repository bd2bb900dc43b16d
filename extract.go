package wikichars

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// ErrMissingElement is reported for an article lacking an id, title
// or text element.
var ErrMissingElement = errors.New("missing required element")

// A MalformedIDError is reported for an article whose id isn't a
// number.  The article is skipped.
type MalformedIDError struct {
	Raw string
	Err error
}

func (e *MalformedIDError) Error() string {
	return fmt.Sprintf("malformed article id %q: %v", e.Raw, e.Err)
}

func (e *MalformedIDError) Unwrap() error {
	return e.Err
}

// A DuplicateIDError is returned when an article id shows up twice in
// one run.  It's fatal; there's no telling which article is right.
type DuplicateIDError struct {
	ID    uint64
	Title string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate article id %d (%q)", e.ID, e.Title)
}

type extractState int

const (
	stateIdle extractState = iota
	stateInPage
	stateID
	stateTitle
	stateBody
)

var stateElements = map[extractState]string{
	stateID:    "id",
	stateTitle: "title",
	stateBody:  "text",
}

// An Extractor pulls character list records out of a stream of dump
// events.  Only one article is held in memory at a time.
type Extractor struct {
	src      EventSource
	builder  *Builder
	ids      *IDSet
	log      *log.Logger
	onSkip   func(*Page, error)
	maxPages int

	state     extractState
	buf       strings.Builder
	page      Page
	haveID    bool
	haveTitle bool
	haveBody  bool
	idErr     error
	articles  int
}

// Next gets the next record.  It returns io.EOF when the stream is
// exhausted, and a *DuplicateIDError if an article id repeats.
func (x *Extractor) Next() (*Record, error) {
	for {
		if x.maxPages > 0 && x.articles >= x.maxPages && x.state == stateIdle {
			return nil, io.EOF
		}
		ev, err := x.src.NextEvent()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case Enter:
			x.enter(ev.Name)
		case Text:
			if x.state >= stateID {
				x.buf.WriteString(ev.Text)
			}
		case Exit:
			rec, err := x.exit(ev.Name)
			if err != nil || rec != nil {
				return rec, err
			}
		}
	}
}

// Articles is the number of complete articles seen so far.
func (x *Extractor) Articles() int {
	return x.articles
}

// SiteInfo returns the site info of the dump, if the event source
// knows it.
func (x *Extractor) SiteInfo() SiteInfo {
	if s, ok := x.src.(interface{ SiteInfo() SiteInfo }); ok {
		return s.SiteInfo()
	}
	return SiteInfo{}
}

func (x *Extractor) collect(s extractState) {
	x.state = s
	x.buf.Reset()
}

func (x *Extractor) enter(name string) {
	if name == "page" {
		x.page = Page{}
		x.haveID, x.haveTitle, x.haveBody = false, false, false
		x.idErr = nil
		x.state = stateInPage
		return
	}
	if x.state != stateInPage {
		return
	}
	// Revisions and contributors have ids and texts of their own.
	// Only the first of each counts.
	switch {
	case name == "id" && !x.haveID:
		x.collect(stateID)
	case name == "title" && !x.haveTitle:
		x.collect(stateTitle)
	case name == "text" && !x.haveBody:
		x.collect(stateBody)
	}
}

func (x *Extractor) exit(name string) (*Record, error) {
	if el, ok := stateElements[x.state]; ok && el == name {
		s := x.buf.String()
		x.buf.Reset()
		switch x.state {
		case stateID:
			x.haveID = true
			id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
			if err != nil {
				x.idErr = &MalformedIDError{Raw: s, Err: err}
			}
			x.page.ID = id
		case stateTitle:
			x.haveTitle = true
			x.page.Title = s
		case stateBody:
			x.haveBody = true
			x.page.Text = s
			x.state = stateInPage
			return x.finish()
		}
		x.state = stateInPage
		return nil, nil
	}

	if name == "page" && x.state != stateIdle {
		x.articles++
		if !x.haveBody {
			x.skip(fmt.Errorf("%w: text", ErrMissingElement))
		}
		x.state = stateIdle
	}
	return nil, nil
}

func (x *Extractor) finish() (*Record, error) {
	switch {
	case x.idErr != nil:
		x.skip(x.idErr)
		return nil, nil
	case !x.haveID:
		x.skip(fmt.Errorf("%w: id", ErrMissingElement))
		return nil, nil
	case !x.haveTitle:
		x.skip(fmt.Errorf("%w: title", ErrMissingElement))
		return nil, nil
	}

	rec := x.builder.Build(&x.page)
	if rec == nil {
		return nil, nil
	}
	if x.ids != nil && !x.ids.Add(rec.ID) {
		return nil, &DuplicateIDError{ID: rec.ID, Title: x.page.Title}
	}
	return rec, nil
}

func (x *Extractor) skip(err error) {
	x.log.Printf("Skipping article %q: %v", x.page.Title, err)
	if x.onSkip != nil {
		p := x.page
		x.onSkip(&p, err)
	}
}
