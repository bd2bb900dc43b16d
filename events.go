package wikichars

import (
	"encoding/xml"
	"io"
)

// EventKind says what happened in the structural event stream.
type EventKind int

const (
	// Enter marks the start of an element.
	Enter EventKind = iota
	// Text carries a fragment of an element's character data.
	Text
	// Exit marks the end of an element.
	Exit
)

func (k EventKind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Text:
		return "text"
	case Exit:
		return "exit"
	}
	return "unknown"
}

// An Event is one step through a dump.
//
// Text events are tagged with the name of the element they occur in.
// A single element's text may be split across any number of them.
type Event struct {
	Kind EventKind
	Name string
	Text string
}

// An EventSource emits the structural events of a dump in document
// order.  It returns io.EOF when the dump is exhausted.
type EventSource interface {
	NextEvent() (Event, error)
}

// The toplevel site info describing basic dump properties.
type SiteInfo struct {
	SiteName   string `xml:"sitename"`
	DBName     string `xml:"dbname"`
	Base       string `xml:"base"`
	Generator  string `xml:"generator"`
	Case       string `xml:"case"`
	Namespaces []struct {
		Key   string `xml:"key,attr"`
		Case  string `xml:"case,attr"`
		Value string `xml:",chardata"`
	} `xml:"namespaces>namespace"`
}

// XMLEvents turns an xml token stream into Events.
type XMLEvents struct {
	d        *xml.Decoder
	stack    []string
	siteInfo SiteInfo
}

// NewXMLEvents gets an event source reading xml from the given reader.
//
// The <siteinfo> block, wherever it shows up, is decoded whole and
// made available through SiteInfo rather than emitted as events.
func NewXMLEvents(r io.Reader) *XMLEvents {
	return &XMLEvents{d: xml.NewDecoder(r)}
}

// SiteInfo returns whatever site info has been read so far.
func (x *XMLEvents) SiteInfo() SiteInfo {
	return x.siteInfo
}

// NextEvent gets the next event from the underlying decoder.
func (x *XMLEvents) NextEvent() (Event, error) {
	for {
		t, err := x.d.Token()
		if err != nil {
			return Event{}, err
		}
		switch tok := t.(type) {
		case xml.StartElement:
			if tok.Name.Local == "siteinfo" {
				if err := x.d.DecodeElement(&x.siteInfo, &tok); err != nil {
					return Event{}, err
				}
				continue
			}
			x.stack = append(x.stack, tok.Name.Local)
			return Event{Kind: Enter, Name: tok.Name.Local}, nil
		case xml.EndElement:
			if len(x.stack) > 0 {
				x.stack = x.stack[:len(x.stack)-1]
			}
			return Event{Kind: Exit, Name: tok.Name.Local}, nil
		case xml.CharData:
			if len(x.stack) == 0 {
				continue
			}
			return Event{
				Kind: Text,
				Name: x.stack[len(x.stack)-1],
				Text: string(tok),
			}, nil
		}
	}
}
