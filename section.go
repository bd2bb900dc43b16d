package wikichars

import "strings"

// Entries holds raw character entries in the order their keys were
// first seen.  Opening a key again resets its text.
type Entries struct {
	keys []string
	text map[string]string
}

// NewEntries gets an empty set of entries.
func NewEntries() *Entries {
	return &Entries{text: map[string]string{}}
}

func (e *Entries) open(key string) {
	if _, ok := e.text[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.text[key] = ""
}

func (e *Entries) appendText(key, s string) {
	e.text[key] += s
}

// Len is the number of distinct keys.
func (e *Entries) Len() int {
	return len(e.keys)
}

// Keys lists the keys in first seen order.
func (e *Entries) Keys() []string {
	return append([]string(nil), e.keys...)
}

// Get returns the raw text for key.
func (e *Entries) Get(key string) (string, bool) {
	s, ok := e.text[key]
	return s, ok
}

// Map copies the entries into a map.
func (e *Entries) Map() map[string]string {
	rv := make(map[string]string, len(e.text))
	for k, v := range e.text {
		rv[k] = v
	}
	return rv
}

// heading parses a line of the form "== label ==".  The level is the
// shorter of the two '=' runs; balanced reports whether they match.
func heading(line string) (level int, label string, balanced, ok bool) {
	line = strings.TrimRight(line, " \t")
	lead := len(line) - len(strings.TrimLeft(line, "="))
	trail := len(line) - len(strings.TrimRight(line, "="))
	if lead == 0 || trail == 0 || lead+trail >= len(line) {
		return 0, "", false, false
	}
	level = lead
	if trail < level {
		level = trail
	}
	return level, strings.TrimSpace(line[lead : len(line)-trail]), lead == trail, true
}

// FindSections returns the body of every section headed name, in
// document order.
//
// A section runs from the line after its heading up to the next
// heading at the same or a shallower depth, or the end of body.
// Sections whose first non-blank line starts with one of stubPrefixes
// only point at another article and are skipped.
func FindSections(body, name string, stubPrefixes ...string) []string {
	lines := strings.Split(body, "\n")
	var rv []string

	for i := 0; i < len(lines); i++ {
		level, label, balanced, ok := heading(lines[i])
		if !ok || !balanced || label != name {
			continue
		}
		end := i + 1
		for ; end < len(lines); end++ {
			if l, _, _, ok := heading(lines[end]); ok && l <= level {
				break
			}
		}
		region := strings.Join(lines[i+1:end], "\n")
		if !isStub(region, stubPrefixes) {
			rv = append(rv, region)
		}
		i = end - 1
	}

	return rv
}

func isStub(region string, prefixes []string) bool {
	for _, line := range strings.Split(region, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, p := range prefixes {
			if strings.HasPrefix(line, p) {
				return true
			}
		}
		return false
	}
	return false
}

// ParseDefinitionList reads ";term" and ":description" lines from
// region into e.
//
// Each description line is appended to the open term followed by sep.
// Any other line closes the term, so descriptions after it are
// ignored until the next term line.
func ParseDefinitionList(region, sep string, e *Entries) {
	key := ""
	for _, line := range strings.Split(region, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, ";"):
			key = strings.TrimSpace(strings.ReplaceAll(line, ";", ""))
			if key != "" {
				e.open(key)
			}
		case strings.HasPrefix(line, ":"):
			if key == "" {
				continue
			}
			s := strings.TrimSpace(strings.TrimLeft(line, ":"))
			s = strings.TrimSpace(strings.TrimLeft(s, "*"))
			e.appendText(key, s+sep)
		default:
			key = ""
		}
	}
}

// LocateCharacters finds the profile's character section in body and
// parses every occurrence of it.  It returns nil if there isn't one.
func LocateCharacters(body string, p Profile) *Entries {
	if !strings.Contains(body, p.Section) {
		return nil
	}
	regions := FindSections(body, p.Section, p.StubPrefixes...)
	if len(regions) == 0 {
		return nil
	}
	e := NewEntries()
	for _, r := range regions {
		ParseDefinitionList(r, p.LineSeparator, e)
	}
	return e
}
