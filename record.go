package wikichars

import (
	"regexp"
	"strings"
)

// A Record is the extracted character list of one article.
type Record struct {
	ID         uint64            `json:"id"`
	Titles     []string          `json:"titles"`
	Characters map[string]string `json:"characters"`
}

// A Page is the raw material of a Record.
type Page struct {
	ID    uint64
	Title string
	Text  string
}

var wholeLinkRE = regexp.MustCompile(`^\[\[([^|\]]*)\|[^\]]*\]\]$`)

// A Builder turns pages into records.
type Builder struct {
	profile Profile
	norm    *Normalizer
	canon   *Canonicalizer
	titleRE *regexp.Regexp
}

// NewBuilder gets a Builder for the given profile.
func NewBuilder(p Profile, n *Normalizer) *Builder {
	if n == nil {
		n = NewNormalizer(nil, nil, nil)
	}
	b := &Builder{
		profile: p,
		norm:    n,
		canon:   NewCanonicalizer(p, n),
	}
	if len(p.TitleFields) > 0 {
		fields := make([]string, len(p.TitleFields))
		for i, f := range p.TitleFields {
			fields[i] = regexp.QuoteMeta(f)
		}
		b.titleRE = regexp.MustCompile(`\|\s*(?:` + strings.Join(fields, "|") +
			`)\s*=[ \t]*([^\n]*)`)
	}
	return b
}

// characters finds the raw character entries of a page, and the title
// the page's titles should be based on.
func (b *Builder) characters(p *Page) (*Entries, string) {
	for _, m := range b.profile.ListMarkers {
		if i := strings.Index(p.Title, m); i >= 0 {
			e := NewEntries()
			ParseDefinitionList(p.Text, b.profile.LineSeparator, e)
			return e, p.Title[:i]
		}
	}
	return LocateCharacters(p.Text, b.profile), p.Title
}

// Build makes a record of a page.  It returns nil if the page has no
// characters worth keeping.
func (b *Builder) Build(p *Page) *Record {
	raw, base := b.characters(p)
	if raw == nil || raw.Len() == 0 {
		return nil
	}

	chars := map[string]string{}
	for _, k := range raw.Keys() {
		key := b.norm.Normalize(k)
		if key == "" {
			continue
		}
		text, _ := raw.Get(k)
		chars[key] = b.norm.Normalize(text)
	}
	if len(chars) == 0 {
		return nil
	}

	titles := b.titles(p.Text, base)
	if len(titles) == 0 {
		return nil
	}

	return &Record{ID: p.ID, Titles: titles, Characters: chars}
}

func (b *Builder) blacklisted(s string) bool {
	for _, x := range b.profile.TitleBlacklist {
		if s == x {
			return true
		}
	}
	return false
}

func (b *Builder) titles(text, base string) []string {
	var cands []string
	if b.titleRE != nil {
		for _, m := range b.titleRE.FindAllStringSubmatch(text, -1) {
			cands = append(cands, m[1])
		}
	}
	cands = append(cands, base)

	seen := map[string]bool{}
	var kept []string
	for _, c := range cands {
		c = strings.TrimSpace(c)
		if m := wholeLinkRE.FindStringSubmatch(c); m != nil {
			c = strings.TrimSpace(m[1])
		}
		if c == "" || seen[c] || b.blacklisted(c) {
			continue
		}
		seen[c] = true
		kept = append(kept, c)
	}

	rv := b.canon.Canonicalize(kept)
	if len(rv) == 0 {
		if t := strings.TrimSpace(base); t != "" {
			rv = []string{t}
		}
	}
	return rv
}
