package wikichars

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	brRE          = regexp.MustCompile(`(?i)<br\s*/?>`)
	annotationREs = []*regexp.Regexp{
		regexp.MustCompile(`\(.*?\)`),
		regexp.MustCompile(`（.*?）`),
		regexp.MustCompile(`【.*?】`),
		regexp.MustCompile(`〔.*?〕`),
	}
)

// Prefixes of a title that's really the tail of something else.
var misSplitPrefixes = []string{"|", "(", "（", "【"}

// Prefixes that disqualify the second and later lines of a title.
var continuationPrefixes = []string{"|", "※", "(", "（", "【"}

// A Canonicalizer boils title candidates down to clean, markup free
// titles.
type Canonicalizer struct {
	profile Profile
	norm    *Normalizer
}

// NewCanonicalizer gets a Canonicalizer for the given profile.
func NewCanonicalizer(p Profile, n *Normalizer) *Canonicalizer {
	return &Canonicalizer{profile: p, norm: n}
}

// Canonicalize returns the sorted set of clean titles found in titles.
// Running its output through it again changes nothing.
func (c *Canonicalizer) Canonicalize(titles []string) []string {
	seen := map[string]bool{}
	for _, t := range titles {
		for _, f := range c.fragments(t) {
			if s := c.clean(f); s != "" {
				seen[s] = true
			}
		}
	}

	rv := make([]string, 0, len(seen))
	for s := range seen {
		rv = append(rv, s)
	}
	sort.Strings(rv)
	return rv
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// cutPipe drops everything from the first '|' that isn't inside a link
// or template.
func cutPipe(s string) string {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "[[") || strings.HasPrefix(s[i:], "{{"):
			depth++
			i++
		case depth > 0 && (strings.HasPrefix(s[i:], "]]") || strings.HasPrefix(s[i:], "}}")):
			depth--
			i++
		case depth == 0 && s[i] == '|':
			return s[:i]
		}
	}
	return s
}

func (c *Canonicalizer) editioned(s string) bool {
	suffix := c.profile.EditionSuffix
	return suffix != "" && strings.HasSuffix(strings.TrimSpace(s), suffix)
}

// fragments splits a title on line breaks and throws out the parts
// that aren't titles.
func (c *Canonicalizer) fragments(title string) []string {
	title = strings.TrimSpace(title)
	if title == "" || hasAnyPrefix(title, misSplitPrefixes) {
		return nil
	}
	parts := brRE.Split(cutPipe(title), -1)
	if len(parts) == 1 {
		return parts
	}

	var rv []string
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == 0 {
			if !c.editioned(p) {
				rv = append(rv, p)
			}
			continue
		}
		switch {
		case hasAnyPrefix(p, continuationPrefixes),
			c.editioned(p),
			strings.Contains(p, "-") && strings.Contains(p, ":"):
			continue
		}
		rv = append(rv, p)
	}
	return rv
}

func (c *Canonicalizer) clean(s string) string {
	s = strings.TrimSpace(s)
	for _, g := range c.profile.GenrePrefixes {
		if strings.HasPrefix(s, g) {
			s = strings.TrimLeft(strings.TrimPrefix(s, g), " :：")
			break
		}
	}
	s = stripAnnotations(s)
	if c.norm != nil {
		// Templates like Ruby bring their own parentheses.
		s = stripAnnotations(cutPipe(c.norm.Normalize(s)))
	}
	return strings.TrimSpace(norm.NFC.String(s))
}

func stripAnnotations(s string) string {
	for _, re := range annotationREs {
		s = re.ReplaceAllString(s, "")
	}
	return tagRE.ReplaceAllString(s, "")
}
