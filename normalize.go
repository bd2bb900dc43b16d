package wikichars

import (
	"log"
	"regexp"
	"strings"
)

var (
	commentRE     = regexp.MustCompile(`(?s)<!--.*?-->`)
	commentMarkRE = regexp.MustCompile(`<!--\s*|\s*-->`)
	voiceRE       = regexp.MustCompile(`(?:声|演)\s?[-－\x{2010}-\x{2015}]\s?\[\[.*?\]\]`)
	refSelfRE     = regexp.MustCompile(`(?i)<ref(?:\s[^>]*)?/>`)
	refRE         = regexp.MustCompile(`(?is)<ref(?:\s[^>]*)?>.*?</ref\s*>`)
	tagRE         = regexp.MustCompile(`</?[a-zA-Z][^<>]*>`)
	extLinkRE     = regexp.MustCompile(`\[(?:https?:)?//[^\s\]]+(?:\s+([^\]]*))?\]`)
	quoteRE       = regexp.MustCompile(`'{2,}`)
	openTmplRE    = regexp.MustCompile(`\{\{[^}]*$`)
)

// A Normalizer flattens wikitext fragments to plain text.
//
// It's safe for concurrent use as long as the TemplateStats it was
// given is.
type Normalizer struct {
	rules *RuleTable
	stats *TemplateStats
	log   *log.Logger
}

// NewNormalizer gets a Normalizer resolving templates through rules.
// Unresolved template names are tallied in stats, which may be nil.
// A nil logger means the standard logger.
func NewNormalizer(rules *RuleTable, stats *TemplateStats, logger *log.Logger) *Normalizer {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Normalizer{rules: rules, stats: stats, log: logger}
}

// A candidate pairs a template with the text that will stand in for it.
type candidate struct {
	node   *node
	source string
	text   string
}

// Normalize resolves links, templates and comments in fragment and
// returns what's left as plain text.
//
// Templates the rule table doesn't know vanish.  A template that
// can't be resolved (say it's missing an argument) is logged and
// treated as empty; it never fails the fragment as a whole.
func (n *Normalizer) Normalize(fragment string) (rv string) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Printf("Error normalizing %q: %v", abbrev(fragment), r)
			rv = ""
		}
	}()

	nodes := replaceLinks(parseMarkup(preclean(fragment)))
	cands := n.candidates(nodes, nil)
	merge(cands)

	var b strings.Builder
	flatten(&b, nodes)
	return cleanup(b.String())
}

func preclean(s string) string {
	s = commentRE.ReplaceAllString(s, "")
	s = commentMarkRE.ReplaceAllString(s, "")
	s = voiceRE.ReplaceAllString(s, "")
	s = refSelfRE.ReplaceAllString(s, "")
	return refRE.ReplaceAllString(s, "")
}

// candidates walks the tree in document order, outer templates before
// the ones nested in their arguments, computing each one's text.
func (n *Normalizer) candidates(nodes []*node, into []candidate) []candidate {
	for _, nd := range nodes {
		if nd.kind != templateNode {
			continue
		}
		into = append(into, candidate{
			node:   nd,
			source: source([]*node{nd}),
			text:   n.resolve(nd),
		})
		for _, p := range nd.params {
			into = n.candidates(p.value, into)
		}
	}
	return into
}

func (n *Normalizer) lookup(name string) (string, Rule) {
	if r := n.rules.Lookup(name); r.Kind != Unresolved {
		return name, r
	}
	name = strings.TrimSpace(name)
	return name, n.rules.Lookup(name)
}

func (n *Normalizer) resolve(nd *node) (rv string) {
	name, rule := n.lookup(nd.name)
	if rule.Kind == Unresolved {
		if n.stats != nil {
			n.stats.Add(name)
		}
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			n.log.Printf("Error resolving template %q: %v", name, r)
			rv = ""
		}
	}()

	text, err := rule.resolve(templateArgs(nd.params))
	if err != nil {
		n.log.Printf("Error resolving template %q: %v", name, err)
		return ""
	}
	return text
}

// merge folds nested templates into the templates around them.
//
// Working from the last template back, each one's source is looked
// for in the candidates that come before it.  The first one containing
// it gets the text spliced in; a template nobody contains is
// substituted into the tree directly.
func merge(cands []candidate) {
	for i := len(cands) - 1; i >= 0; i-- {
		c := &cands[i]
		folded := false
		for j := i - 1; j >= 0; j-- {
			if strings.Contains(cands[j].text, c.source) {
				cands[j].text = strings.ReplaceAll(cands[j].text, c.source, c.text)
				folded = true
				break
			}
		}
		if !folded {
			text := c.text
			c.node.resolved = &text
		}
	}
}

// flatten writes out the text of a tree.  Templates without a
// substitution contribute nothing.
func flatten(b *strings.Builder, nodes []*node) {
	for _, nd := range nodes {
		switch nd.kind {
		case textNode:
			b.WriteString(nd.text)
		case linkNode:
			flatten(b, linkDisplay(nd))
		case templateNode:
			if nd.resolved != nil {
				b.WriteString(*nd.resolved)
			}
		}
	}
}

func cleanup(s string) string {
	// Every step only removes text, and a removal can expose a match
	// for an earlier step, so run them until nothing changes.
	for {
		c := cleanupOnce(s)
		if c == s {
			return c
		}
		s = c
	}
}

func cleanupOnce(s string) string {
	s = tagRE.ReplaceAllString(s, "")
	s = extLinkRE.ReplaceAllString(s, "$1")
	s = quoteRE.ReplaceAllString(s, "")
	s = commentRE.ReplaceAllString(s, "")
	s = commentMarkRE.ReplaceAllString(s, "")
	s = openTmplRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func abbrev(s string) string {
	const max = 80
	if r := []rune(s); len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}
