package wikichars

import (
	"strconv"
	"strings"
)

type nodeKind int

const (
	textNode nodeKind = iota
	linkNode
	templateNode
)

// A node is a piece of a parsed wikitext fragment.  Only the fields
// for its kind are set.
type node struct {
	kind nodeKind

	text string

	target   string
	label    []*node
	hasLabel bool

	name     string
	params   []*param
	resolved *string
}

// A param is one template argument.  key holds the raw text before
// the '=' of a named argument so the source can be rebuilt exactly.
type param struct {
	key   string
	name  string
	named bool
	value []*node
}

type parseContext int

const (
	ctxTop parseContext = iota
	ctxParam
	ctxLabel
)

// An attempt is the outcome of parsing the opener at some position.
// Each opener is parsed at most once per context.
type attempt struct {
	n   *node
	end int
	ok  bool
}

// A link inside a template gives up at the template's "}}", so its
// outcome depends on whether it is nested.  A template's doesn't.
type linkKey struct {
	pos    int
	nested bool
}

type markupParser struct {
	s     string
	pos   int
	depth int

	templates map[int]attempt
	links     map[linkKey]attempt
}

// parseMarkup splits a fragment into text, link and template nodes.
// Openers that never close are kept as literal text.
func parseMarkup(s string) []*node {
	p := &markupParser{
		s:         s,
		templates: map[int]attempt{},
		links:     map[linkKey]attempt{},
	}
	nodes, _ := p.parseNodes(ctxTop)
	return nodes
}

// parseNodes reads until the terminator for ctx, which is left
// unconsumed.  It reports false if the terminator never showed up.
func (p *markupParser) parseNodes(ctx parseContext) ([]*node, bool) {
	var out []*node
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, &node{kind: textNode, text: buf.String()})
			buf.Reset()
		}
	}

	for p.pos < len(p.s) {
		rest := p.s[p.pos:]
		switch {
		case ctx == ctxParam && (rest[0] == '|' || strings.HasPrefix(rest, "}}")):
			flush()
			return out, true
		case ctx == ctxLabel && strings.HasPrefix(rest, "]]"):
			flush()
			return out, true
		case ctx == ctxLabel && p.depth > 0 && strings.HasPrefix(rest, "}}"):
			// The enclosing template closes before this link does.
			return nil, false
		case strings.HasPrefix(rest, "{{"):
			if n, ok := p.parseTemplate(); ok {
				flush()
				out = append(out, n)
				continue
			}
			buf.WriteString("{{")
			p.pos += 2
		case strings.HasPrefix(rest, "[["):
			if n, ok := p.parseLink(); ok {
				flush()
				out = append(out, n)
				continue
			}
			buf.WriteString("[[")
			p.pos += 2
		default:
			buf.WriteByte(rest[0])
			p.pos++
		}
	}
	flush()
	return out, ctx == ctxTop
}

func (p *markupParser) parseTemplate() (*node, bool) {
	start := p.pos
	if a, seen := p.templates[start]; seen {
		if a.ok {
			p.pos = a.end
		}
		return a.n, a.ok
	}
	n, ok := p.scanTemplate()
	p.templates[start] = attempt{n, p.pos, ok}
	return n, ok
}

func (p *markupParser) scanTemplate() (*node, bool) {
	start := p.pos
	fail := func() (*node, bool) {
		p.pos = start
		return nil, false
	}

	end := start + 2
	for end < len(p.s) && p.s[end] != '|' && !strings.HasPrefix(p.s[end:], "}}") {
		if strings.HasPrefix(p.s[end:], "{{") || strings.HasPrefix(p.s[end:], "[[") {
			return fail()
		}
		end++
	}
	if end >= len(p.s) {
		return fail()
	}
	name := p.s[start+2 : end]
	if strings.TrimSpace(name) == "" {
		return fail()
	}

	n := &node{kind: templateNode, name: name}
	p.pos = end
	p.depth++
	defer func() { p.depth-- }()

	positional := 0
	for {
		if strings.HasPrefix(p.s[p.pos:], "}}") {
			p.pos += 2
			return n, true
		}
		p.pos++ // the '|'
		value, ok := p.parseNodes(ctxParam)
		if !ok {
			return fail()
		}
		n.params = append(n.params, newParam(value, &positional))
	}
}

func (p *markupParser) parseLink() (*node, bool) {
	key := linkKey{p.pos, p.depth > 0}
	if a, seen := p.links[key]; seen {
		if a.ok {
			p.pos = a.end
		}
		return a.n, a.ok
	}
	n, ok := p.scanLink()
	p.links[key] = attempt{n, p.pos, ok}
	return n, ok
}

func (p *markupParser) scanLink() (*node, bool) {
	start := p.pos
	fail := func() (*node, bool) {
		p.pos = start
		return nil, false
	}

	end := start + 2
	for ; end < len(p.s); end++ {
		c := p.s[end]
		if c == '|' || strings.HasPrefix(p.s[end:], "]]") {
			break
		}
		if strings.IndexByte("\n[]{}", c) >= 0 {
			return fail()
		}
	}
	if end >= len(p.s) {
		return fail()
	}

	n := &node{kind: linkNode, target: p.s[start+2 : end]}
	p.pos = end
	if strings.HasPrefix(p.s[p.pos:], "]]") {
		p.pos += 2
		return n, true
	}
	p.pos++ // the '|'
	label, ok := p.parseNodes(ctxLabel)
	if !ok {
		return fail()
	}
	p.pos += 2
	n.label = label
	n.hasLabel = true
	return n, true
}

// newParam works out whether an argument is named.  A named argument
// has an '=' in its leading text, before any nested link or template.
func newParam(value []*node, positional *int) *param {
	if len(value) > 0 && value[0].kind == textNode {
		if i := strings.IndexByte(value[0].text, '='); i >= 0 {
			key := value[0].text[:i]
			rest := value[0].text[i+1:]
			v := make([]*node, 0, len(value))
			if rest != "" {
				v = append(v, &node{kind: textNode, text: rest})
			}
			v = append(v, value[1:]...)
			return &param{
				key:   key,
				name:  strings.TrimSpace(key),
				named: true,
				value: v,
			}
		}
	}
	*positional++
	return &param{name: strconv.Itoa(*positional), value: value}
}

func (n *node) writeSource(b *strings.Builder) {
	switch n.kind {
	case textNode:
		b.WriteString(n.text)
	case linkNode:
		b.WriteString("[[")
		b.WriteString(n.target)
		if n.hasLabel {
			b.WriteByte('|')
			writeSource(b, n.label)
		}
		b.WriteString("]]")
	case templateNode:
		b.WriteString("{{")
		b.WriteString(n.name)
		for _, p := range n.params {
			b.WriteByte('|')
			if p.named {
				b.WriteString(p.key)
				b.WriteByte('=')
			}
			writeSource(b, p.value)
		}
		b.WriteString("}}")
	}
}

func writeSource(b *strings.Builder, nodes []*node) {
	for _, n := range nodes {
		n.writeSource(b)
	}
}

// source rebuilds the wikitext the nodes came from.
func source(nodes []*node) string {
	var b strings.Builder
	writeSource(&b, nodes)
	return b.String()
}

// templateArgs gives rules access to a template's arguments by name.
// Positional arguments are named by their position, starting at 1.
type templateArgs []*param

// get returns the trimmed source of the named argument.  When the
// name repeats, the last one wins.
func (a templateArgs) get(name string) (string, bool) {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].name == name {
			return strings.TrimSpace(source(a[i].value)), true
		}
	}
	return "", false
}

// positional reports whether the named argument exists and was given
// without an explicit name.
func (a templateArgs) positional(name string) bool {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].name == name {
			return !a[i].named
		}
	}
	return false
}
