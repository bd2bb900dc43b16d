package wikichars

import (
	"regexp"
	"strings"
)

var fileRE, langPrefixRE *regexp.Regexp

func init() {
	fileRE = regexp.MustCompile(`(?i)^\s*(?:file|image|media|category|ファイル|画像|カテゴリ)\s*:`)
	langPrefixRE = regexp.MustCompile(`^[a-z]{2,3}(?:-[a-z]+)?:`)
}

// isFileLink reports whether a link target points at a file or
// category page.  Those render as an image or not at all, so they
// contribute no text.
func isFileLink(target string) bool {
	return fileRE.MatchString(target)
}

// linkTitle gets the visible title of a link with no label: the
// target with any leading colon and interwiki language prefix removed.
func linkTitle(target string) string {
	t := strings.TrimPrefix(strings.TrimSpace(target), ":")
	t = langPrefixRE.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}

// replaceLinks swaps every link, including those nested in template
// arguments, for the nodes of its display text.
func replaceLinks(nodes []*node) []*node {
	rv := make([]*node, 0, len(nodes))
	for _, n := range nodes {
		switch n.kind {
		case linkNode:
			rv = append(rv, linkDisplay(n)...)
		case templateNode:
			for _, p := range n.params {
				p.value = replaceLinks(p.value)
			}
			rv = append(rv, n)
		default:
			rv = append(rv, n)
		}
	}
	return rv
}

func linkDisplay(n *node) []*node {
	if isFileLink(n.target) {
		return nil
	}
	if n.hasLabel && len(n.label) > 0 {
		return replaceLinks(n.label)
	}
	return []*node{{kind: textNode, text: linkTitle(n.target)}}
}
