package cleaner

import (
	"bytes"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Select narrows rawHTML to the elements matching selector. It returns
// their outer HTML in document order together with the number of elements
// rendered. A match nested inside another match is rendered once, as part
// of its outermost ancestor. When nothing matches, rawHTML comes back
// unchanged with a count of zero.
func Select(rawHTML, selector string) (string, int, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", 0, err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", 0, err
	}

	matches := outermost(cascadia.QueryAll(doc, sel))
	if len(matches) == 0 {
		return rawHTML, 0, nil
	}

	var buf bytes.Buffer
	for _, node := range matches {
		if err := html.Render(&buf, node); err != nil {
			return "", 0, err
		}
	}
	return buf.String(), len(matches), nil
}

// outermost drops nodes that have an ancestor in nodes.
func outermost(nodes []*html.Node) []*html.Node {
	set := make(map[*html.Node]struct{}, len(nodes))
	for _, n := range nodes {
		set[n] = struct{}{}
	}

	out := nodes[:0:0]
	for _, n := range nodes {
		nested := false
		for p := n.Parent; p != nil; p = p.Parent {
			if _, ok := set[p]; ok {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, n)
		}
	}
	return out
}
