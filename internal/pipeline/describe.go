package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	styleTitle    = "margin-bottom:4px; font-weight:bold; font-size:1.1em; color:var(--charger-color)"
	styleFoodRow  = "display:flex; align-items:center; gap:5px; margin-top:5px;"
	styleFoodName = "font-weight:600;"
	styleDistance = "font-size:0.85em; color:#666; margin-top:2px;"
	styleNoFood   = "font-size:0.85em; color:#999; margin-top:5px;"
)

// Describe renders the popup HTML for a match. OSM names are text nodes,
// so they are always escaped.
func Describe(charger, food string, meters, radius int, text Text) string {
	nodes := []*html.Node{element(atom.Div, styleTitle, textNode(charger))}

	if food != "" {
		nodes = append(nodes,
			element(atom.Div, styleFoodRow,
				element(atom.Span, "", textNode("🍽️")),
				element(atom.Span, styleFoodName, textNode(food)),
			),
			element(atom.Div, styleDistance, textNode(fmt.Sprintf(text.Distance, meters))),
		)
	} else {
		nodes = append(nodes, element(atom.Div, styleNoFood, textNode(fmt.Sprintf(text.NoFoodNearby, radius))))
	}

	var b strings.Builder
	for _, n := range nodes {
		// Rendering into a strings.Builder cannot fail
		_ = html.Render(&b, n)
	}
	return b.String()
}

func element(a atom.Atom, style string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if style != "" {
		n.Attr = []html.Attribute{{Key: "style", Val: style}}
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
