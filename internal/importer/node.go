// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package importer

import (
	"encoding/xml"
	"strings"
)

// node is a generic element subtree. Text holds only the element's own
// character data, not that of nested elements.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func (n *node) is(name string) bool { return strings.EqualFold(n.XMLName.Local, name) }

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// each calls fn for every direct child named name.
func (n *node) each(name string, fn func(*node)) {
	for i := range n.Children {
		if n.Children[i].is(name) {
			fn(&n.Children[i])
		}
	}
}
