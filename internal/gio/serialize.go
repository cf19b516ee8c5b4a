package gio

import (
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
)

const indent = "  "

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#xA;", "\t", "&#x9;", "\r", "&#xD;")
)

// Serialize writes the element sub-tree rooted at node as indented XML
// without a declaration. Whitespace-only text is dropped, attributes keep
// document order, and namespaces the sub-tree uses but declares higher up
// are declared on the root, sorted by prefix.
func Serialize(node *xmlquery.Node) string {
	if node == nil {
		return ""
	}
	var b strings.Builder
	writeElement(&b, node, 0, inheritedNamespaces(node))
	return b.String()
}

type nsDecl struct {
	prefix string
	uri    string
}

// inheritedNamespaces lists prefixes used within node's sub-tree that no
// element of the sub-tree declares itself.
func inheritedNamespaces(node *xmlquery.Node) []nsDecl {
	used := make(map[string]string)
	declared := make(map[string]bool)

	var walk func(n *xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		if n.Type != xmlquery.ElementNode {
			return
		}
		if n.NamespaceURI != "" {
			if _, ok := used[n.Prefix]; !ok {
				used[n.Prefix] = n.NamespaceURI
			}
		}
		for _, attr := range n.Attr {
			if prefix, ok := declaredPrefix(attr); ok {
				declared[prefix] = true
				continue
			}
			if attr.Name.Space == "" || attr.Name.Space == "xml" {
				continue
			}
			if _, ok := used[attr.Name.Space]; !ok {
				used[attr.Name.Space] = attr.NamespaceURI
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)

	var decls []nsDecl
	for prefix, uri := range used {
		if declared[prefix] || uri == "" {
			continue
		}
		decls = append(decls, nsDecl{prefix: prefix, uri: uri})
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].prefix < decls[j].prefix })
	return decls
}

// declaredPrefix reports whether attr is a namespace declaration and for which prefix.
func declaredPrefix(attr xmlquery.Attr) (string, bool) {
	if attr.Name.Space == "xmlns" {
		return attr.Name.Local, true
	}
	if attr.Name.Space == "" && attr.Name.Local == "xmlns" {
		return "", true
	}
	return "", false
}

func qualified(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

func writeElement(b *strings.Builder, n *xmlquery.Node, depth int, extra []nsDecl) {
	pad := strings.Repeat(indent, depth)
	name := qualified(n.Prefix, n.Data)

	b.WriteString(pad)
	b.WriteByte('<')
	b.WriteString(name)
	for _, d := range extra {
		b.WriteByte(' ')
		if d.prefix == "" {
			b.WriteString("xmlns")
		} else {
			b.WriteString("xmlns:" + d.prefix)
		}
		writeAttrValue(b, d.uri)
	}
	for _, attr := range n.Attr {
		b.WriteByte(' ')
		if attr.Name.Space == "" && attr.Name.Local == "xmlns" {
			b.WriteString("xmlns")
		} else {
			b.WriteString(qualified(attr.Name.Space, attr.Name.Local))
		}
		writeAttrValue(b, attr.Value)
	}

	var elements, texts int
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			elements++
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(child.Data) != "" {
				texts++
			}
		}
	}

	switch {
	case elements == 0 && texts == 0:
		b.WriteString("/>\n")
		return
	case elements == 0:
		b.WriteByte('>')
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == xmlquery.TextNode || child.Type == xmlquery.CharDataNode {
				textEscaper.WriteString(b, child.Data)
			}
		}
		b.WriteString("</" + name + ">\n")
		return
	}

	b.WriteString(">\n")
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			writeElement(b, child, depth+1, nil)
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if text := strings.TrimSpace(child.Data); text != "" {
				b.WriteString(pad + indent)
				textEscaper.WriteString(b, text)
				b.WriteByte('\n')
			}
		}
	}
	b.WriteString(pad + "</" + name + ">\n")
}

func writeAttrValue(b *strings.Builder, v string) {
	b.WriteString(`="`)
	attrEscaper.WriteString(b, v)
	b.WriteByte('"')
}
