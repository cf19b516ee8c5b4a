package gio

import (
	"fmt"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Namespace URIs used by GIO documents.
const (
	NamespaceBasisgeo = "http://www.geostandaarden.nl/basisgeometrie/1.0"
	NamespaceGeo      = "https://standaarden.overheid.nl/stop/imop/geo/"
	NamespaceGio      = "https://standaarden.overheid.nl/stop/imop/gio/"
	NamespaceGML      = "http://www.opengis.net/gml/3.2"
)

// DefaultNamespaces returns the prefix table used to query GIO documents.
func DefaultNamespaces() map[string]string {
	return map[string]string{
		"basisgeo": NamespaceBasisgeo,
		"geo":      NamespaceGeo,
		"gio":      NamespaceGio,
		"gml":      NamespaceGML,
	}
}

// Querier evaluates XPath expressions with a fixed prefix table.
// Compiled expressions are cached; a Querier is safe for concurrent use.
type Querier struct {
	namespaces map[string]string

	mu    sync.Mutex
	cache map[string]*xpath.Expr
}

// NewQuerier binds namespaces (prefix to URI) for all expressions
// evaluated by the returned Querier.
func NewQuerier(namespaces map[string]string) *Querier {
	ns := make(map[string]string, len(namespaces))
	for prefix, uri := range namespaces {
		ns[prefix] = uri
	}
	return &Querier{
		namespaces: ns,
		cache:      make(map[string]*xpath.Expr),
	}
}

func (q *Querier) compile(expr string) (*xpath.Expr, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if compiled, ok := q.cache[expr]; ok {
		return compiled, nil
	}
	compiled, err := xpath.CompileWithNS(expr, q.namespaces)
	if err != nil {
		return nil, fmt.Errorf("invalid path expression %q: %w", expr, err)
	}
	q.cache[expr] = compiled
	return compiled, nil
}

// One returns the first node matching expr relative to node, or nil.
func (q *Querier) One(node *xmlquery.Node, expr string) (*xmlquery.Node, error) {
	compiled, err := q.compile(expr)
	if err != nil {
		return nil, err
	}
	return xmlquery.QuerySelector(node, compiled), nil
}

// All returns every node matching expr relative to node, in document order.
func (q *Querier) All(node *xmlquery.Node, expr string) ([]*xmlquery.Node, error) {
	compiled, err := q.compile(expr)
	if err != nil {
		return nil, err
	}
	return xmlquery.QuerySelectorAll(node, compiled), nil
}

// Text returns the trimmed text content of the first match. found is false
// when nothing matches.
func (q *Querier) Text(node *xmlquery.Node, expr string) (text string, found bool, err error) {
	match, err := q.One(node, expr)
	if err != nil || match == nil {
		return "", false, err
	}
	return strings.TrimSpace(match.InnerText()), true, nil
}

// literal quotes s as an XPath string expression. XPath 1.0 has no escape
// for quotes, so a value holding both kinds is built with concat().
func literal(s string) string {
	switch {
	case !strings.Contains(s, "'"):
		return "'" + s + "'"
	case !strings.Contains(s, `"`):
		return `"` + s + `"`
	}
	var args []string
	for i, part := range strings.Split(s, "'") {
		if i > 0 {
			args = append(args, `"'"`)
		}
		if part != "" {
			args = append(args, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}
