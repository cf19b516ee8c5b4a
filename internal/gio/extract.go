package gio

import (
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// Document is the content of a GIO document the importer needs.
type Document struct {
	Work       string // FRBRWork, copied verbatim
	Expression string // FRBRExpression, copied verbatim

	// Optional fields, empty when the element is absent.
	BackgroundReference string // gio:achtergrondVerwijzing
	BackgroundCurrency  string // gio:achtergrondActualiteit
	Accuracy            string // gio:nauwkeurigheid

	Locations []Location
}

// Location is one geo:Locatie with its serialized geometry.
type Location struct {
	SourceID string // basisgeo:id
	Name     string // geo:naam
	Geometry string // GML sub-tree referenced by gml:id="id-<SourceID>"
}

const (
	pathLocation   = "//geo:Locatie"
	pathName       = "./geo:naam"
	pathSourceID   = ".//basisgeo:id"
	pathWork       = "//geo:FRBRWork"
	pathExpression = "//geo:FRBRExpression"
	pathReference  = "//gio:achtergrondVerwijzing"
	pathCurrency   = "//gio:achtergrondActualiteit"
	pathAccuracy   = "//gio:nauwkeurigheid"
)

// Extractor pulls Documents out of GIO XML.
type Extractor struct {
	q *Querier
}

// NewExtractor returns an Extractor evaluating paths with q.
// A nil q uses DefaultNamespaces.
func NewExtractor(q *Querier) *Extractor {
	if q == nil {
		q = NewQuerier(DefaultNamespaces())
	}
	return &Extractor{q: q}
}

// Extract parses r with the default namespace table.
func Extract(r io.Reader) (*Document, error) {
	return NewExtractor(nil).Extract(r)
}

// Extract parses r and returns its Document. Missing required structure
// yields an error wrapping gioimport.ErrMalformedInput.
func (e *Extractor) Extract(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse XML: %v", gioimport.ErrMalformedInput, err)
	}

	doc := &Document{}

	if doc.Work, err = e.required(root, pathWork, "FRBRWork"); err != nil {
		return nil, err
	}
	if doc.Expression, err = e.required(root, pathExpression, "FRBRExpression"); err != nil {
		return nil, err
	}
	if doc.BackgroundReference, _, err = e.q.Text(root, pathReference); err != nil {
		return nil, err
	}
	if doc.BackgroundCurrency, _, err = e.q.Text(root, pathCurrency); err != nil {
		return nil, err
	}
	if doc.Accuracy, _, err = e.q.Text(root, pathAccuracy); err != nil {
		return nil, err
	}

	nodes, err := e.q.All(root, pathLocation)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: document has no geo:Locatie elements", gioimport.ErrMalformedInput)
	}

	doc.Locations = make([]Location, 0, len(nodes))
	for i, node := range nodes {
		loc, err := e.location(node)
		if err != nil {
			return nil, fmt.Errorf("location %d: %w", i+1, err)
		}
		doc.Locations = append(doc.Locations, loc)
	}

	return doc, nil
}

func (e *Extractor) location(node *xmlquery.Node) (Location, error) {
	name, err := e.required(node, pathName, "geo:naam")
	if err != nil {
		return Location{}, err
	}
	id, err := e.required(node, pathSourceID, "basisgeo:id")
	if err != nil {
		return Location{}, fmt.Errorf("%q: %w", name, err)
	}

	geometry, err := e.q.One(node, ".//*[@gml:id="+literal("id-"+id)+"]")
	if err != nil {
		return Location{}, fmt.Errorf("%w: location %q: %v", gioimport.ErrMalformedInput, name, err)
	}
	if geometry == nil {
		return Location{}, fmt.Errorf("%w: no geometry with gml:id %q for location %q",
			gioimport.ErrMalformedInput, "id-"+id, name)
	}

	return Location{
		SourceID: id,
		Name:     name,
		Geometry: Serialize(geometry),
	}, nil
}

func (e *Extractor) required(node *xmlquery.Node, expr, element string) (string, error) {
	text, found, err := e.q.Text(node, expr)
	if err != nil {
		return "", err
	}
	if !found || text == "" {
		return "", fmt.Errorf("%w: missing %s", gioimport.ErrMalformedInput, element)
	}
	return text, nil
}
