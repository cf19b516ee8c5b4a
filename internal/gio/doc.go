// Package gio reads GIO (geografisch informatieobject) documents.
//
// Extract parses a document once and returns its FRBR identification,
// the optional background fields and every geo:Locatie in document order.
// Each location carries the serialized GML sub-tree of its geometry as
// produced by Serialize, which is stable byte for byte for identical input.
//
// Path expressions are evaluated through a Querier bound to an explicit
// namespace prefix table; nothing is resolved from the document's own
// prefixes.
package gio
