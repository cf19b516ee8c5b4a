package gioimport

import "context"

// Importer runs one GIO import end to end: connect, resolve metadata,
// extract the document and write geometries, locations and the
// information object version.
type Importer interface {
	Import(ctx context.Context, config ImportConfig) (*ImportResult, error)
}
