package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// Geometries reads and writes bzk.geometrie, keyed by the external source id.
type Geometries struct {
	store gioimport.Store
	q     queries
}

// NewGeometries returns a Geometries writing through store.
func NewGeometries(store gioimport.Store, tables Tables) *Geometries {
	if store == nil {
		panic("store cannot be nil")
	}
	return &Geometries{store: store, q: newQueries(tables)}
}

// Exists reports whether a geometry with sourceID is already stored.
func (g *Geometries) Exists(ctx context.Context, sourceID string) (bool, error) {
	var exists bool
	if err := g.store.QueryRow(ctx, g.q.geometryExists, sourceID).Scan(&exists); err != nil {
		return false, gioimport.StorageError("check geometry "+sourceID, err)
	}
	return exists, nil
}

// Insert stores payload as a new geometry built from GML and returns its
// id together with the class PostGIS reports for it.
func (g *Geometries) Insert(ctx context.Context, sourceID, name, payload string) (int64, gioimport.GeometryClass, error) {
	var id int64
	if err := g.store.QueryRow(ctx, g.q.insertGeometry, name, sourceID, payload).Scan(&id); err != nil {
		return 0, "", gioimport.StorageError("insert geometry "+sourceID, err)
	}

	var typeName string
	err := g.store.QueryRow(ctx, g.q.geometryTypeByID, id).Scan(&typeName)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", gioimport.NewNotFound("geometry", id)
	}
	if err != nil {
		return 0, "", gioimport.StorageError("read geometry type", err)
	}

	class, err := Classify(typeName)
	if err != nil {
		return 0, "", fmt.Errorf("geometry %s: %w", sourceID, err)
	}
	return id, class, nil
}

// LookupExisting returns the id of the stored geometry with sourceID.
func (g *Geometries) LookupExisting(ctx context.Context, sourceID string) (int64, error) {
	var id int64
	if err := scanOne(ctx, g.store, g.q.geometryBySourceID, "geometry", sourceID, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Classify maps a PostGIS geometry type name such as "ST_MultiPolygon"
// to its stored class.
func Classify(typeName string) (gioimport.GeometryClass, error) {
	t := strings.ToLower(typeName)
	switch {
	case strings.Contains(t, "polygon"):
		return gioimport.GeometryArea, nil
	case strings.Contains(t, "line"):
		return gioimport.GeometryLine, nil
	case strings.Contains(t, "point"):
		return gioimport.GeometryPoint, nil
	}
	return "", fmt.Errorf("%w: %q", gioimport.ErrUnsupportedGeometry, typeName)
}
