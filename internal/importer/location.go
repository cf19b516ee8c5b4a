package importer

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vvka-141/gioimport/internal/identifier"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// LeafLocation is a location bound to one geometry.
type LeafLocation struct {
	Name          string
	StartDate     time.Time
	RegulationID  int64
	Class         gioimport.GeometryClass
	GeometryID    int64
	AuthorityCode string
}

// GroupLocation is a location without geometry that aggregates members.
type GroupLocation struct {
	Name          string
	StartDate     time.Time
	RegulationID  int64
	Class         gioimport.GeometryClass
	AuthorityCode string
}

// Locations reads and writes bzk.locatie and bzk.groep_locatie.
type Locations struct {
	store gioimport.Store
	q     queries
	token identifier.Generator
}

// NewLocations returns a Locations writing through store. token supplies
// the random part of new identifiers; nil means identifier.Token.
func NewLocations(store gioimport.Store, tables Tables, token identifier.Generator) *Locations {
	if store == nil {
		panic("store cannot be nil")
	}
	if token == nil {
		token = identifier.Token
	}
	return &Locations{store: store, q: newQueries(tables), token: token}
}

// CreateLeaf inserts a leaf location with a fresh identifier.
func (l *Locations) CreateLeaf(ctx context.Context, loc LeafLocation) (int64, error) {
	ident := identifier.Location(loc.AuthorityCode, loc.Class, false, l.token)

	var id int64
	err := l.store.QueryRow(ctx, l.q.insertLeaf,
		loc.Name, dateOf(loc.StartDate), loc.RegulationID, string(loc.Class), loc.GeometryID, ident,
	).Scan(&id)
	if err != nil {
		return 0, gioimport.StorageError("insert location "+loc.Name, err)
	}
	return id, nil
}

// CreateGroup inserts a group location with a fresh "engroep" identifier.
func (l *Locations) CreateGroup(ctx context.Context, loc GroupLocation) (int64, error) {
	ident := identifier.Location(loc.AuthorityCode, loc.Class, true, l.token)

	var id int64
	err := l.store.QueryRow(ctx, l.q.insertGroup,
		loc.Name, dateOf(loc.StartDate), loc.RegulationID, string(loc.Class), ident,
	).Scan(&id)
	if err != nil {
		return 0, gioimport.StorageError("insert group location "+loc.Name, err)
	}
	return id, nil
}

// LookupByGeometry returns the location previously created for geometryID.
func (l *Locations) LookupByGeometry(ctx context.Context, geometryID int64) (int64, error) {
	var id int64
	if err := scanOne(ctx, l.store, l.q.locationByGeometry, "location", geometryID, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// GeometryClassOf returns the stored geometrietype of a location.
func (l *Locations) GeometryClassOf(ctx context.Context, locationID int64) (gioimport.GeometryClass, error) {
	var class pgtype.Text
	err := l.store.QueryRow(ctx, l.q.locationClass, locationID).Scan(&class)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !class.Valid) {
		return "", gioimport.NewNotFound("location", locationID)
	}
	if err != nil {
		return "", gioimport.StorageError("read location class", err)
	}

	c := gioimport.GeometryClass(class.String)
	if !c.IsValid() {
		return "", errorf(gioimport.ErrUnsupportedGeometry, "location %d has geometrietype %q", locationID, class.String)
	}
	return c, nil
}

// Link adds member to group.
func (l *Locations) Link(ctx context.Context, groupID, memberID int64) error {
	if _, err := l.store.Exec(ctx, l.q.insertMembership, groupID, memberID); err != nil {
		return gioimport.StorageError("link location", err)
	}
	return nil
}

func dateOf(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}
