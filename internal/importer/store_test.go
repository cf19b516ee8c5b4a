package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// fakeStore is an in-memory rendition of the tables a run touches.
// It answers exactly the statements newQueries produces.
type fakeStore struct {
	mu sync.Mutex
	q  queries

	versions map[string]fakeVersion // by frbr_expression
	codes    map[int64]string       // stop_waarde.id -> stop_id

	geometries  []fakeGeometry
	locations   []fakeLocation
	memberships [][2]int64
	infoObjects [][]any

	nextID int64
	writes int

	// failOn makes the statement with this SQL fail with failErr.
	failOn  string
	failErr error
}

type fakeVersion struct {
	id           int64
	regulationID int64
	authority    pgtype.Int8
	author       pgtype.Int8
}

type fakeGeometry struct {
	id       int64
	name     string
	sourceID string
	gml      string
}

type fakeLocation struct {
	id           int64
	name         string
	startDate    pgtype.Date
	group        bool
	regulationID int64
	class        string
	geometryID   *int64
	identifier   string
}

const (
	testExpression    = "/join/id/regdata/gm0363/2024/windturbines/nld@2024-03-01;1"
	testRegulationID  = 77
	testAuthorityID   = 501
	testAuthorID      = 502
	testAuthorityCode = "gm0363"
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		q: newQueries(Tables{}),
		versions: map[string]fakeVersion{
			testExpression: {
				id:           42,
				regulationID: testRegulationID,
				authority:    pgtype.Int8{Int64: testAuthorityID, Valid: true},
				author:       pgtype.Int8{Int64: testAuthorID, Valid: true},
			},
		},
		codes: map[int64]string{
			testAuthorityID: "/tooi/id/gemeente/" + testAuthorityCode,
			testAuthorID:    "/tooi/id/gemeente/" + testAuthorityCode,
		},
		nextID: 1000,
	}
}

func (s *fakeStore) versionByID(id int64) (fakeVersion, bool) {
	for _, v := range s.versions {
		if v.id == id {
			return v, true
		}
	}
	return fakeVersion{}, false
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) QueryRow(_ context.Context, sql string, args ...any) gioimport.Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sql == s.failOn {
		return fakeRow{err: s.failErr}
	}

	switch sql {
	case s.q.regulationVersionByExpression:
		if v, ok := s.versions[args[0].(string)]; ok {
			return fakeRow{values: []any{v.id}}
		}
	case s.q.regulationOfVersion:
		if v, ok := s.versionByID(args[0].(int64)); ok && v.regulationID != 0 {
			return fakeRow{values: []any{v.regulationID}}
		}
	case s.q.authorityOfVersion:
		if v, ok := s.versionByID(args[0].(int64)); ok {
			return fakeRow{values: []any{v.authority}}
		}
	case s.q.authorOfVersion:
		if v, ok := s.versionByID(args[0].(int64)); ok {
			return fakeRow{values: []any{v.author}}
		}
	case s.q.codeValue:
		if code, ok := s.codes[args[0].(int64)]; ok {
			return fakeRow{values: []any{pgtype.Text{String: code, Valid: true}}}
		}

	case s.q.geometryExists:
		_, ok := s.geometryBySource(args[0].(string))
		return fakeRow{values: []any{ok}}
	case s.q.insertGeometry:
		name, sourceID, gml := args[0].(string), args[1].(string), args[2].(string)
		if _, ok := s.geometryBySource(sourceID); ok {
			return fakeRow{err: &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}}
		}
		g := fakeGeometry{id: s.id(), name: name, sourceID: sourceID, gml: gml}
		s.geometries = append(s.geometries, g)
		s.writes++
		return fakeRow{values: []any{g.id}}
	case s.q.geometryTypeByID:
		for _, g := range s.geometries {
			if g.id == args[0].(int64) {
				return fakeRow{values: []any{postgisType(g.gml)}}
			}
		}
	case s.q.geometryBySourceID:
		if g, ok := s.geometryBySource(args[0].(string)); ok {
			return fakeRow{values: []any{g.id}}
		}

	case s.q.locationByGeometry:
		for _, l := range s.locations {
			if l.geometryID != nil && *l.geometryID == args[0].(int64) {
				return fakeRow{values: []any{l.id}}
			}
		}
	case s.q.locationClass:
		for _, l := range s.locations {
			if l.id == args[0].(int64) {
				return fakeRow{values: []any{pgtype.Text{String: l.class, Valid: true}}}
			}
		}
	case s.q.insertLeaf:
		geometryID := args[4].(int64)
		l := fakeLocation{
			id:           s.id(),
			name:         args[0].(string),
			startDate:    args[1].(pgtype.Date),
			regulationID: args[2].(int64),
			class:        args[3].(string),
			geometryID:   &geometryID,
			identifier:   args[5].(string),
		}
		s.locations = append(s.locations, l)
		s.writes++
		return fakeRow{values: []any{l.id}}
	case s.q.insertGroup:
		l := fakeLocation{
			id:           s.id(),
			name:         args[0].(string),
			startDate:    args[1].(pgtype.Date),
			group:        true,
			regulationID: args[2].(int64),
			class:        args[3].(string),
			identifier:   args[4].(string),
		}
		s.locations = append(s.locations, l)
		s.writes++
		return fakeRow{values: []any{l.id}}
	default:
		return fakeRow{err: fmt.Errorf("fakeStore: unexpected query %q", sql)}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func (s *fakeStore) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sql == s.failOn {
		return pgconn.CommandTag{}, s.failErr
	}

	switch sql {
	case s.q.insertMembership:
		s.memberships = append(s.memberships, [2]int64{args[0].(int64), args[1].(int64)})
	case s.q.insertInformationObject:
		s.infoObjects = append(s.infoObjects, args)
	default:
		return pgconn.CommandTag{}, fmt.Errorf("fakeStore: unexpected statement %q", sql)
	}
	s.writes++
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (s *fakeStore) geometryBySource(sourceID string) (fakeGeometry, bool) {
	for _, g := range s.geometries {
		if g.sourceID == sourceID {
			return g, true
		}
	}
	return fakeGeometry{}, false
}

func (s *fakeStore) leafLocations() []fakeLocation {
	var out []fakeLocation
	for _, l := range s.locations {
		if !l.group {
			out = append(out, l)
		}
	}
	return out
}

func (s *fakeStore) groupLocations() []fakeLocation {
	var out []fakeLocation
	for _, l := range s.locations {
		if l.group {
			out = append(out, l)
		}
	}
	return out
}

// postgisType mimics ST_GeometryType for the GML roots used in tests.
func postgisType(gml string) string {
	switch {
	case strings.Contains(gml, "<gml:MultiSurface"), strings.Contains(gml, "<gml:Polygon"):
		return "ST_MultiPolygon"
	case strings.Contains(gml, "<gml:LineString"), strings.Contains(gml, "<gml:Curve"):
		return "ST_LineString"
	case strings.Contains(gml, "<gml:Point"):
		return "ST_Point"
	}
	return "ST_GeometryCollection"
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("fakeRow: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		if err := assign(d, r.values[i]); err != nil {
			return err
		}
	}
	return nil
}

func assign(dest, v any) error {
	switch d := dest.(type) {
	case *int64:
		*d = v.(int64)
	case *string:
		*d = v.(string)
	case *bool:
		*d = v.(bool)
	case *pgtype.Int8:
		*d = v.(pgtype.Int8)
	case *pgtype.Text:
		*d = v.(pgtype.Text)
	default:
		return errors.New("fakeRow: unsupported destination type " + fmt.Sprintf("%T", dest))
	}
	return nil
}

type recordingLogger struct {
	mu       sync.Mutex
	infos    []string
	warnings []string
}

func (l *recordingLogger) Verbose(string, ...interface{}) {}

func (l *recordingLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Error(string, ...interface{}) {}

// fixedTokens returns a generator yielding t1, t2, ... padded to 32 hex chars.
func fixedTokens() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%032x", n)
	}
}
