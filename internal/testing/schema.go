package testing

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaSQL creates the tables an import reads and writes, in the bzk
// schema with the code table in public.
const SchemaSQL = `
CREATE EXTENSION IF NOT EXISTS postgis;
CREATE SCHEMA IF NOT EXISTS bzk;

CREATE TABLE IF NOT EXISTS public.stop_waarde (
    id      bigint PRIMARY KEY,
    stop_id text
);

CREATE TABLE IF NOT EXISTS bzk.regeling (
    id   bigserial PRIMARY KEY,
    naam text
);

CREATE TABLE IF NOT EXISTS bzk.regelingversie (
    id                       bigserial PRIMARY KEY,
    regeling_id              bigint NOT NULL REFERENCES bzk.regeling (id),
    frbr_expression          text NOT NULL UNIQUE,
    eindverantwoordelijke_id bigint,
    maker_id                 bigint
);

CREATE TABLE IF NOT EXISTS bzk.geometrie (
    id           bigserial PRIMARY KEY,
    naam         text,
    geometrie_id text NOT NULL UNIQUE,
    geometrie    geometry(Geometry, 28992) NOT NULL
);

CREATE TABLE IF NOT EXISTS bzk.locatie (
    id            bigserial PRIMARY KEY,
    naam          text,
    datum_begin   date,
    ind_groep_jn  boolean NOT NULL,
    regeling_id   bigint REFERENCES bzk.regeling (id),
    geometrietype text NOT NULL,
    geometrie_id  bigint REFERENCES bzk.geometrie (id),
    identificatie text NOT NULL
);

CREATE TABLE IF NOT EXISTS bzk.groep_locatie (
    locatiegroep_id bigint NOT NULL REFERENCES bzk.locatie (id),
    locatie_id      bigint NOT NULL REFERENCES bzk.locatie (id)
);

CREATE TABLE IF NOT EXISTS bzk.informatieobjectversie (
    id                          bigserial PRIMARY KEY,
    frbr_work                   text NOT NULL,
    frbr_expression             text NOT NULL,
    soort_work_id               bigint,
    regeling_id                 bigint REFERENCES bzk.regeling (id),
    eindverantwoordelijke_id    bigint,
    maker_id                    bigint,
    formaat_informatieobject_id bigint,
    naam                        text,
    officiele_titel             text,
    publicatie_instructie_id    bigint,
    stop_schema_versie          text,
    achtergrond_verwijzing      text,
    achtergrond_actualiteit     date,
    nauwkeurigheid              integer,
    locatie_id                  bigint REFERENCES bzk.locatie (id)
);
`

// Regulation describes one seeded regulation version.
type Regulation struct {
	Expression    string
	AuthorityCode string // e.g. "gm0363"; empty leaves stop_id NULL

	// Filled in by SeedRegulation.
	RegulationID        int64
	RegulationVersionID int64
	AuthorityID         int64
}

// InstallSchema applies SchemaSQL to the database behind pool.
func InstallSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), SchemaSQL); err != nil {
		t.Fatalf("Failed to install schema: %v", err)
	}
}

// SeedRegulation inserts a regulation, its version and the authority code the
// version points at, and fills in the generated ids.
func SeedRegulation(t *testing.T, pool *pgxpool.Pool, reg *Regulation) {
	t.Helper()

	ctx := context.Background()
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO bzk.regeling (naam) VALUES ($1) RETURNING id`, reg.Expression,
		).Scan(&reg.RegulationID); err != nil {
			return fmt.Errorf("insert regeling: %w", err)
		}

		var stopID *string
		if reg.AuthorityCode != "" {
			s := "/tooi/id/gemeente/" + reg.AuthorityCode
			stopID = &s
		}
		if err := tx.QueryRow(ctx,
			`INSERT INTO public.stop_waarde (id, stop_id)
			 VALUES ((SELECT COALESCE(MAX(id), 1000) + 1 FROM public.stop_waarde), $1) RETURNING id`, stopID,
		).Scan(&reg.AuthorityID); err != nil {
			return fmt.Errorf("insert stop_waarde: %w", err)
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO bzk.regelingversie (regeling_id, frbr_expression, eindverantwoordelijke_id, maker_id)
			 VALUES ($1, $2, $3, $3) RETURNING id`, reg.RegulationID, reg.Expression, reg.AuthorityID,
		).Scan(&reg.RegulationVersionID); err != nil {
			return fmt.Errorf("insert regelingversie: %w", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to seed regulation %s: %v", reg.Expression, err)
	}
}

// NewPostGISDB creates a fresh database with the schema installed and returns
// its connection string and a pool on it.
func NewPostGISDB(t *testing.T) (string, *pgxpool.Pool) {
	t.Helper()

	server := RequireDatabase(t)
	connString := CreateTestDB(t, server, UniqueDBName("gioimport_test"))
	pool := GetTestPool(t, connString)
	InstallSchema(t, pool)
	return connString, pool
}

// CountRows returns the row count of a bzk table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	sql := "SELECT count(*) FROM " + pgx.Identifier{"bzk", table}.Sanitize()
	if err := pool.QueryRow(context.Background(), sql).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}
