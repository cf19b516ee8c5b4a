package importer

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// Tables names the schemas holding the import's tables.
// Empty fields fall back to gioimport.DefaultSchema and gioimport.DefaultCodeSchema.
type Tables struct {
	Schema     string
	CodeSchema string
}

func (t Tables) table(name string) string {
	schema := t.Schema
	if schema == "" {
		schema = gioimport.DefaultSchema
	}
	return pgx.Identifier{schema, name}.Sanitize()
}

func (t Tables) codeTable(name string) string {
	schema := t.CodeSchema
	if schema == "" {
		schema = gioimport.DefaultCodeSchema
	}
	return pgx.Identifier{schema, name}.Sanitize()
}

// queries holds every statement a run issues, qualified for one Tables value.
type queries struct {
	// Metadata chain. $1 is the expression or the regelingversie id.
	regulationVersionByExpression string
	regulationOfVersion           string
	authorityOfVersion            string
	authorOfVersion               string
	codeValue                     string

	// Geometries. $1 is the source id unless noted.
	geometryExists     string
	insertGeometry     string // $1 naam, $2 geometrie_id, $3 GML
	geometryTypeByID   string // $1 geometrie.id
	geometryBySourceID string

	// Locations.
	locationByGeometry string // $1 geometrie.id
	locationClass      string // $1 locatie.id
	insertLeaf         string
	insertGroup        string
	insertMembership   string

	insertInformationObject string
}

func newQueries(t Tables) queries {
	var (
		regeling       = t.table("regeling")
		regelingversie = t.table("regelingversie")
		geometrie      = t.table("geometrie")
		locatie        = t.table("locatie")
		groepLocatie   = t.table("groep_locatie")
		infoObject     = t.table("informatieobjectversie")
		stopWaarde     = t.codeTable("stop_waarde")
	)

	return queries{
		regulationVersionByExpression: fmt.Sprintf(
			`SELECT id FROM %s WHERE frbr_expression = $1`, regelingversie),
		regulationOfVersion: fmt.Sprintf(
			`SELECT r.id FROM %s r JOIN %s rv ON rv.regeling_id = r.id WHERE rv.id = $1`, regeling, regelingversie),
		authorityOfVersion: fmt.Sprintf(
			`SELECT eindverantwoordelijke_id FROM %s WHERE id = $1`, regelingversie),
		authorOfVersion: fmt.Sprintf(
			`SELECT maker_id FROM %s WHERE id = $1`, regelingversie),
		codeValue: fmt.Sprintf(
			`SELECT stop_id FROM %s WHERE id = $1`, stopWaarde),

		geometryExists: fmt.Sprintf(
			`SELECT EXISTS (SELECT 1 FROM %s WHERE geometrie_id = $1)`, geometrie),
		insertGeometry: fmt.Sprintf(
			`INSERT INTO %s (naam, geometrie_id, geometrie) VALUES ($1, $2, ST_GeomFromGML($3, %d)) RETURNING id`,
			geometrie, gioimport.SRID),
		geometryTypeByID: fmt.Sprintf(
			`SELECT ST_GeometryType(geometrie) FROM %s WHERE id = $1`, geometrie),
		geometryBySourceID: fmt.Sprintf(
			`SELECT id FROM %s WHERE geometrie_id = $1`, geometrie),

		locationByGeometry: fmt.Sprintf(
			`SELECT id FROM %s WHERE geometrie_id = $1 ORDER BY id LIMIT 1`, locatie),
		locationClass: fmt.Sprintf(
			`SELECT geometrietype FROM %s WHERE id = $1`, locatie),
		insertLeaf: fmt.Sprintf(
			`INSERT INTO %s (naam, datum_begin, ind_groep_jn, regeling_id, geometrietype, geometrie_id, identificatie)
			VALUES ($1, $2, false, $3, $4, $5, $6) RETURNING id`, locatie),
		insertGroup: fmt.Sprintf(
			`INSERT INTO %s (naam, datum_begin, ind_groep_jn, regeling_id, geometrietype, identificatie)
			VALUES ($1, $2, true, $3, $4, $5) RETURNING id`, locatie),
		insertMembership: fmt.Sprintf(
			`INSERT INTO %s (locatiegroep_id, locatie_id) VALUES ($1, $2)`, groepLocatie),

		insertInformationObject: fmt.Sprintf(
			`INSERT INTO %s (frbr_work, frbr_expression, soort_work_id, regeling_id, eindverantwoordelijke_id, maker_id,
			formaat_informatieobject_id, naam, officiele_titel, publicatie_instructie_id, stop_schema_versie,
			achtergrond_verwijzing, achtergrond_actualiteit, nauwkeurigheid, locatie_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, infoObject),
	}
}
