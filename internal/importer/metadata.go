package importer

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// ResolveMetadata looks up the regulation-version chain for expression:
// regelingversie, its regeling, the responsible authority, the author
// and the authority's short code. It only reads and stops at the first
// missing link with a *gioimport.NotFoundError.
func ResolveMetadata(ctx context.Context, store gioimport.Store, tables Tables, expression string) (gioimport.Metadata, error) {
	q := newQueries(tables)
	var md gioimport.Metadata

	if err := scanOne(ctx, store, q.regulationVersionByExpression, "regulation version", expression, &md.RegulationVersionID); err != nil {
		return md, err
	}
	if err := scanOne(ctx, store, q.regulationOfVersion, "regulation", md.RegulationVersionID, &md.RegulationID); err != nil {
		return md, err
	}

	var err error
	if md.AuthorityID, err = nullableID(ctx, store, q.authorityOfVersion, "responsible authority", md.RegulationVersionID); err != nil {
		return md, err
	}
	if md.AuthorID, err = nullableID(ctx, store, q.authorOfVersion, "author", md.RegulationVersionID); err != nil {
		return md, err
	}

	var stopID pgtype.Text
	if err := scanOne(ctx, store, q.codeValue, "authority code", md.AuthorityID, &stopID); err != nil {
		return md, err
	}
	md.AuthorityCode = ShortCode(stopID.String)
	if !stopID.Valid || md.AuthorityCode == "" {
		return md, gioimport.NewNotFound("authority code", md.AuthorityID)
	}

	return md, nil
}

// ShortCode returns the final path segment of a code value URI,
// e.g. "gm0363" for "/tooi/id/gemeente/gm0363".
func ShortCode(stopID string) string {
	return stopID[strings.LastIndex(stopID, "/")+1:]
}

// scanOne runs a single-row lookup, mapping an empty result to NotFoundError(entity).
func scanOne(ctx context.Context, store gioimport.Store, sql, entity string, key any, dest any) error {
	err := store.QueryRow(ctx, sql, key).Scan(dest)
	if errors.Is(err, pgx.ErrNoRows) {
		return gioimport.NewNotFound(entity, key)
	}
	if err != nil {
		return gioimport.StorageError("lookup "+entity, err)
	}
	return nil
}

func nullableID(ctx context.Context, store gioimport.Store, sql, entity string, key any) (int64, error) {
	var id pgtype.Int8
	if err := scanOne(ctx, store, sql, entity, key, &id); err != nil {
		return 0, err
	}
	if !id.Valid {
		return 0, gioimport.NewNotFound(entity, key)
	}
	return id.Int64, nil
}
