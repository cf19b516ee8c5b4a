package importer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// currencyLayout is the date format of gio:achtergrondActualiteit.
const currencyLayout = "2006-01-02"

// InformationObject is the informatieobjectversie row of one run.
type InformationObject struct {
	Work       string
	Expression string
	Name       string
	Metadata   gioimport.Metadata

	// Raw optional fields as extracted; empty is stored as NULL.
	BackgroundReference string
	BackgroundCurrency  string
	Accuracy            string

	GroupLocationID int64
}

// InformationObjects writes bzk.informatieobjectversie.
type InformationObjects struct {
	store gioimport.Store
	q     queries
}

// NewInformationObjects returns an InformationObjects writing through store.
func NewInformationObjects(store gioimport.Store, tables Tables) *InformationObjects {
	if store == nil {
		panic("store cannot be nil")
	}
	return &InformationObjects{store: store, q: newQueries(tables)}
}

// WriteInformationObject parses the optional fields and inserts the row.
// The official title mirrors the work URI.
func (w *InformationObjects) WriteInformationObject(ctx context.Context, obj InformationObject) error {
	accuracy, err := ParseAccuracy(obj.Accuracy)
	if err != nil {
		return err
	}
	currency, err := ParseCurrency(obj.BackgroundCurrency)
	if err != nil {
		return err
	}

	_, err = w.store.Exec(ctx, w.q.insertInformationObject,
		obj.Work,
		obj.Expression,
		gioimport.SoortWorkID,
		obj.Metadata.RegulationID,
		obj.Metadata.AuthorityID,
		obj.Metadata.AuthorID,
		gioimport.FormaatInformatieobjectID,
		obj.Name,
		obj.Work,
		gioimport.PublicatieInstructieID,
		gioimport.StopSchemaVersie,
		optionalText(obj.BackgroundReference),
		currency,
		accuracy,
		obj.GroupLocationID,
	)
	if err != nil {
		return gioimport.StorageError("insert information object "+obj.Expression, err)
	}
	return nil
}

// ParseAccuracy parses gio:nauwkeurigheid. Empty is NULL.
func ParseAccuracy(s string) (pgtype.Int4, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Int4{}, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return pgtype.Int4{}, errorf(gioimport.ErrInvalidFormat, "accuracy %q is not an integer", s)
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}, nil
}

// ParseCurrency parses gio:achtergrondActualiteit as a calendar date. Empty is NULL.
func ParseCurrency(s string) (pgtype.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{}, nil
	}
	t, err := time.Parse(currencyLayout, s)
	if err != nil {
		return pgtype.Date{}, errorf(gioimport.ErrInvalidFormat, "background currency %q is not a date", s)
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	return pgtype.Text{String: s, Valid: s != ""}
}
