package importer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vvka-141/gioimport/internal/gio"
	"github.com/vvka-141/gioimport/internal/identifier"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// Service runs the import pipeline against one Store.
// Thread-Safety: NOT safe for concurrent Import() calls; imports assume
// exclusive access to the rows they touch.
type Service struct {
	store     gioimport.Store
	logger    gioimport.Logger
	extractor *gio.Extractor
	now       func() time.Time
	token     identifier.Generator
}

// Option customizes a Service.
type Option func(*Service)

// WithClock sets the clock that provides the start date of new locations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTokenGenerator sets the source of identifier tokens.
func WithTokenGenerator(gen identifier.Generator) Option {
	return func(s *Service) { s.token = gen }
}

// WithExtractor replaces the default document extractor.
func WithExtractor(e *gio.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// NewService creates a Service. Panics on nil dependencies.
func NewService(store gioimport.Store, logger gioimport.Logger, opts ...Option) *Service {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	s := &Service{
		store:     store,
		logger:    logger,
		extractor: gio.NewExtractor(nil),
		now:       time.Now,
		token:     identifier.Token,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import validates config, then resolves metadata, extracts the document,
// aggregates its locations and writes the information object, in that order.
// Nothing is written when the metadata chain or the document is incomplete.
func (s *Service) Import(ctx context.Context, config gioimport.ImportConfig) (*gioimport.ImportResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := CheckInputFile(config.InputFile); err != nil {
		return nil, err
	}

	started := s.now()
	tables := Tables{Schema: config.EffectiveSchema(), CodeSchema: config.EffectiveCodeSchema()}

	s.logger.Verbose("Resolving regulation version %s", config.RegelingExpression)
	md, err := ResolveMetadata(ctx, s.store, tables, config.RegelingExpression)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve metadata: %w", err)
	}
	s.logger.Verbose("Regulation %d, authority %d (%s), author %d",
		md.RegulationID, md.AuthorityID, md.AuthorityCode, md.AuthorID)

	doc, err := s.extract(config.InputFile)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Importing %d locations from %s", len(doc.Locations), doc.Expression)

	aggregator := NewAggregator(
		NewGeometries(s.store, tables),
		NewLocations(s.store, tables, s.token),
		s.logger,
	)
	group, err := aggregator.Aggregate(ctx, doc.Locations, GroupSpec{
		Name:          config.Name,
		StartDate:     started,
		RegulationID:  md.RegulationID,
		AuthorityCode: md.AuthorityCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import locations: %w", err)
	}

	err = NewInformationObjects(s.store, tables).WriteInformationObject(ctx, InformationObject{
		Work:                doc.Work,
		Expression:          doc.Expression,
		Name:                config.Name,
		Metadata:            md,
		BackgroundReference: doc.BackgroundReference,
		BackgroundCurrency:  doc.BackgroundCurrency,
		Accuracy:            doc.Accuracy,
		GroupLocationID:     group.GroupID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write information object: %w", err)
	}

	return &gioimport.ImportResult{
		Work:               doc.Work,
		Expression:         doc.Expression,
		Name:               config.Name,
		GroupLocationID:    group.GroupID,
		GeometryClass:      group.Class,
		Locations:          len(group.Members),
		GeometriesInserted: group.Inserted,
		GeometriesReused:   group.Reused,
		Started:            started,
		Duration:           s.now().Sub(started),
	}, nil
}

func (s *Service) extract(path string) (*gio.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errorf(gioimport.ErrConfiguration, "cannot open input file %s: %v", path, err)
	}
	defer f.Close()

	doc, err := s.extractor.Extract(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// CheckInputFile reports ErrConfiguration unless path names a regular, existing file.
func CheckInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errorf(gioimport.ErrConfiguration, "input file %s does not exist", path)
	}
	if info.IsDir() {
		return errorf(gioimport.ErrConfiguration, "input file %s is a directory", path)
	}
	return nil
}

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
