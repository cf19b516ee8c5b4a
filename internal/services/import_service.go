package services

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/gioimport/internal/db"
	"github.com/vvka-141/gioimport/internal/importer"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// storeRunner connects per connConfig and runs fn against a Store, bound to
// one transaction when singleTx is set.
type storeRunner func(ctx context.Context, connConfig *gioimport.ConnectionConfig, singleTx bool, fn func(gioimport.Store) error) error

// ImportService implements the Importer interface on top of a database connection.
// Thread-Safety: NOT safe for concurrent Import() calls on the same instance.
type ImportService struct {
	connectorFactory func(*gioimport.ConnectionConfig) (gioimport.Connector, error)
	logger           gioimport.Logger
	options          []importer.Option
	run              storeRunner
}

var _ gioimport.Importer = (*ImportService)(nil)

// NewImportService creates an ImportService. Panics on nil dependencies.
// opts are passed to every importer.Service the import runs.
func NewImportService(
	connectorFactory func(*gioimport.ConnectionConfig) (gioimport.Connector, error),
	logger gioimport.Logger,
	opts ...importer.Option,
) *ImportService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	svc := &ImportService{
		connectorFactory: connectorFactory,
		logger:           logger,
		options:          opts,
	}
	svc.run = svc.connectAndRun
	return svc
}

// Import validates the configuration, connects and runs the import pipeline.
func (s *ImportService) Import(ctx context.Context, config gioimport.ImportConfig) (*gioimport.ImportResult, error) {
	connConfig, err := s.validateAndParseConfig(config)
	if err != nil {
		return nil, err
	}

	var result *gioimport.ImportResult
	err = s.run(ctx, connConfig, config.SingleTransaction, func(store gioimport.Store) error {
		r, err := importer.NewService(store, s.logger, s.options...).Import(ctx, config)
		result = r
		return err
	})
	if err != nil {
		if config.SingleTransaction {
			s.logger.Verbose("Transaction rolled back")
		}
		return nil, err
	}
	if config.SingleTransaction {
		s.logger.Verbose("Transaction committed")
	}
	return result, nil
}

// validateAndParseConfig checks everything that can be checked before
// connecting and builds the connection configuration.
func (s *ImportService) validateAndParseConfig(config gioimport.ImportConfig) (*gioimport.ConnectionConfig, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := importer.CheckInputFile(config.InputFile); err != nil {
		return nil, err
	}

	s.logger.Verbose("Input file: %s", config.InputFile)
	s.logger.Verbose("Target schema: %s (codes in %s)", config.EffectiveSchema(), config.EffectiveCodeSchema())

	connConfig, err := db.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w: %w", gioimport.ErrInvalidConfig, err)
	}

	if config.AuthMethod != gioimport.AuthMethodStandard {
		connConfig.AuthMethod = config.AuthMethod
	}
	connConfig.AzureTenantID = config.AzureTenantID
	connConfig.AzureClientID = config.AzureClientID
	connConfig.AzureClientSecret = config.AzureClientSecret
	connConfig.AWSRegion = config.AWSRegion
	connConfig.GoogleInstance = config.GoogleInstance

	return connConfig, nil
}

func (s *ImportService) connectAndRun(ctx context.Context, connConfig *gioimport.ConnectionConfig, singleTx bool, fn func(gioimport.Store) error) error {
	connector, err := s.connectorFactory(connConfig)
	if err != nil {
		return fmt.Errorf("failed to create connector: %w", err)
	}

	s.logger.Verbose("Connecting to %s:%d/%s", connConfig.Host, connConfig.Port, connConfig.Database)
	pool, err := connector.Connect(ctx)
	if err != nil {
		return err
	}
	if closer, ok := connector.(io.Closer); ok {
		defer closer.Close()
	}
	defer pool.Close()

	if singleTx {
		return db.RunInTx(ctx, pool, fn)
	}
	return fn(db.NewStore(pool))
}
