package gioimport

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess             = 0  // Import completed successfully
	ExitGeneralError        = 1  // Unknown or unclassified error
	ExitUsageError          = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic               = 3  // Internal panic (unexpected crash)
	ExitConfigError         = 10 // Invalid configuration or missing input file
	ExitConnectionError     = 11 // Failed to connect to database
	ExitStorageError        = 13 // A statement against the database failed
	ExitMalformedInput      = 20 // Required XML structure absent
	ExitNotFound            = 21 // Required lookup row missing
	ExitUnsupportedGeometry = 22 // Geometry could not be classified
	ExitInvalidFormat       = 23 // Optional field not parseable
)

// Fixed classification values written with every information object version.
// They are part of the import contract and not configurable.
const (
	SoortWorkID               = 2056
	FormaatInformatieobjectID = 1410
	PublicatieInstructieID    = 3
	StopSchemaVersie          = "1.3.0"
)

const (
	// DefaultSchema holds the geometrie, locatie, groep_locatie,
	// informatieobjectversie, regeling and regelingversie tables.
	DefaultSchema = "bzk"

	// DefaultCodeSchema holds the stop_waarde code table.
	DefaultCodeSchema = "public"

	// SRID is the spatial reference (RD New) used when building geometries from GML.
	SRID = 28992

	// DefaultTimeout bounds a whole import run.
	DefaultTimeout = 5 * time.Minute

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of connection retry attempts.
	DefaultRetryMaxAttempts = 3
)
