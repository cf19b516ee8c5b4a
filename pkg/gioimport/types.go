package gioimport

import (
	"errors"
	"fmt"
	"time"
)

// ImportConfig contains all parameters needed for one import run.
type ImportConfig struct {
	// InputFile is the path to the GIO XML document.
	InputFile string

	// Name is the display name of the produced group location and information object.
	Name string

	// RegelingExpression is the FRBR expression URI of the regulation version
	// the information object belongs to.
	RegelingExpression string

	// Schema and CodeSchema qualify the target tables. Empty means the defaults.
	Schema     string
	CodeSchema string

	// SingleTransaction runs every write in one transaction that is rolled
	// back on failure. When false each statement autocommits.
	SingleTransaction bool

	// ConnectionString is the PostgreSQL connection string (URI or ADO.NET format).
	ConnectionString string

	// Timeout bounds the whole run.
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Cloud authentication parameters, used by the matching AuthMethod.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
	AWSRegion         string
	GoogleInstance    string
}

// Validate checks if the ImportConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ImportConfig) Validate() error {
	var errs []error

	if c.InputFile == "" {
		errs = append(errs, fmt.Errorf("InputFile is required: %w", ErrInvalidConfig))
	}
	if c.Name == "" {
		errs = append(errs, fmt.Errorf("Name is required: %w", ErrInvalidConfig))
	}
	if c.RegelingExpression == "" {
		errs = append(errs, fmt.Errorf("RegelingExpression is required: %w", ErrInvalidConfig))
	}
	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}
	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("unknown auth method %v: %w", c.AuthMethod, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// EffectiveSchema returns Schema or DefaultSchema.
func (c *ImportConfig) EffectiveSchema() string {
	if c.Schema == "" {
		return DefaultSchema
	}
	return c.Schema
}

// EffectiveCodeSchema returns CodeSchema or DefaultCodeSchema.
func (c *ImportConfig) EffectiveCodeSchema() string {
	if c.CodeSchema == "" {
		return DefaultCodeSchema
	}
	return c.CodeSchema
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	SSLCert     string
	SSLKey      string
	SSLRootCert string

	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// If tenant, client and secret are all set, Service Principal authentication
	// is used; otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	AWSRegion      string
	GoogleInstance string // project:region:instance
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodCertificate                    // mTLS
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodCertificate:
		return "Certificate"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// GeometryClass is the stored geometrietype of a geometry or location.
type GeometryClass string

const (
	GeometryPoint GeometryClass = "punt"
	GeometryLine  GeometryClass = "lijn"
	GeometryArea  GeometryClass = "vlak"
)

// ObjectType returns the identifier segment for the class: "gebied" for
// areas, the class name otherwise.
func (c GeometryClass) ObjectType() string {
	if c == GeometryArea {
		return "gebied"
	}
	return string(c)
}

// IsValid reports whether c is one of the three known classes.
func (c GeometryClass) IsValid() bool {
	switch c {
	case GeometryPoint, GeometryLine, GeometryArea:
		return true
	}
	return false
}

// Metadata is the resolved regulation-version chain an import writes against.
type Metadata struct {
	RegulationVersionID int64
	RegulationID        int64
	AuthorityID         int64
	AuthorID            int64

	// AuthorityCode is the short code of the responsible authority,
	// e.g. "gm0363" from ".../overheid/gemeente/gm0363".
	AuthorityCode string
}

// ImportResult summarizes a completed run.
type ImportResult struct {
	Work       string
	Expression string
	Name       string

	GroupLocationID int64
	GeometryClass   GeometryClass

	// Locations is the number of member locations linked to the group.
	Locations          int
	GeometriesInserted int
	GeometriesReused   int

	Started  time.Time
	Duration time.Duration
}
