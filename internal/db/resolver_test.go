package db

import (
	"errors"
	"testing"

	"github.com/vvka-141/gioimport/internal/config"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

func TestGranularConnFlags_IsEmpty(t *testing.T) {
	if !(&GranularConnFlags{}).IsEmpty() {
		t.Error("zero flags should be empty")
	}
	if !(&GranularConnFlags{Database: "db"}).IsEmpty() {
		t.Error("database alone should count as empty")
	}
	if (&GranularConnFlags{Port: 5433}).IsEmpty() {
		t.Error("port should make flags non-empty")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PGHOST", "envhost")
	t.Setenv("PGSSLMODE", "require")
	t.Setenv("GIOIMPORT_CONNECTION", "postgresql://localhost/gio")
	t.Setenv("AWS_REGION", "eu-west-1")

	env := LoadFromEnvironment()
	if env.PGHOST != "envhost" || env.PGSSLMODE != "require" {
		t.Errorf("PG vars = %+v", env)
	}
	if env.GIOIMPORT_CONNECTION != "postgresql://localhost/gio" {
		t.Errorf("GIOIMPORT_CONNECTION = %q", env.GIOIMPORT_CONNECTION)
	}
	if env.AWS_REGION != "eu-west-1" {
		t.Errorf("AWS_REGION = %q", env.AWS_REGION)
	}
}

func TestResolveConnectionParams_Precedence(t *testing.T) {
	project := &config.ProjectConfig{Connection: config.ConnectionConfig{
		Host:     "yamlhost",
		Port:     6000,
		Username: "yamluser",
		Database: "yamldb",
		SSLMode:  "disable",
	}}

	tests := []struct {
		name         string
		connStr      string
		flags        *GranularConnFlags
		env          *EnvVars
		wantHost     string
		wantPort     int
		wantUser     string
		wantDatabase string
		wantSSLMode  string
		wantPassword string
	}{
		{
			name:         "yaml fills everything",
			env:          &EnvVars{},
			wantHost:     "yamlhost",
			wantPort:     6000,
			wantUser:     "yamluser",
			wantDatabase: "yamldb",
			wantSSLMode:  "disable",
		},
		{
			name:         "environment beats yaml",
			env:          &EnvVars{PGHOST: "envhost", PGPORT: "6100", PGUSER: "envuser", PGDATABASE: "envdb", PGPASSWORD: "pw"},
			wantHost:     "envhost",
			wantPort:     6100,
			wantUser:     "envuser",
			wantDatabase: "envdb",
			wantSSLMode:  "disable",
			wantPassword: "pw",
		},
		{
			name:         "flags beat environment",
			flags:        &GranularConnFlags{Host: "flaghost", Port: 6200, Username: "flaguser", Database: "flagdb", SSLMode: "require"},
			env:          &EnvVars{PGHOST: "envhost", PGPORT: "6100"},
			wantHost:     "flaghost",
			wantPort:     6200,
			wantUser:     "flaguser",
			wantDatabase: "flagdb",
			wantSSLMode:  "require",
		},
		{
			name:         "connection flag with database override",
			connStr:      "postgresql://connuser@connhost:6300/conndb",
			flags:        &GranularConnFlags{Database: "other"},
			env:          &EnvVars{PGSSLMODE: "verify-ca", PGPASSWORD: "pw"},
			wantHost:     "connhost",
			wantPort:     6300,
			wantUser:     "connuser",
			wantDatabase: "other",
			wantSSLMode:  "verify-ca",
			wantPassword: "pw",
		},
		{
			name:         "GIOIMPORT_CONNECTION beats DATABASE_URL",
			env:          &EnvVars{GIOIMPORT_CONNECTION: "postgresql://a@gio:5432/gio", DATABASE_URL: "postgresql://b@heroku:5432/heroku"},
			wantHost:     "gio",
			wantPort:     5432,
			wantUser:     "a",
			wantDatabase: "gio",
			wantSSLMode:  "prefer",
		},
		{
			name:         "DATABASE_URL",
			env:          &EnvVars{DATABASE_URL: "postgresql://b@heroku:5432/heroku?sslmode=require"},
			wantHost:     "heroku",
			wantPort:     5432,
			wantUser:     "b",
			wantDatabase: "heroku",
			wantSSLMode:  "require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveConnectionParams(tt.connStr, tt.flags, nil, tt.env, project)
			if err != nil {
				t.Fatalf("ResolveConnectionParams() error = %v", err)
			}
			if got.Host != tt.wantHost || got.Port != tt.wantPort {
				t.Errorf("host:port = %s:%d, want %s:%d", got.Host, got.Port, tt.wantHost, tt.wantPort)
			}
			if got.Username != tt.wantUser {
				t.Errorf("Username = %q, want %q", got.Username, tt.wantUser)
			}
			if got.Database != tt.wantDatabase {
				t.Errorf("Database = %q, want %q", got.Database, tt.wantDatabase)
			}
			if got.SSLMode != tt.wantSSLMode {
				t.Errorf("SSLMode = %q, want %q", got.SSLMode, tt.wantSSLMode)
			}
			if got.Password != tt.wantPassword {
				t.Errorf("Password = %q, want %q", got.Password, tt.wantPassword)
			}
			if got.AuthMethod != gioimport.AuthMethodStandard {
				t.Errorf("AuthMethod = %v, want standard", got.AuthMethod)
			}
		})
	}
}

func TestResolveConnectionParams_Defaults(t *testing.T) {
	t.Setenv("USER", "localuser")
	t.Setenv("USERNAME", "")

	got, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Host != "localhost" || got.Port != 5432 || got.Database != "postgres" || got.SSLMode != "prefer" {
		t.Errorf("defaults = %+v", got)
	}
	if got.Username != "localuser" {
		t.Errorf("Username = %q, want localuser", got.Username)
	}
}

func TestResolveConnectionParams_Errors(t *testing.T) {
	tests := []struct {
		name    string
		connStr string
		flags   *GranularConnFlags
		cloud   *CloudFlags
		env     *EnvVars
		project *config.ProjectConfig
		wantErr error
	}{
		{
			name:    "connection string with granular flags",
			connStr: "postgresql://localhost/db",
			flags:   &GranularConnFlags{Host: "other"},
			wantErr: gioimport.ErrInvalidConfig,
		},
		{
			name:    "invalid PGPORT",
			env:     &EnvVars{PGPORT: "abc"},
			wantErr: gioimport.ErrInvalidConfig,
		},
		{
			name:    "unparseable connection string",
			connStr: "garbage",
			wantErr: gioimport.ErrInvalidConfig,
		},
		{
			name:    "two cloud providers",
			cloud:   &CloudFlags{AWS: true, Google: true},
			wantErr: gioimport.ErrInvalidConfig,
		},
		{
			name:    "unknown yaml auth method",
			project: &config.ProjectConfig{Connection: config.ConnectionConfig{AuthMethod: "kerberos"}},
			wantErr: gioimport.ErrUnsupportedAuthMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := tt.env
			if env == nil {
				env = &EnvVars{}
			}
			_, err := ResolveConnectionParams(tt.connStr, tt.flags, tt.cloud, env, tt.project)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveConnectionParams_AuthMethod(t *testing.T) {
	t.Run("client certificate", func(t *testing.T) {
		got, err := ResolveConnectionParams("postgresql://u@h/db?sslcert=/a.crt&sslkey=/a.key", nil, nil, &EnvVars{}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.AuthMethod != gioimport.AuthMethodCertificate {
			t.Errorf("AuthMethod = %v, want certificate", got.AuthMethod)
		}
	})

	t.Run("aws flag takes region from environment", func(t *testing.T) {
		got, err := ResolveConnectionParams("", &GranularConnFlags{Host: "rds"}, &CloudFlags{AWS: true}, &EnvVars{AWS_REGION: "eu-central-1"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.AuthMethod != gioimport.AuthMethodAWSIAM || got.AWSRegion != "eu-central-1" {
			t.Errorf("got %v region %q", got.AuthMethod, got.AWSRegion)
		}
	})

	t.Run("google instance flag selects google", func(t *testing.T) {
		got, err := ResolveConnectionParams("", nil, &CloudFlags{GoogleInstance: "p:r:i"}, &EnvVars{}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.AuthMethod != gioimport.AuthMethodGoogleIAM || got.GoogleInstance != "p:r:i" {
			t.Errorf("got %v instance %q", got.AuthMethod, got.GoogleInstance)
		}
	})

	t.Run("azure environment", func(t *testing.T) {
		env := &EnvVars{AZURE_TENANT_ID: "t", AZURE_CLIENT_ID: "c", AZURE_CLIENT_SECRET: "s"}
		got, err := ResolveConnectionParams("", nil, nil, env, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.AuthMethod != gioimport.AuthMethodAzureEntraID {
			t.Errorf("AuthMethod = %v, want azure", got.AuthMethod)
		}
		if got.AzureTenantID != "t" || got.AzureClientID != "c" || got.AzureClientSecret != "s" {
			t.Errorf("azure credentials = %q %q %q", got.AzureTenantID, got.AzureClientID, got.AzureClientSecret)
		}
	})

	t.Run("azure flag overrides tenant", func(t *testing.T) {
		env := &EnvVars{AZURE_TENANT_ID: "env-tenant"}
		got, err := ResolveConnectionParams("", nil, &CloudFlags{AzureTenantID: "flag-tenant"}, env, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.AzureTenantID != "flag-tenant" {
			t.Errorf("AzureTenantID = %q, want flag-tenant", got.AzureTenantID)
		}
	})

	t.Run("yaml auth method", func(t *testing.T) {
		project := &config.ProjectConfig{Connection: config.ConnectionConfig{AuthMethod: "aws", AWSRegion: "us-east-2"}}
		got, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, project)
		if err != nil {
			t.Fatal(err)
		}
		if got.AuthMethod != gioimport.AuthMethodAWSIAM || got.AWSRegion != "us-east-2" {
			t.Errorf("got %v region %q", got.AuthMethod, got.AWSRegion)
		}
	})
}

func TestParseAuthMethod(t *testing.T) {
	tests := map[string]gioimport.AuthMethod{
		"":               gioimport.AuthMethodStandard,
		"password":       gioimport.AuthMethodStandard,
		"Certificate":    gioimport.AuthMethodCertificate,
		" aws-iam ":      gioimport.AuthMethodAWSIAM,
		"gcp":            gioimport.AuthMethodGoogleIAM,
		"azure_entra_id": gioimport.AuthMethodAzureEntraID,
	}
	for in, want := range tests {
		got, err := ParseAuthMethod(in)
		if err != nil {
			t.Errorf("ParseAuthMethod(%q) error = %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseAuthMethod(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseAuthMethod("ldap"); !errors.Is(err, gioimport.ErrUnsupportedAuthMethod) {
		t.Errorf("ParseAuthMethod(ldap) error = %v", err)
	}
}

func TestFormatAuthMethod_RoundTrip(t *testing.T) {
	for m := gioimport.AuthMethodStandard; m <= gioimport.AuthMethodAzureEntraID; m++ {
		got, err := ParseAuthMethod(FormatAuthMethod(m))
		if err != nil {
			t.Fatalf("ParseAuthMethod(FormatAuthMethod(%v)) error = %v", m, err)
		}
		if got != m {
			t.Errorf("round trip of %v = %v", m, got)
		}
	}
}
