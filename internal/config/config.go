package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	SSLCert        string `yaml:"sslcert,omitempty"`
	SSLKey         string `yaml:"sslkey,omitempty"`
	SSLRootCert    string `yaml:"sslrootcert,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// ImportConfig holds defaults for the import command.
type ImportConfig struct {
	Name               string `yaml:"name,omitempty"`
	RegelingExpression string `yaml:"regeling_expression,omitempty"`
	Schema             string `yaml:"schema,omitempty"`
	CodeSchema         string `yaml:"code_schema,omitempty"`
	SingleTransaction  bool   `yaml:"single_transaction,omitempty"`
	MetricsTextfile    string `yaml:"metrics_textfile,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Import     ImportConfig     `yaml:"import"`
	Timeout    string           `yaml:"timeout"`
}

const ConfigFileName = "gioimport.yaml"

// Load reads gioimport.yaml from dir. Unknown keys are rejected so that a
// misspelled setting does not silently fall back to its default.
func Load(dir string) (*ProjectConfig, error) {
	path := filepath.Join(dir, ConfigFileName)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg ProjectConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}
