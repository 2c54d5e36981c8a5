// Package config resolves service settings from defaults, an optional YAML
// file, .env files and the process environment, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vvka-141/hellodb/pkg/hellodb"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is looked up in the working directory when --config is not given.
const ConfigFileName = "hellodb.yaml"

// Environment variable names.
const (
	EnvAppEnv            = "APP_ENV"
	EnvNodeEnv           = "NODE_ENV"
	EnvAWSRegion         = "AWS_REGION"
	EnvDBHost            = "DB_HOST"
	EnvDBPort            = "DB_PORT"
	EnvDBName            = "DB_NAME"
	EnvUsernameParameter = "DB_USERNAME_SSM_PARAM"
	EnvPasswordParameter = "DB_PASSWORD_SSM_PARAM"
	EnvTLSStrict         = "DB_TLS_STRICT"
	EnvAuthMethod        = "DB_AUTH_METHOD"
	EnvConnectTimeout    = "DB_CONNECT_TIMEOUT"
	EnvIdleTimeout       = "DB_IDLE_TIMEOUT"
	EnvQueryTimeout      = "DB_QUERY_TIMEOUT"
	EnvHTTPPort          = "CONTAINER_PORT"
	EnvSecretMaxRetries  = "SSM_MAX_RETRIES"
	EnvSecretTimeout     = "SSM_TIMEOUT"
)

// EnvironmentProduction enables strict TLS unless DB_TLS_STRICT overrides it.
const EnvironmentProduction = "production"

// AuthMethod selects where the database password comes from.
type AuthMethod string

const (
	AuthMethodSSM    AuthMethod = "ssm"     // password parameter in Parameter Store
	AuthMethodAWSIAM AuthMethod = "aws-iam" // RDS IAM auth token
)

type DatabaseConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port,omitempty"`
	Name              string `yaml:"name"`
	UsernameParameter string `yaml:"username_parameter"`
	PasswordParameter string `yaml:"password_parameter,omitempty"`
	AuthMethod        string `yaml:"auth_method,omitempty"`
	TLSStrict         *bool  `yaml:"tls_strict,omitempty"`
	ConnectTimeout    string `yaml:"connect_timeout,omitempty"`
	IdleTimeout       string `yaml:"idle_timeout,omitempty"`
	QueryTimeout      string `yaml:"query_timeout,omitempty"`
}

type AWSConfig struct {
	Region     string `yaml:"region,omitempty"`
	MaxRetries int    `yaml:"max_retries,omitempty"`
	Timeout    string `yaml:"timeout,omitempty"`
}

type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// FileConfig mirrors hellodb.yaml.
type FileConfig struct {
	Environment string         `yaml:"environment,omitempty"`
	Database    DatabaseConfig `yaml:"database"`
	AWS         AWSConfig      `yaml:"aws"`
	Server      ServerConfig   `yaml:"server"`
}

// Settings is the fully resolved configuration.
type Settings struct {
	Environment string
	AWSRegion   string

	DBHost            string
	DBPort            int
	DBName            string
	UsernameParameter string
	PasswordParameter string
	AuthMethod        AuthMethod
	TLSStrict         bool

	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
	QueryTimeout   time.Duration

	SecretMaxAttempts int
	SecretTimeout     time.Duration

	HTTPPort int

	tlsOverride *bool
}

// Defaults returns settings with every optional value filled in.
func Defaults() *Settings {
	return &Settings{
		Environment:       "development",
		AWSRegion:         hellodb.DefaultAWSRegion,
		DBPort:            hellodb.DefaultDatabasePort,
		AuthMethod:        AuthMethodSSM,
		ConnectTimeout:    hellodb.DefaultConnectTimeout,
		IdleTimeout:       hellodb.DefaultIdleTimeout,
		QueryTimeout:      hellodb.DefaultQueryTimeout,
		SecretMaxAttempts: hellodb.DefaultSecretMaxAttempts,
		SecretTimeout:     hellodb.DefaultSecretTimeout,
		HTTPPort:          hellodb.DefaultHTTPPort,
	}
}

// Load reads a YAML config file.
func Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}

// LoadEnvFiles loads .env files into the process environment.
// Variables that are already set are not overridden. Missing files are
// skipped only when optional is true.
func LoadEnvFiles(optional bool, paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if optional && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// Resolve layers file (may be nil) and the environment over Defaults.
// lookup is usually os.LookupEnv.
func Resolve(file *FileConfig, lookup func(string) (string, bool)) (*Settings, error) {
	s := Defaults()
	var errs []error

	if file != nil {
		errs = append(errs, s.applyFile(file)...)
	}
	errs = append(errs, s.applyEnv(lookup)...)

	s.TLSStrict = s.IsProduction()
	if s.tlsOverride != nil {
		s.TLSStrict = *s.tlsOverride
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyFile(f *FileConfig) []error {
	var errs []error
	setString(&s.Environment, f.Environment)
	setString(&s.AWSRegion, f.AWS.Region)
	setString(&s.DBHost, f.Database.Host)
	setString(&s.DBName, f.Database.Name)
	setString(&s.UsernameParameter, f.Database.UsernameParameter)
	setString(&s.PasswordParameter, f.Database.PasswordParameter)
	if f.Database.Port > 0 {
		s.DBPort = f.Database.Port
	}
	if f.Database.AuthMethod != "" {
		s.AuthMethod = AuthMethod(strings.ToLower(f.Database.AuthMethod))
	}
	if f.Database.TLSStrict != nil {
		strict := *f.Database.TLSStrict
		s.tlsOverride = &strict
	}
	if f.AWS.MaxRetries > 0 {
		s.SecretMaxAttempts = f.AWS.MaxRetries
	}
	if f.Server.Port > 0 {
		s.HTTPPort = f.Server.Port
	}
	errs = appendErr(errs, setDuration(&s.ConnectTimeout, "database.connect_timeout", f.Database.ConnectTimeout))
	errs = appendErr(errs, setDuration(&s.IdleTimeout, "database.idle_timeout", f.Database.IdleTimeout))
	errs = appendErr(errs, setDuration(&s.QueryTimeout, "database.query_timeout", f.Database.QueryTimeout))
	errs = appendErr(errs, setDuration(&s.SecretTimeout, "aws.timeout", f.AWS.Timeout))
	return errs
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) []error {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	var errs []error
	if env := get(EnvAppEnv); env != "" {
		s.Environment = env
	} else {
		setString(&s.Environment, get(EnvNodeEnv))
	}
	setString(&s.AWSRegion, get(EnvAWSRegion))
	setString(&s.DBHost, get(EnvDBHost))
	setString(&s.DBName, get(EnvDBName))
	setString(&s.UsernameParameter, get(EnvUsernameParameter))
	setString(&s.PasswordParameter, get(EnvPasswordParameter))
	if v := get(EnvAuthMethod); v != "" {
		s.AuthMethod = AuthMethod(strings.ToLower(v))
	}

	errs = appendErr(errs, setInt(&s.DBPort, EnvDBPort, get(EnvDBPort)))
	errs = appendErr(errs, setInt(&s.HTTPPort, EnvHTTPPort, get(EnvHTTPPort)))
	errs = appendErr(errs, setInt(&s.SecretMaxAttempts, EnvSecretMaxRetries, get(EnvSecretMaxRetries)))
	errs = appendErr(errs, setDuration(&s.SecretTimeout, EnvSecretTimeout, get(EnvSecretTimeout)))
	errs = appendErr(errs, setDuration(&s.ConnectTimeout, EnvConnectTimeout, get(EnvConnectTimeout)))
	errs = appendErr(errs, setDuration(&s.IdleTimeout, EnvIdleTimeout, get(EnvIdleTimeout)))
	errs = appendErr(errs, setDuration(&s.QueryTimeout, EnvQueryTimeout, get(EnvQueryTimeout)))

	if v := get(EnvTLSStrict); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be true or false, got %q: %w", EnvTLSStrict, v, hellodb.ErrInvalidConfig))
		} else {
			s.tlsOverride = &strict
		}
	}
	return errs
}

// Validate checks that every required setting is present and sane.
// It returns a multi-error if multiple validation failures occur.
func (s *Settings) Validate() error {
	var errs []error

	required := []struct{ name, value string }{
		{EnvDBHost, s.DBHost},
		{EnvDBName, s.DBName},
		{EnvUsernameParameter, s.UsernameParameter},
	}
	if s.AuthMethod != AuthMethodAWSIAM {
		required = append(required, struct{ name, value string }{EnvPasswordParameter, s.PasswordParameter})
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required: %w", r.name, hellodb.ErrInvalidConfig))
		}
	}

	switch s.AuthMethod {
	case AuthMethodSSM, AuthMethodAWSIAM:
	default:
		errs = append(errs, fmt.Errorf("%s %q: %w", EnvAuthMethod, s.AuthMethod, hellodb.ErrUnsupportedAuthMethod))
	}

	if s.DBPort < 1 || s.DBPort > 65535 {
		errs = append(errs, fmt.Errorf("%s must be between 1 and 65535, got %d: %w", EnvDBPort, s.DBPort, hellodb.ErrInvalidConfig))
	}
	if s.HTTPPort < 1 || s.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("%s must be between 1 and 65535, got %d: %w", EnvHTTPPort, s.HTTPPort, hellodb.ErrInvalidConfig))
	}
	if s.SecretMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1: %w", EnvSecretMaxRetries, hellodb.ErrInvalidConfig))
	}
	if s.AWSRegion == "" {
		errs = append(errs, fmt.Errorf("%s is required: %w", EnvAWSRegion, hellodb.ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the environment designation is production.
func (s *Settings) IsProduction() bool {
	return strings.EqualFold(s.Environment, EnvironmentProduction)
}

// TLSPolicy maps TLSStrict onto the database TLS policy.
func (s *Settings) TLSPolicy() hellodb.TLSPolicy {
	if s.TLSStrict {
		return hellodb.TLSStrict
	}
	return hellodb.TLSPermissive
}

// FlowConfig extracts the greeting flow's static configuration.
func (s *Settings) FlowConfig() hellodb.FlowConfig {
	return hellodb.FlowConfig{
		DatabaseHost:   s.DBHost,
		DatabasePort:   s.DBPort,
		DatabaseName:   s.DBName,
		UsernameSecret: s.UsernameParameter,
		PasswordSecret: s.PasswordParameter,
		TLS:            s.TLSPolicy(),
		ConnectTimeout: s.ConnectTimeout,
		IdleTimeout:    s.IdleTimeout,
		QueryTimeout:   s.QueryTimeout,
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, name, v string) error {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q: %w", name, v, hellodb.ErrInvalidConfig)
	}
	*dst = n
	return nil
}

// setDuration accepts Go durations ("30s") and bare integers as milliseconds.
func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
		*dst = time.Duration(ms) * time.Millisecond
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fmt.Errorf("%s must be a duration like 30s, got %q: %w", name, v, hellodb.ErrInvalidConfig)
	}
	*dst = d
	return nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}
