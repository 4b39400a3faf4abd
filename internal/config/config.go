package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Supported connection drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config represents the top-level YAML configuration.
type Config struct {
	Connection     Connection     `yaml:"connection"`
	Schema         string         `yaml:"schema"`
	ExcludeTables  []string       `yaml:"exclude_tables"`
	Classification Classification `yaml:"classification"`
	LogLevel       string         `yaml:"log_level"`
}

// Connection holds database connection parameters.
type Connection struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// Classification tunes column grouping.
type Classification struct {
	LimitedThreshold int64 `yaml:"limited_threshold"`
	SmallStringSize  int   `yaml:"small_string_size"`
}

// DSN builds the driver-specific connection string.
func (c *Connection) DSN() string {
	switch c.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.DBName = c.Database
		return mc.FormatDSN()
	case DriverSQLite:
		return c.Path
	default:
		return fmt.Sprintf(
			"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
			quoteDSNValue(c.Host), c.Port, quoteDSNValue(c.Database),
			quoteDSNValue(c.User), quoteDSNValue(c.Password), quoteDSNValue(c.SSLMode),
		)
	}
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteDSNValue single-quotes a libpq keyword/value setting.
func quoteDSNValue(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

// Scope returns the catalog scope the schema graph is built for: the
// database for MySQL, the schema for PostgreSQL, "main" for SQLite.
func (c *Config) Scope() string {
	switch c.Connection.Driver {
	case DriverMySQL:
		return c.Connection.Database
	case DriverSQLite:
		return "main"
	default:
		return c.Schema
	}
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML config data, applies env fallbacks and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyEnv fills in empty Connection fields from environment variables.
// YAML values take precedence; env vars are used only as fallback.
func (c *Config) applyEnv() {
	conn := &c.Connection
	if conn.Driver == "" {
		conn.Driver = envOr("DBTREE_DRIVER")
	}
	if conn.Driver == "" {
		conn.Driver = DriverPostgres
	}

	var host, port, db, user, pass string
	switch conn.Driver {
	case DriverMySQL:
		host, port, db, user, pass = envOr("MYSQL_HOST"), envOr("MYSQL_TCP_PORT", "MYSQL_PORT"),
			envOr("MYSQL_DATABASE"), envOr("MYSQL_USER"), envOr("MYSQL_PWD", "MYSQL_PASSWORD")
	case DriverSQLite:
		if conn.Path == "" {
			conn.Path = envOr("DBTREE_SQLITE_PATH")
		}
		return
	default:
		host, port, db, user, pass = envOr("PGHOST", "POSTGRES_HOST"), envOr("PGPORT", "POSTGRES_PORT"),
			envOr("PGDATABASE", "POSTGRES_DB"), envOr("PGUSER", "POSTGRES_USER"), envOr("PGPASSWORD", "POSTGRES_PASSWORD")
		if conn.SSLMode == "" {
			conn.SSLMode = envOr("PGSSLMODE")
		}
	}

	if conn.Host == "" {
		conn.Host = host
	}
	if conn.Port == 0 && port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			conn.Port = p
		}
	}
	if conn.Database == "" {
		conn.Database = db
	}
	if conn.User == "" {
		conn.User = user
	}
	if conn.Password == "" {
		conn.Password = pass
	}
}

// envOr returns the first non-empty value from the given env var names.
func envOr(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// validate checks required fields and fills in defaults.
func (c *Config) validate() error {
	conn := &c.Connection
	switch conn.Driver {
	case DriverSQLite:
		if conn.Path == "" {
			return fmt.Errorf("connection.path is required for sqlite")
		}
	case DriverMySQL, DriverPostgres:
		if conn.Host == "" {
			return fmt.Errorf("connection.host is required")
		}
		if conn.Database == "" {
			return fmt.Errorf("connection.database is required")
		}
		if conn.User == "" {
			return fmt.Errorf("connection.user is required")
		}
		if conn.Port == 0 {
			conn.Port = 5432
			if conn.Driver == DriverMySQL {
				conn.Port = 3306
			}
		}
	default:
		return fmt.Errorf("connection.driver %q is not supported (postgres, mysql, sqlite)", conn.Driver)
	}

	if conn.Driver == DriverPostgres {
		if conn.SSLMode == "" {
			conn.SSLMode = "disable"
		}
		if c.Schema == "" {
			c.Schema = "public"
		}
	}

	if c.Classification.LimitedThreshold < 0 {
		return fmt.Errorf("classification.limited_threshold must not be negative")
	}
	if c.Classification.LimitedThreshold == 0 {
		c.Classification.LimitedThreshold = 150
	}
	if c.Classification.SmallStringSize < 0 {
		return fmt.Errorf("classification.small_string_size must not be negative")
	}
	if c.Classification.SmallStringSize == 0 {
		c.Classification.SmallStringSize = 15
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	return nil
}

// ExcludeSet returns a set of excluded table names for O(1) lookup.
func (c *Config) ExcludeSet() map[string]bool {
	set := make(map[string]bool, len(c.ExcludeTables))
	for _, t := range c.ExcludeTables {
		set[t] = true
	}
	return set
}
