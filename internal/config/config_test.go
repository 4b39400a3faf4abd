package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable applyEnv reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DBTREE_DRIVER", "DBTREE_SQLITE_PATH",
		"PGHOST", "POSTGRES_HOST", "PGPORT", "POSTGRES_PORT", "PGDATABASE", "POSTGRES_DB",
		"PGUSER", "POSTGRES_USER", "PGPASSWORD", "POSTGRES_PASSWORD", "PGSSLMODE",
		"MYSQL_HOST", "MYSQL_TCP_PORT", "MYSQL_PORT", "MYSQL_DATABASE", "MYSQL_USER",
		"MYSQL_PWD", "MYSQL_PASSWORD",
	} {
		t.Setenv(name, "")
	}
}

func TestParsePostgresDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(`
connection:
  host: localhost
  database: phamerator
  user: pham
exclude_tables: [version, schema_migrations]
`))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Connection.Driver)
	assert.Equal(t, 5432, cfg.Connection.Port)
	assert.Equal(t, "disable", cfg.Connection.SSLMode)
	assert.Equal(t, "public", cfg.Schema)
	assert.Equal(t, "public", cfg.Scope())
	assert.Equal(t, int64(150), cfg.Classification.LimitedThreshold)
	assert.Equal(t, 15, cfg.Classification.SmallStringSize)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, map[string]bool{"version": true, "schema_migrations": true}, cfg.ExcludeSet())
	assert.Equal(t,
		"host='localhost' port=5432 dbname='phamerator' user='pham' password='' sslmode='disable'",
		cfg.Connection.DSN())
}

func TestPostgresDSNQuotesValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(`
connection:
  host: db.example.org
  port: 6432
  database: pham draft
  user: o'brien
  password: "it's a \\secret"
`))
	require.NoError(t, err)
	assert.Equal(t, `it's a \secret`, cfg.Connection.Password)

	pc, err := pgconn.ParseConfig(cfg.Connection.DSN())
	require.NoError(t, err)
	assert.Equal(t, "db.example.org", pc.Host)
	assert.Equal(t, uint16(6432), pc.Port)
	assert.Equal(t, "pham draft", pc.Database)
	assert.Equal(t, "o'brien", pc.User)
	assert.Equal(t, `it's a \secret`, pc.Password)
}

func TestParseMySQL(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(`
connection:
  driver: mysql
  host: 127.0.0.1
  database: Actino_Draft
  user: root
  password: "p@ss:word"
classification:
  limited_threshold: 40
  small_string_size: 20
log_level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, 3306, cfg.Connection.Port)
	assert.Equal(t, "Actino_Draft", cfg.Scope())
	assert.Empty(t, cfg.Connection.SSLMode)
	assert.Equal(t, int64(40), cfg.Classification.LimitedThreshold)
	assert.Equal(t, 20, cfg.Classification.SmallStringSize)
	assert.Equal(t, "debug", cfg.LogLevel)

	parsed, err := mysql.ParseDSN(cfg.Connection.DSN())
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "127.0.0.1:3306", parsed.Addr)
	assert.Equal(t, "Actino_Draft", parsed.DBName)
}

func TestParseSQLite(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte("connection:\n  driver: sqlite\n  path: /tmp/pham.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Scope())
	assert.Equal(t, "/tmp/pham.db", cfg.Connection.DSN())

	t.Setenv("DBTREE_SQLITE_PATH", "/data/other.db")
	cfg, err = Parse([]byte("connection:\n  driver: sqlite\n"))
	require.NoError(t, err)
	assert.Equal(t, "/data/other.db", cfg.Connection.Path)
}

func TestEnvFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("DBTREE_DRIVER", "mysql")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_TCP_PORT", "3307")
	t.Setenv("MYSQL_DATABASE", "Actino_Draft")
	t.Setenv("MYSQL_USER", "reader")
	t.Setenv("MYSQL_PWD", "from-env")

	cfg, err := Parse([]byte("connection:\n  user: yaml-user\n"))
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.Connection.Driver)
	assert.Equal(t, "db.internal", cfg.Connection.Host)
	assert.Equal(t, 3307, cfg.Connection.Port)
	assert.Equal(t, "yaml-user", cfg.Connection.User, "yaml wins over env")
	assert.Equal(t, "from-env", cfg.Connection.Password)
}

func TestPostgresEnvFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_HOST", "pg")
	t.Setenv("PGPORT", "6543")
	t.Setenv("POSTGRES_DB", "pham")
	t.Setenv("PGUSER", "admin")
	t.Setenv("PGSSLMODE", "require")

	cfg, err := Parse([]byte("schema: draft\n"))
	require.NoError(t, err)
	assert.Equal(t, "pg", cfg.Connection.Host)
	assert.Equal(t, 6543, cfg.Connection.Port)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "draft", cfg.Scope())
}

func TestParseErrors(t *testing.T) {
	clearEnv(t)

	tests := map[string]string{
		"missing host":        "connection:\n  database: d\n  user: u\n",
		"missing database":    "connection:\n  host: h\n  user: u\n",
		"missing user":        "connection:\n  host: h\n  database: d\n",
		"missing sqlite path": "connection:\n  driver: sqlite\n",
		"unknown driver":      "connection:\n  driver: oracle\n",
		"negative threshold":  "connection:\n  driver: sqlite\n  path: x\nclassification:\n  limited_threshold: -1\n",
		"negative size":       "connection:\n  driver: sqlite\n  path: x\nclassification:\n  small_string_size: -3\n",
		"bad yaml":            "connection: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "dbtree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connection:\n  driver: sqlite\n  path: pham.db\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pham.db", cfg.Connection.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
