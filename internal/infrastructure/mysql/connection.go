package mysql

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"inventario/internal/config"
)

// Open builds the connection pool without touching the network.
// Reachability is established by Gateway.Connect.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// BuildDSN returns a go-sql-driver DSN. DATABASE_URL takes precedence and may
// be either a mysql:// URL or a native DSN; otherwise the DB_* parts are used.
// parseTime and clientFoundRows are always enabled: repositories rely on
// RowsAffected counting matched rows, not changed ones. The dial timeout bounds
// each connect attempt of Gateway.Connect.
func BuildDSN(cfg config.DatabaseConfig) (string, error) {
	var mc *gomysql.Config

	switch {
	case strings.HasPrefix(cfg.URL, "mysql://"):
		parsed, err := configFromURL(cfg.URL)
		if err != nil {
			return "", err
		}
		mc = parsed
	case cfg.URL != "":
		parsed, err := gomysql.ParseDSN(cfg.URL)
		if err != nil {
			return "", fmt.Errorf("parsing DATABASE_URL: %w", err)
		}
		mc = parsed
	default:
		mc = gomysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
	}

	mc.ParseTime = true
	mc.ClientFoundRows = true
	// A timeout given in a native DSN wins over DB_CONNECT_TIMEOUT.
	if mc.Timeout == 0 {
		mc.Timeout = cfg.ConnectTimeout
	}

	return mc.FormatDSN(), nil
}

func configFromURL(raw string) (*gomysql.Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	mc := gomysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = u.Host
	if u.Port() == "" {
		mc.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	if u.User != nil {
		mc.User = u.User.Username()
		mc.Passwd, _ = u.User.Password()
	}
	mc.DBName = strings.TrimPrefix(u.Path, "/")
	if mc.DBName == "" {
		return nil, fmt.Errorf("parsing DATABASE_URL: missing database name")
	}

	return mc, nil
}
