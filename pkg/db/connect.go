package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/glebarez/go-sqlite" // pure-Go SQLite driver ("sqlite")
	_ "github.com/mattn/go-sqlite3"   // cgo SQLite driver ("sqlite3")
)

const (
	// DriverCGO is the mattn/go-sqlite3 driver. It is the default.
	DriverCGO = "sqlite3"
	// DriverPureGo is the glebarez/go-sqlite driver, usable in CGO_ENABLED=0 builds.
	DriverPureGo = "sqlite"

	busyTimeoutMillis = 5000
)

// validSyncModes lists the allowed values for the synchronous pragma.
var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true,
}

// OpenDBConnection opens baseDSN with the default cgo driver.
// See OpenDBConnectionWithDriver.
func OpenDBConnection(baseDSN string, enableWAL bool, syncPragma string) (*sql.DB, error) {
	return OpenDBConnectionWithDriver(DriverCGO, baseDSN, enableWAL, syncPragma)
}

// OpenDBConnectionWithDriver establishes a connection to a SQLite database.
// driver is DriverCGO or DriverPureGo; the two drivers spell their pragmas
// differently in the DSN, so the query string is built per driver.
// enableWAL sets the journal_mode to WAL if true.
// syncPragma sets the synchronous pragma (e.g., "OFF", "NORMAL", "FULL", "EXTRA").
// Foreign keys and a busy timeout are always enabled on every pooled connection.
func OpenDBConnectionWithDriver(driver, baseDSN string, enableWAL bool, syncPragma string) (*sql.DB, error) {
	if driver == "" {
		driver = DriverCGO
	}
	if driver != DriverCGO && driver != DriverPureGo {
		return nil, fmt.Errorf("unsupported sqlite driver %q. Must be one of %s, %s", driver, DriverCGO, DriverPureGo)
	}

	ucSyncPragma := strings.ToUpper(syncPragma)
	if syncPragma != "" && !validSyncModes[ucSyncPragma] {
		return nil, fmt.Errorf("invalid sync pragma value: %s. Must be one of OFF, NORMAL, FULL, EXTRA", syncPragma)
	}

	params := url.Values{}
	switch driver {
	case DriverCGO:
		params.Add("_foreign_keys", "1")
		params.Add("_busy_timeout", fmt.Sprint(busyTimeoutMillis))
		if enableWAL {
			params.Add("_journal_mode", "WAL")
		}
		if ucSyncPragma != "" {
			params.Add("_synchronous", ucSyncPragma)
		}
	case DriverPureGo:
		params.Add("_pragma", "foreign_keys(1)")
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMillis))
		if enableWAL {
			params.Add("_pragma", "journal_mode(WAL)")
		}
		if ucSyncPragma != "" {
			params.Add("_pragma", fmt.Sprintf("synchronous(%s)", ucSyncPragma))
		}
	}

	constructedDSN := baseDSN
	if strings.Contains(baseDSN, "?") {
		constructedDSN += "&" + params.Encode()
	} else {
		constructedDSN += "?" + params.Encode()
	}

	db, err := sql.Open(driver, constructedDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with DSN '%s': %w", constructedDSN, err)
	}

	// Every new connection to :memory: is a fresh, empty database.
	if isInMemory(baseDSN) {
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database with DSN '%s': %w", constructedDSN, err)
	}

	return db, nil
}

func isInMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
