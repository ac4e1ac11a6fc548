/*
store.go - Persistence port for session state

PURPOSE:
  Defines the key-value interface between the session controller and
  whatever holds its state across restarts. One JSON document per key;
  the session neither knows nor cares whether the backend is SQLite,
  memory, or anything else.

BEST-EFFORT CONTRACT:
  Writes are fire-and-forget from the session's point of view: a
  failed write is logged and swallowed, and the in-memory state stays
  authoritative for the rest of the session. Reads that fail fall back
  to defaults.

VERSIONING:
  A schema-version marker is stored alongside the data. On load, a
  mismatch discards every key and restores defaults - forward-only
  migration by reset, never a merge.

IMPLEMENTATIONS:
  - store/sqlite: production single-file store
  - store/memory: in-memory store for tests
*/
package session

import "context"

// Store is the key-value persistence port.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the value for key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Persisted-state keys. One scalar JSON value each.
const (
	KeyIncome         = "salary_income"
	KeyDeduction      = "salary_deduction"
	KeyBonuses        = "salary_bonuses"
	KeyGradeCode      = "salary_level_code"
	KeyDarkMode       = "salary_dark_mode"
	KeyDisclaimerSeen = "salary_disclaimer_seen"
	KeyTrustParams    = "salary_trust_params"
	KeySchemaVersion  = "salary_schema_version"
)

// SchemaVersion is the current persisted-state marker. Bump it to
// invalidate all stored sessions.
const SchemaVersion = "1"

// allKeys lists every key the session owns, for reset and
// version-mismatch wipes.
var allKeys = []string{
	KeyIncome,
	KeyDeduction,
	KeyBonuses,
	KeyGradeCode,
	KeyDarkMode,
	KeyDisclaimerSeen,
	KeyTrustParams,
	KeySchemaVersion,
}
