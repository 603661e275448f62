package settings

import (
	"database/sql"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
)

// SQLiteDriverName is the project-specific SQLCipher driver name. A
// dedicated registration keeps us independent of any other sqlite3
// driver the host process may have registered.
const SQLiteDriverName = "sqlite3_editor_steps"

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{})
}

// busyDSNParams are applied to every file-backed store. SQLite is
// single-writer; WAL plus a busy timeout keeps concurrent readers happy.
const busyDSNParams = "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
