// Package all registers every storage backend with the factory. Binaries
// blank-import it so the config can select any backend at runtime.
package all

import (
	_ "cleanse/internal/storage/mysql"
	_ "cleanse/internal/storage/postgres"
	_ "cleanse/internal/storage/sqlite"
)
