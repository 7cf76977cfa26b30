package extension

import (
	"fmt"
	"strings"

	"github.com/xraph/grove"

	"github.com/xraph/restro/store"
	"github.com/xraph/restro/store/memory"
	"github.com/xraph/restro/store/mongo"
	"github.com/xraph/restro/store/postgres"
	"github.com/xraph/restro/store/sqlite"
)

// Store drivers accepted by Config.StoreDriver.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// openStore picks the store implementation for driver over db.
func openStore(driver string, db *grove.DB) (store.Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return memory.New(), nil
	case DriverPostgres, "pg":
		if db == nil {
			return nil, fmt.Errorf("restro: driver %q needs a grove database", driver)
		}
		return postgres.New(db), nil
	case DriverSQLite:
		if db == nil {
			return nil, fmt.Errorf("restro: driver %q needs a grove database", driver)
		}
		return sqlite.New(db), nil
	case DriverMongo:
		if db == nil {
			return nil, fmt.Errorf("restro: driver %q needs a grove database", driver)
		}
		return mongo.New(db), nil
	default:
		return nil, fmt.Errorf("restro: unknown store driver %q", driver)
	}
}
