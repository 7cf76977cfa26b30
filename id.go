package restro

import "github.com/xraph/restro/id"

// ID is the primary identifier type for all restaurant entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
