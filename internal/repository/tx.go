package repository

import "gorm.io/gorm/clause"

// forUpdate locks the selected rows until the surrounding transaction ends.
// SQLite ignores it; a single writer gives the same guarantee there.
var forUpdate = clause.Locking{Strength: "UPDATE"}
