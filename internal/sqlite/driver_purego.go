//go:build !cgo_sqlite

package sqlite

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	driverName    = "sqlite"
	driverType    = "purego"
	driverPackage = "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}
