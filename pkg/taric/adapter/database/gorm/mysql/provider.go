// Package mysql registers the MySQL dialector.
package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/tamato/pkg/taric/adapter/database/config"
	gormadapter "github.com/tigerroll/tamato/pkg/taric/adapter/database/gorm"
)

// DSN renders user:password@tcp(host:port)/dbname?... for go-sql-driver/mysql.
func DSN(c dbconfig.DatabaseConfig) string {
	auth := ""
	if c.User != "" {
		auth = c.User
		if c.Password != "" {
			auth += ":" + c.Password
		}
		auth += "@"
	}
	return fmt.Sprintf("%stcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true",
		auth, c.Host, c.Port, c.Database)
}

func init() {
	gormadapter.RegisterDialector("mysql", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(DSN(cfg)), nil
	})
}
