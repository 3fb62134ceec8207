package db

import (
	"circle/config"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Instance *gorm.DB

// Init opens MySQL when MYSQL_DSN is configured and SQLite otherwise
func Init() {
	var dialector gorm.Dialector
	if config.MYSQL_DSN != "" {
		dsn, err := NormalizeMySQLDSN(config.MYSQL_DSN)
		if err != nil {
			panic(err)
		}
		dialector = mysql.Open(dsn)
	} else {
		dialector = sqlite.Open(SQLiteDSN(config.SQLITE_FILE))
	}
	if err := InitWith(dialector); err != nil {
		panic(err)
	}
}

func InitWith(dialector gorm.Dialector) error {
	gormConfig := &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
	if !config.DEBUG_MODE {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return err
	}
	if dialector.Name() == "sqlite" {
		// SQLite allows a single writer anyway
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	Instance = db
	return nil
}

// NormalizeMySQLDSN makes sure time columns are parsed and utf8mb4 is used
func NormalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	return cfg.FormatDSN(), nil
}

// SQLiteDSN enables foreign keys, needed for the ON DELETE CASCADE constraints
func SQLiteDSN(file string) string {
	if strings.Contains(file, "_foreign_keys=") {
		return file
	}
	if strings.Contains(file, "?") {
		return file + "&_foreign_keys=on"
	}
	return file + "?_foreign_keys=on"
}
