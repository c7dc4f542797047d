package testutil

import (
	"os"
	"sync"
	"testing"

	"github.com/yungbote/greenscape-backend/internal/data/db"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var (
	dbOnce sync.Once
	testDB *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens the shared test database once per package. TEST_POSTGRES_DSN selects a real
// Postgres; otherwise an in-memory SQLite database is used.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		dialector := sqlite.Open("file:greenscape_test?mode=memory&cache=shared")
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			dialector = postgres.Open(dsn)
		}

		var err error
		testDB, err = gorm.Open(dialector, &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			TranslateError:                           true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			dbErr = err
			return
		}
		if testDB.Dialector.Name() == "sqlite" {
			sqlDB, err := testDB.DB()
			if err != nil {
				dbErr = err
				return
			}
			// One connection keeps the in-memory database alive and serializes writers.
			sqlDB.SetMaxOpenConns(1)
		}

		if err := db.AutoMigrateAll(testDB); err != nil {
			dbErr = err
			return
		}
		if err := db.EnsureCatalogIndexes(testDB); err != nil {
			dbErr = err
			return
		}
		dbErr = db.EnsureRecommendationIndexes(testDB)
	})

	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return testDB
}

// Tx begins a transaction that is rolled back when the test ends. Everything a test
// writes must go through it.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
