package db

import (
	"testing"

	"github.com/yungbote/practice-backend/internal/platform/logger"
)

func TestSQLiteServiceMigrates(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	svc, err := NewDatabaseService(Config{Driver: DriverSQLite, SQLitePath: "file::memory:?cache=shared&mode=memory"}, log)
	if err != nil {
		t.Fatalf("NewDatabaseService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if svc.Driver() != DriverSQLite {
		t.Fatalf("driver: got=%s", svc.Driver())
	}
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"users", "practice_sessions", "practice_goals", "daily_challenges", "reward_ledgers", "user_achievements", "group_members"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
}

func TestUnsupportedDriver(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := NewDatabaseService(Config{Driver: "oracle"}, log); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
