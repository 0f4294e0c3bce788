package sqlite

import (
	"testing"

	"github.com/noteloft/noteloft-server/internal/store"
	"github.com/noteloft/noteloft-server/internal/store/storetest"
)

func TestSqliteStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		db, err := Open(":memory:")
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		if err := Migrate(db); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		return New(db)
	})
}
