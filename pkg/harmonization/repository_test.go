package harmonization

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}
	return db, mock
}

func TestSaveSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec(`INSERT INTO "variable_catalog_snapshots"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.SaveSnapshot(context.Background(), DefaultCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a snapshot id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLatestSnapshotRestoresCatalog(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	payload := `{"noradrenaline-bolus":{"display":"Noradrenaline bolus","fact_table":"PtMedication","attribute":"Dose","units":["mg"]}}`
	rows := sqlmock.NewRows([]string{"id", "variables", "created_at"}).
		AddRow("snap-1", []byte(payload), time.Now().UTC())
	mock.ExpectQuery(`SELECT \* FROM "variable_catalog_snapshots" ORDER BY created_at DESC(.+)LIMIT`).
		WillReturnRows(rows)

	catalog, err := repo.LatestSnapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	variable, ok := catalog.Lookup("noradrenaline-bolus")
	if !ok {
		t.Fatalf("expected variable restored, got %+v", catalog)
	}
	if variable.FactTable != "PtMedication" || len(variable.Units) != 1 || variable.Units[0] != "mg" {
		t.Fatalf("unexpected restored variable: %+v", variable)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "variable_catalog_snapshots"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "variables", "created_at"}))

	if _, err := repo.LatestSnapshot(context.Background()); !errors.Is(err, ErrNoSnapshots) {
		t.Fatalf("expected ErrNoSnapshots, got %v", err)
	}
}
