package locator

import (
	"context"
	"testing"

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

func TestSearchShortLabelQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	rows := sqlmock.NewRows([]string{"intervention_id", "long_label", "short_label"}).
		AddRow(3363, "Non-Invasive BP", "NBP").
		AddRow(3779, "Non-Invasive BP (Cuff)", "NBP")
	mock.ExpectQuery(`SELECT (.+) FROM "D_Intervention" WHERE lower\("shortLabel"\) LIKE lower\(\$1\)`).
		WithArgs("%nbp%", 50).
		WillReturnRows(rows)

	matches, err := repo.SearchShortLabel(context.Background(), "%nbp%", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].InterventionID != 3363 || matches[0].ShortLabel != "NBP" {
		t.Fatalf("unexpected first match: %+v", matches[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchLongLabelQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "D_Intervention" WHERE lower\("longLabel"\) LIKE lower\(\$1\)`).
		WithArgs("%blood pressure%", 50).
		WillReturnRows(sqlmock.NewRows([]string{"intervention_id", "long_label", "short_label"}))

	matches, err := repo.SearchLongLabel(context.Background(), "%blood pressure%", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
