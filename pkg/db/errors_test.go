package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		unique        bool
		foreignKey    bool
		check         bool
		serialization bool
	}{
		{name: "nil", err: nil},
		{name: "pgx unique", err: &pgconn.PgError{Code: "23505"}, unique: true},
		{name: "pq foreign key", err: &pq.Error{Code: "23503"}, foreignKey: true},
		{name: "pgx check", err: fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23514"}), check: true},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, serialization: true},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, serialization: true},
		{name: "lock timeout", err: &pgconn.PgError{Code: "55P03"}, serialization: true},
		{name: "sqlite unique", err: errors.New("UNIQUE constraint failed: users.username"), unique: true},
		{name: "sqlite check", err: errors.New("CHECK constraint failed: chk_products_stock_quantity"), check: true},
		{name: "plain", err: errors.New("boom")},
	}

	for _, tt := range tests {
		if got := IsUniqueViolation(tt.err, ""); got != tt.unique {
			t.Fatalf("%s: IsUniqueViolation=%v want %v", tt.name, got, tt.unique)
		}
		if got := IsForeignKeyViolation(tt.err); got != tt.foreignKey {
			t.Fatalf("%s: IsForeignKeyViolation=%v want %v", tt.name, got, tt.foreignKey)
		}
		if got := IsCheckViolation(tt.err); got != tt.check {
			t.Fatalf("%s: IsCheckViolation=%v want %v", tt.name, got, tt.check)
		}
		if got := IsSerializationFailure(tt.err); got != tt.serialization {
			t.Fatalf("%s: IsSerializationFailure=%v want %v", tt.name, got, tt.serialization)
		}
	}
}

func TestIsUniqueViolationByConstraintName(t *testing.T) {
	err := errors.New(`duplicate key value violates unique constraint "users_username_key"`)
	if !IsUniqueViolation(err, "users_username_key") {
		t.Fatal("expected match on constraint name")
	}
	if IsUniqueViolation(err, "other_key") {
		t.Fatal("unexpected match on another constraint")
	}
}
