package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code string) *pgconn.PgError { return &pgconn.PgError{Code: code, Message: "pg " + code} }

func TestExtractAndPredicates(t *testing.T) {
	raw := pg(pgErrUniqueViolation)
	wrapped := fmt.Errorf("outer: %w", Wrap(raw, ErrorCodeDB, "insert failed"))

	got, ok := ExtractPgError(wrapped)
	if !ok || got.Code != pgErrUniqueViolation {
		t.Fatalf("ExtractPgError through wrap chain failed: %v %v", got, ok)
	}
	if _, ok := ExtractPgError(stderrs.New("plain")); ok {
		t.Fatalf("ExtractPgError matched a non-pg error")
	}

	if !IsSQLState(wrapped, pgErrUniqueViolation) {
		t.Fatalf("IsSQLState missed wrapped unique violation")
	}
	if IsSQLState(wrapped, pgErrDeadlockDetected) {
		t.Fatalf("IsSQLState matched wrong code")
	}
	if !IsDuplicateKey(raw) || IsDuplicateKey(stderrs.New("nope")) {
		t.Fatalf("IsDuplicateKey mismatch")
	}
}

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		sqlstate string
		want     ErrorCode
	}{
		{pgErrUniqueViolation, ErrorCodeDuplicateKey},
		{pgErrForeignKeyViolation, ErrorCodeInvalidArgument},
		{pgErrNotNullViolation, ErrorCodeValidation},
		{pgErrCheckViolation, ErrorCodeValidation},
		{pgErrStringDataRightTruncation, ErrorCodeInvalidArgument},
		{pgErrInvalidTextRepresentation, ErrorCodeInvalidArgument},
		{pgErrSerializationFailure, ErrorCodeDB},
		{pgErrDeadlockDetected, ErrorCodeDB},
		{pgErrLockNotAvailable, ErrorCodeDB},
		{pgErrReadOnlySQLTransaction, ErrorCodeUnavailable},
		{pgErrCannotConnectNow, ErrorCodeUnavailable},
		{"XX000", ErrorCodeDB}, // unmapped states stay DB
	}
	for _, c := range cases {
		code, ok := DBErrorCode(pg(c.sqlstate))
		if !ok || code != c.want {
			t.Fatalf("DBErrorCode(%s) = %v/%v, want %v/true", c.sqlstate, code, ok, c.want)
		}
	}

	if _, ok := DBErrorCode(stderrs.New("not pg")); ok {
		t.Fatalf("DBErrorCode ok for non-pg error")
	}
}

func TestFromPostgresVariants(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("FromPostgres(nil) should be nil")
	}
	if FromPostgresf(nil, "x %d", 1) != nil {
		t.Fatalf("FromPostgresf(nil) should be nil")
	}

	dup := FromPostgres(pg(pgErrUniqueViolation), "save account")
	if CodeOf(dup) != ErrorCodeDuplicateKey {
		t.Fatalf("FromPostgres unique = %v", CodeOf(dup))
	}
	plain := FromPostgresf(stderrs.New("boom"), "save %s", "account")
	if CodeOf(plain) != ErrorCodeDB {
		t.Fatalf("FromPostgres plain = %v", CodeOf(plain))
	}
	if want := "save account: boom"; plain.Error() != want {
		t.Fatalf("FromPostgresf message = %q, want %q", plain.Error(), want)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"ctx canceled", context.Canceled, false},
		{"ctx deadline wrapped", fmt.Errorf("query: %w", context.DeadlineExceeded), false},
		{"serialization", pg(pgErrSerializationFailure), true},
		{"deadlock", pg(pgErrDeadlockDetected), true},
		{"lock not available", pg(pgErrLockNotAvailable), true},
		{"unique violation", pg(pgErrUniqueViolation), false},
		{"pg through wrap", Wrap(pg(pgErrDeadlockDetected), ErrorCodeDB, "tx"), true},
		{"commit rollback text", stderrs.New("commit unexpectedly resulted in rollback"), true},
		{"statement timeout text", stderrs.New("ERROR: canceling statement due to statement timeout"), true},
		{"admin shutdown text", stderrs.New("FATAL: terminating connection due to administrator command"), true},
		{"plain", stderrs.New("boom"), false},
	}
	for _, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Fatalf("%s: IsRetryable = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestHTTPHelper(t *testing.T) {
	if st, w := HTTP(nil); st != http.StatusOK || w != (Wire{}) {
		t.Fatalf("HTTP(nil) mismatch: %d %+v", st, w)
	}
	st, w := HTTP(FromPostgres(pg(pgErrUniqueViolation), "dup"))
	if st != http.StatusConflict || w.Code != ErrorCodeDuplicateKey {
		t.Fatalf("HTTP(dup) = %d/%v", st, w.Code)
	}
	st, w = HTTP(stderrs.New("anon"))
	if st != http.StatusInternalServerError || w.Code != ErrorCodeUnknown {
		t.Fatalf("HTTP(anon) = %d/%v", st, w.Code)
	}
}
