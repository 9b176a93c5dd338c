package storage

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

const pgUniqueViolation = "23505"

var pgKeyDetail = regexp.MustCompile(`^Key \(([^)]+)\)=`)

// UniqueViolation reports whether err is a unique-constraint failure and, if
// so, which columns the violated constraint covers.
func UniqueViolation(err error) ([]string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return nil, false
		}
		if m := pgKeyDetail.FindStringSubmatch(pgErr.Detail); m != nil {
			return splitColumns(m[1]), true
		}
		return nil, true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.ExtendedCode != sqlite3.ErrConstraintUnique && liteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
			return nil, false
		}
		// "UNIQUE constraint failed: saved_properties.user_id, saved_properties.property_id"
		msg := liteErr.Error()
		if i := strings.Index(msg, ": "); i >= 0 {
			return splitColumns(msg[i+2:]), true
		}
		return nil, true
	}
	return nil, false
}

func splitColumns(list string) []string {
	parts := strings.Split(list, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if i := strings.LastIndex(p, "."); i >= 0 {
			p = p[i+1:]
		}
		cols = append(cols, strings.Trim(p, `"`))
	}
	return cols
}

// HasColumn reports whether col is among cols.
func HasColumn(cols []string, col string) bool {
	for _, c := range cols {
		if c == col {
			return true
		}
	}
	return false
}
