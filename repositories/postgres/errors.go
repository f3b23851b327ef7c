package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lakshyafoods/storefront/repositories"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// translateError maps driver errors onto repository sentinels, keeping the
// operation description in the message.
func translateError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, repositories.ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// requireAffected turns a zero-row update into ErrNotFound
func requireAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
	}
	return nil
}

// whereBuilder accumulates positional predicates for dynamic filters
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

// add appends a predicate. format references the new placeholder as $%[1]d.
func (w *whereBuilder) add(format string, value interface{}) {
	w.args = append(w.args, value)
	w.clauses = append(w.clauses, fmt.Sprintf(format, len(w.args)))
}

// sql renders the WHERE clause, or an empty string without predicates
func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	out := " WHERE " + w.clauses[0]
	for _, c := range w.clauses[1:] {
		out += " AND " + c
	}
	return out
}

// next returns the next free placeholder index
func (w *whereBuilder) next() int {
	return len(w.args) + 1
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches search literally anywhere in an ILIKE operand
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
