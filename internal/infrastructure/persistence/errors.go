package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fixdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translate maps gorm.ErrRecordNotFound to a NotFound domain error for the
// named entity and leaves other errors untouched.
func translate(err error, entity string, id fmt.Stringer) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entity, id)
	}
	return err
}

// translateWrite maps a unique index violation to a Conflict domain error.
// It needs the connection opened with TranslateError so that drivers report
// gorm.ErrDuplicatedKey.
func translateWrite(err error, entity string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewConflictError("DUPLICATE_"+strings.ToUpper(strings.ReplaceAll(entity, " ", "_")),
			entity+" collides with an existing unique value")
	}
	return err
}

// forUpdate adds SELECT ... FOR UPDATE. Dialects without row locks (sqlite)
// drop the clause and rely on their database-level write lock.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

// prefixPattern returns a LIKE pattern matching strings that start with
// prefix followed by a dash
func prefixPattern(prefix string) string {
	return prefix + "-%"
}

// stringer adapts a plain string key to NewNotFoundError
type stringer string

func (s stringer) String() string { return string(s) }
