package persistence

import (
	"errors"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm errors to domain errors. It relies on
// gorm.Config.TranslateError for driver specific unique violations.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// likeEscape follows every LIKE placeholder built from likePattern
const likeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lower-cased substring pattern for
// LOWER(col) LIKE ? ESCAPE '\'. Wildcards in search match literally.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(lower(search)) + "%"
}
