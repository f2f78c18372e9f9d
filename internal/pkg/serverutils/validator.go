// FILE: internal/pkg/serverutils/validator.go
package serverutils

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"givehub-be/internal/pkg/apperrors"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and reports the first failure
// as a ValidationError so callers get a 400, never a 500.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if ok := errorsAs(err, &verrs); ok && len(verrs) > 0 {
			fe := verrs[0]
			return apperrors.Validation(strings.ToLower(fe.Field()), "failed on rule '"+fe.Tag()+"'")
		}
		return apperrors.Validation("", err.Error())
	}
	return nil
}

func errorsAs(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}
