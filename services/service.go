package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/gig-marketplace-api/apperrors"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/repositories"
	"go.uber.org/zap"
)

// Actor is the authenticated account performing an operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// ActorFor builds the actor for a stored account.
func ActorFor(user *models.User) Actor {
	return Actor{ID: user.ID, Role: user.Role}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report field names as clients send them
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs the validate tags of input and converts failures into a
// ValidationError whose details map each field to a message.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Validation(err.Error())
	}

	details := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = fieldMessage(fe)
	}
	return apperrors.Validation("Invalid request data").WithDetails(details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	}
	return "failed on the '" + fe.Tag() + "' rule"
}

// storageError logs a persistence failure and hides it behind a StorageError.
func storageError(log *zap.Logger, op string, err error) error {
	log.Error("storage failure", zap.String("op", op), zap.Error(err))
	return apperrors.Storage(err, "Failed to "+op)
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
