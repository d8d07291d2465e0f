package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// GetParams selects one object by its numeric id.
type GetParams struct {
	ID int `validate:"gt=0"`
}

// ListParams narrows a listing. A zero ID lists the whole collection; a zero
// Size fetches every page.
type ListParams struct {
	ID   int `validate:"gte=0"`
	Size int `validate:"gte=0"`
}

// NewGetParams returns validated GetParams. id must be positive.
func NewGetParams(id int) (GetParams, error) {
	p := GetParams{ID: id}
	return p, p.Validate()
}

// NewListParams returns validated ListParams. id and size must not be negative.
func NewListParams(id, size int) (ListParams, error) {
	p := ListParams{ID: id, Size: size}
	return p, p.Validate()
}

// Validate checks p; failures are a *ConfigError wrapping ErrInvalidParameter.
func (p GetParams) Validate() error {
	return validateParams("get params", p)
}

// Validate checks p; failures are a *ConfigError wrapping ErrInvalidParameter.
func (p ListParams) Validate() error {
	return validateParams("list params", p)
}

func validateParams(op string, params interface{}) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return configError(op, ErrInvalidParameter, err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return configError(op, ErrInvalidParameter, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
