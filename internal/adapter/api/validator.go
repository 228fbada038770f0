package api

import (
	"github.com/go-playground/validator/v10"

	"pasargamex-chat/pkg/utils"
)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: utils.NewValidate()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
