package api

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yashu1412/Flight-Booking/internal/pnr"
)

// RegisterValidators adds the custom binding rules to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("pnr", func(fl validator.FieldLevel) bool {
		return pnr.Valid(pnr.Normalize(fl.Field().String()))
	})
}
