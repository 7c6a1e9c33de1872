package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/linguacare/admin-api/internal/model"
)

// RegisterValidators installs custom binding validators. Call once at
// startup before the router handles requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("apptstatus", validAppointmentStatus)
}

func validAppointmentStatus(fl validator.FieldLevel) bool {
	value := model.AppointmentStatus(fl.Field().String())
	for _, s := range model.AppointmentStatuses {
		if s == value {
			return true
		}
	}
	return false
}
