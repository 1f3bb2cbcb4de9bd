package checkout

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/gastroshop/storefront/internal/domain/order"
	"github.com/gastroshop/storefront/internal/domain/shared"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func shippingValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateShipping checks the shipping form. Names, email, phone, street address, city,
// postal code and country are required; notes are optional.
func ValidateShipping(addr order.ShippingAddress) error {
	addr = NormalizeShipping(addr)
	err := shippingValidator().Struct(addr)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.NewValidationError(err.Error())
	}
	fields := make([]shared.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, shared.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return shared.NewValidationError("Please check the shipping details", fields...)
}

// NormalizeShipping trims surrounding whitespace from every field
func NormalizeShipping(addr order.ShippingAddress) order.ShippingAddress {
	addr.FirstName = strings.TrimSpace(addr.FirstName)
	addr.LastName = strings.TrimSpace(addr.LastName)
	addr.Email = strings.TrimSpace(addr.Email)
	addr.Phone = strings.TrimSpace(addr.Phone)
	addr.Address = strings.TrimSpace(addr.Address)
	addr.City = strings.TrimSpace(addr.City)
	addr.PostalCode = strings.TrimSpace(addr.PostalCode)
	addr.Country = strings.TrimSpace(addr.Country)
	addr.Notes = strings.TrimSpace(addr.Notes)
	return addr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "is invalid"
}
