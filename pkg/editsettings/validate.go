package editsettings

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"thirdcoast.systems/cutroom/pkg/filters"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("preset", func(fl validator.FieldLevel) bool {
			_, ok := filters.Lookup(fl.Field().String())
			return ok
		})
	})
	return validate
}

// Validate checks a complete configuration against the UI input ranges,
// the enum sets, the preset catalog and the exclusive filter groups.
// The store never calls it; it guards bulk updates and processing jobs.
func Validate(s Settings) error {
	if err := validatorInstance().Struct(s); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}
	if err := filters.CheckExclusive(s.Filters); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}
	return nil
}
