package github

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/gitstat/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateRecord checks a decoded struct against its validate tags.
// Failures are reported as errors.ErrMalformedResponse.
func validateRecord(what string, v any) error {
	if err := validatorInstance().Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrMalformedResponse, what, err)
	}
	return nil
}

// validateRecords runs validateRecord on every element of a slice.
func validateRecords[T any](what string, items []T) error {
	for i := range items {
		if err := validateRecord(fmt.Sprintf("%s[%d]", what, i), &items[i]); err != nil {
			return err
		}
	}
	return nil
}
