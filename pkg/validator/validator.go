// Package validator collects field errors for request and record validation.
//
// Hand written checks go through Check; struct tag rules (`validate:"..."`)
// are delegated to go-playground/validator and reported under the field's
// json name.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the errors map doesn't contain any entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error message to the map (so long as no entry already exists for the given key).
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error message to the map only if a validation check is not 'ok'.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Struct runs the `validate` tag rules of s and records every failed field.
func (v *Validator) Struct(s any) {
	err := structValidator().Struct(s)
	if err == nil {
		return
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.AddError("_", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		v.AddError(fe.Field(), describe(fe))
	}
}

// Err folds the collected errors into a single error, or nil when valid.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	parts := make([]string, 0, len(v.Errors))
	for k, msg := range v.Errors {
		parts = append(parts, k+": "+msg)
	}
	sort.Strings(parts)
	return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
}

var (
	once     sync.Once
	instance *playground.Validate
)

func structValidator() *playground.Validate {
	once.Do(func() {
		instance = playground.New(playground.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return instance
}

func describe(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be provided"
	case "gte", "min":
		return "must be greater than or equal to " + fe.Param()
	case "lte", "max":
		return "must be less than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "hostname_port":
		return "must be host:port"
	default:
		return "failed on " + fe.Tag()
	}
}
