// Package validation provides input validation utilities for preparation steps.
// Validators are small reusable checks (column existence, option membership,
// ratio bounds, non-empty frames) that share the DataFrameError vocabulary.
package validation

import (
	"fmt"
	"strings"

	"github.com/paveg/repoprep/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
	Len() int
	Width() int
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the DataFrame
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundError(v.op, column)
		}
	}
	return nil
}

// OneOfValidator validates that an option value is one of a fixed set
type OneOfValidator struct {
	value   string
	allowed []string
	op      string
	field   string
}

// NewOneOfValidator creates a validator for enumerated options
func NewOneOfValidator(value, op, field string, allowed ...string) *OneOfValidator {
	return &OneOfValidator{
		value:   value,
		allowed: allowed,
		op:      op,
		field:   field,
	}
}

// Validate checks the value against the allowed set
func (v *OneOfValidator) Validate() error {
	for _, a := range v.allowed {
		if v.value == a {
			return nil
		}
	}
	message := fmt.Sprintf("%s %q is not one of [%s]", v.field, v.value, strings.Join(v.allowed, ", "))
	return errors.NewInvalidInputError(v.op, message)
}

// RangeValidator validates that a float lies in [min, max]
type RangeValidator struct {
	value    float64
	min, max float64
	op       string
	field    string
}

// NewRangeValidator creates a validator for closed float ranges
func NewRangeValidator(value, minValue, maxValue float64, op, field string) *RangeValidator {
	return &RangeValidator{
		value: value,
		min:   minValue,
		max:   maxValue,
		op:    op,
		field: field,
	}
}

// Validate checks the bounds
func (v *RangeValidator) Validate() error {
	if v.value < v.min || v.value > v.max {
		message := fmt.Sprintf("%s %g out of range [%g, %g]", v.field, v.value, v.min, v.max)
		return errors.NewInvalidInputError(v.op, message)
	}
	return nil
}

// EmptyDataFrameValidator validates operations on empty DataFrames
type EmptyDataFrameValidator struct {
	df ColumnProvider
	op string
}

// NewEmptyDataFrameValidator creates a validator for empty DataFrame checks
func NewEmptyDataFrameValidator(df ColumnProvider, op string) *EmptyDataFrameValidator {
	return &EmptyDataFrameValidator{
		df: df,
		op: op,
	}
}

// Validate checks if DataFrame is empty when operation requires data
func (v *EmptyDataFrameValidator) Validate() error {
	if v.df.Len() == 0 {
		return &errors.DataFrameError{
			Op:      v.op,
			Message: "operation not supported on empty DataFrame",
		}
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateOneOf is a convenience function for enumerated option validation
func ValidateOneOf(value, op, field string, allowed ...string) error {
	return NewOneOfValidator(value, op, field, allowed...).Validate()
}

// ValidateRange is a convenience function for range validation
func ValidateRange(value, minValue, maxValue float64, op, field string) error {
	return NewRangeValidator(value, minValue, maxValue, op, field).Validate()
}

// ValidateNotEmpty is a convenience function for empty DataFrame validation
func ValidateNotEmpty(df ColumnProvider, op string) error {
	return NewEmptyDataFrameValidator(df, op).Validate()
}
