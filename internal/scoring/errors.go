package scoring

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below via errors.Is.
var (
	ErrDuplicateName  = errors.New("duplicate name")
	ErrNotFound       = errors.New("not found")
	ErrOutOfRange     = errors.New("out of range")
	ErrDuplicateValue = errors.New("duplicate value")
)

// DuplicateNameError is returned when adding a choice or criterion whose name is taken.
type DuplicateNameError struct {
	Kind string // "choice" or "criterion"
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// NotFoundError is returned for references to an unknown choice, criterion, curve or point.
type NotFoundError struct {
	Kind string // "choice", "criterion", "curve" or "point"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// RangeError is returned when a weight, rating or score falls outside its allowed interval.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %g outside [%g, %g]", e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }

// DuplicateValueError is returned when a curve already holds a point at Value.
type DuplicateValueError struct {
	Value float64
}

func (e *DuplicateValueError) Error() string {
	return fmt.Sprintf("curve already has a point at value %g", e.Value)
}

func (e *DuplicateValueError) Is(target error) bool { return target == ErrDuplicateValue }
