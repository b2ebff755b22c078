package typesystem

import "fmt"

// ClassNotFoundError indicates a class name was not found in a Universe.
type ClassNotFoundError struct {
	Name string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class not found: %s", e.Name)
}

func NewClassNotFoundError(name string) *ClassNotFoundError {
	return &ClassNotFoundError{Name: name}
}
