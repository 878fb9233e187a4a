// Package guard provides the ConstructorGuard pattern used by commands,
// queries, and value objects to ensure instances are only created through
// their designated constructor functions. A zero-value struct carries a
// zero-value guard and fails validation.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when a nil validation
// error is supplied for an object that was not properly constructed.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as created through its constructor.
// Embed it as a private field and set it with NewConstructorGuard inside
// the constructor; Validate then distinguishes constructed instances from
// zero values.
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard creates a guard marking the enclosing object as
// properly constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil if the object was created through its constructor.
// Otherwise it returns validationError, or ErrDefaultConstructorGuard when
// validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
