package adt

// These errors are user errors, not internal errors.

import (
	"strconv"
)

// DefinitionError occurs when a variant declaration is malformed or
// collides with an earlier declaration in the same family.
type DefinitionError struct {
	Family string
	Name   string
	Reason string
}

func (e *DefinitionError) Error() string {
	return `can't define "` + e.Name + `" in "` + e.Family + `": ` + e.Reason
}

// ArityError occurs when a variant is constructed with the wrong
// number of arguments.
type ArityError struct {
	Variant *Variant
	Got     int
}

func (e *ArityError) Error() string {
	return e.Variant.Name() + " takes " + strconv.Itoa(e.Variant.NumFields()) +
		" arguments, got " + strconv.Itoa(e.Got)
}

// TypeError occurs when a value doesn't satisfy a field constraint
// (or, over in package match, when a binding name isn't a valid
// identifier).
type TypeError struct {
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	return "expected " + e.Expected + ", got " + e.Actual
}
