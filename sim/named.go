package sim

import "strings"

// Named describes an object that has a name.
type Named interface {
	// Name returns the name of the object.
	Name() string
}

// NamedBase is a base implementation of Named.
type NamedBase struct {
	name string
}

// Name returns the name of the object.
func (b NamedBase) Name() string {
	return b.name
}

// MakeNamedBase creates a new NamedBase
func MakeNamedBase(name string) NamedBase {
	NameMustBeValid(name)
	return NamedBase{name: name}
}

// NameMustBeValid panics if the name is empty or contains white spaces.
func NameMustBeValid(name string) {
	if name == "" {
		panic("name must not be empty")
	}

	if strings.ContainsAny(name, " \t\n") {
		panic("name " + name + " must not contain white spaces")
	}
}
