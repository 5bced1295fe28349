package container

import (
	"fmt"
	"strings"
)

// Lifetime is the sharing policy of a registered capability.
//
// Lifetimes are ordered by breadth of sharing:
//
//	Transient < Scoped < Singleton
type Lifetime int

const (
	// Transient builds a new instance every time the capability is needed.
	Transient Lifetime = iota
	// Scoped builds one instance per root request.
	Scoped
	// Singleton builds one instance for the lifetime of the container.
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// Valid reports whether l is one of the declared lifetimes.
func (l Lifetime) Valid() bool {
	return l >= Transient && l <= Singleton
}

// ParseLifetime converts a config value ("transient", "scoped", "singleton",
// case-insensitive) into a Lifetime.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transient":
		return Transient, nil
	case "scoped":
		return Scoped, nil
	case "singleton":
		return Singleton, nil
	}
	return 0, fmt.Errorf("container: unknown lifetime %q", s)
}
