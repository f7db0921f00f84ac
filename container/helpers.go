package container

import "fmt"

// Resolve is a generic convenience wrapper around Container.Get, returning
// a typed value instead of any. Grounded on mwantia-fabric's generic
// container_resolve.go helper and the teacher's locator.go generic
// locator — unlike locator.go, Resolve takes an explicit *Container
// rather than reaching into a package-level global, since spec section 5
// requires supporting multiple containers used concurrently.
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	v, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, newKernelError(UnresolvableDependency, id, fmt.Errorf("resolved value of type %T does not satisfy requested type", v))
	}
	return typed, nil
}

// MustResolve panics if Resolve fails, for call sites (typically
// top-level wiring in main) where a missing dependency is a programmer
// error rather than a recoverable condition.
func MustResolve[T any](c *Container, id string) T {
	v, err := Resolve[T](c, id)
	if err != nil {
		panic(err)
	}
	return v
}
