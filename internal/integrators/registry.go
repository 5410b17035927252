package integrators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/hyperlab/internal/dynamo"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

// Default matches the forward-Euler reference scheme of the Kuramoto model.
const Default = "euler"

var registry = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return NewEuler() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
	"rk45":  func() dynamo.Integrator { return NewRK45() },
}

// New returns a fresh integrator; stateful ones are never shared.
func New(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = Default
	}
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownIntegrator, name, Names())
	}
	return mk(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
