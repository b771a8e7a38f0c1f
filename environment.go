// Completion: 100% - Environment table complete
package main

import (
	"fmt"
	"sort"
)

// EnvSlots is the size of the environment table, one slot per ASCII code.
// A name is bound to the slot of its first character.
const EnvSlots = 128

// Environment holds the variable values the generated code reads
type Environment [EnvSlots]int64

// DefaultEnvironment returns x=2, y=3 and zero for everything else
func DefaultEnvironment() Environment {
	var env Environment
	env['x'] = 2
	env['y'] = 3
	return env
}

// Set binds the slot of name to v
func (e *Environment) Set(name string, v int64) error {
	if name == "" || !isLetter(name[0]) {
		return fmt.Errorf("invalid variable name %q: must start with a letter", name)
	}
	e[name[0]] = v
	return nil
}

// Get returns the value bound to the slot of name
func (e *Environment) Get(name string) int64 {
	if name == "" || name[0] >= EnvSlots {
		return 0
	}
	return e[name[0]]
}

// Apply binds every assignment, in name order so errors are deterministic
func (e *Environment) Apply(assignments map[string]int64) error {
	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := e.Set(name, assignments[name]); err != nil {
			return err
		}
	}
	return nil
}
