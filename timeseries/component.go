package timeseries

import (
	"fmt"
	"strconv"
)

// ComponentID identifies a component either by ordinal or by name.
type ComponentID struct {
	name   string
	index  int
	byName bool
}

// Index identifies a component by its ordinal position.
func Index(i int) ComponentID {
	return ComponentID{index: i}
}

// Name identifies a component by name.
func Name(name string) ComponentID {
	return ComponentID{name: name, byName: true}
}

// Indices is a shorthand for a list of ordinal identifiers.
func Indices(idx ...int) []ComponentID {
	ids := make([]ComponentID, len(idx))
	for i, v := range idx {
		ids[i] = Index(v)
	}
	return ids
}

// Names is a shorthand for a list of name identifiers.
func Names(names ...string) []ComponentID {
	ids := make([]ComponentID, len(names))
	for i, v := range names {
		ids[i] = Name(v)
	}
	return ids
}

// IsName reports whether the identifier refers to a component name.
func (c ComponentID) IsName() bool {
	return c.byName
}

// String returns the name, or the ordinal prefixed with '#'.
func (c ComponentID) String() string {
	if c.byName {
		return c.name
	}
	return "#" + strconv.Itoa(c.index)
}

// Resolve returns the ordinals of the given components, in request order.
func (s *Series) Resolve(ids ...ComponentID) ([]int, error) {
	out := make([]int, len(ids))
	for i, id := range ids {
		if !id.byName {
			if id.index < 0 || id.index >= s.width {
				return nil, fmt.Errorf("component %s of %d: %w", id, s.width, ErrOutOfRange)
			}
			out[i] = id.index
			continue
		}
		pos := -1
		for j, name := range s.components {
			if name == id.name {
				pos = j
				break
			}
		}
		if pos < 0 {
			return nil, fmt.Errorf("component %q: %w", id.name, ErrUnknownComponent)
		}
		out[i] = pos
	}
	return out, nil
}

func ordinalNames(width int) []string {
	names := make([]string, width)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}
