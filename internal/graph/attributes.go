package graph

import (
	"fmt"
	"strconv"
)

// Attr is a single key/value attribute.
type Attr struct {
	Key   string
	Value string
}

// Attributes is an insertion-ordered set of string attributes. Setting an
// existing key replaces its value in place.
type Attributes struct {
	items []Attr
	index map[string]int
}

// NewAttributes builds Attributes from alternating key/value pairs.
// It panics on an odd argument count.
func NewAttributes(kv ...string) Attributes {
	if len(kv)%2 != 0 {
		panic("graph: NewAttributes requires key/value pairs")
	}

	var a Attributes
	for i := 0; i < len(kv); i += 2 {
		a.Set(kv[i], kv[i+1])
	}

	return a
}

// Set stores value under key.
func (a *Attributes) Set(key, value string) {
	if a.index == nil {
		a.index = make(map[string]int)
	}

	if i, ok := a.index[key]; ok {
		a.items[i].Value = value
		return
	}

	a.index[key] = len(a.items)
	a.items = append(a.items, Attr{Key: key, Value: value})
}

// SetInt stores an integer value under key.
func (a *Attributes) SetInt(key string, value int) {
	a.Set(key, strconv.Itoa(value))
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) (string, bool) {
	i, ok := a.index[key]
	if !ok {
		return "", false
	}

	return a.items[i].Value, true
}

// Int parses the value stored under key as an integer.
func (a Attributes) Int(key string) (int, error) {
	v, ok := a.Get(key)
	if !ok {
		return 0, fmt.Errorf("attribute %q not set", key)
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", key, err)
	}

	return n, nil
}

// Len returns the number of attributes.
func (a Attributes) Len() int { return len(a.items) }

// All returns a copy of the attributes in insertion order.
func (a Attributes) All() []Attr {
	out := make([]Attr, len(a.items))
	copy(out, a.items)

	return out
}

// Map returns the attributes as a plain map. Ordering is lost.
func (a Attributes) Map() map[string]string {
	if len(a.items) == 0 {
		return nil
	}

	m := make(map[string]string, len(a.items))
	for _, it := range a.items {
		m[it.Key] = it.Value
	}

	return m
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	var c Attributes
	for _, it := range a.items {
		c.Set(it.Key, it.Value)
	}

	return c
}
