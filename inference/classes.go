package inference

import (
	"fmt"
	"strings"
)

// PotholeClasses is the label set of the single-class road defect model.
var PotholeClasses = []string{"pothole"}

// ClassMap is an immutable mapping from class index to a human-readable label.
type ClassMap struct {
	names []string
}

// NewClassMap copies names into a new ClassMap.
func NewClassMap(names []string) ClassMap {
	cp := make([]string, len(names))
	copy(cp, names)
	return ClassMap{names: cp}
}

// ParseClassMap builds a ClassMap from a comma separated list, e.g. "pothole,crack".
func ParseClassMap(list string) ClassMap {
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return ClassMap{names: names}
}

// Label returns the name for id, or "class_<id>" when unknown.
func (c ClassMap) Label(id int) string {
	if id >= 0 && id < len(c.names) {
		return c.names[id]
	}
	return fmt.Sprintf("class_%d", id)
}

// Len returns the number of known classes.
func (c ClassMap) Len() int {
	return len(c.names)
}

// Names returns a copy of the labels in class order.
func (c ClassMap) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
