package fieldcrypt

import (
	"slices"

	pstrings "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/strings"
)

// DefaultSensitiveFields are stored only in encrypted form, whatever the resource.
var DefaultSensitiveFields = []string{"phone", "address", "shippingAddress"}

// FieldSet is an immutable set of record keys subject to encryption.
type FieldSet struct {
	names map[string]struct{}
}

// NewFieldSet builds a set from names, trimming and dropping blanks and duplicates.
// Matching is exact: record keys are compared as given.
func NewFieldSet(names ...string) FieldSet {
	clean := pstrings.DedupeAndTrim(names)
	set := make(map[string]struct{}, len(clean))
	for _, n := range clean {
		set[n] = struct{}{}
	}
	return FieldSet{names: set}
}

// DefaultFieldSet returns the set built from DefaultSensitiveFields.
func DefaultFieldSet() FieldSet {
	return NewFieldSet(DefaultSensitiveFields...)
}

// Contains reports whether name is a sensitive field.
func (f FieldSet) Contains(name string) bool {
	_, ok := f.names[name]
	return ok
}

// Names returns the members in sorted order.
func (f FieldSet) Names() []string {
	out := make([]string, 0, len(f.names))
	for n := range f.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of members.
func (f FieldSet) Len() int { return len(f.names) }
