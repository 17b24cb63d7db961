package validation

import (
	"slices"

	dErrors "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/domain-errors"
)

// ResourceType tags the closed set of inbound payload shapes.
type ResourceType string

const (
	ResourceRegistration ResourceType = "registration"
	ResourceLogin        ResourceType = "login"
	ResourceProduct      ResourceType = "product"
	ResourceOrder        ResourceType = "order"
)

// ParseResourceType constructs a ResourceType from external input.
func ParseResourceType(s string) (ResourceType, error) {
	rt := ResourceType(s)
	if _, ok := schemas[rt]; !ok {
		return "", dErrors.NewField(dErrors.CodeValidation, "resource", ConstraintUnknown, "unknown resource type")
	}
	return rt, nil
}

// Kind is the type constraint of a schema field. It decides both the
// normalizer and the checks that run after normalization.
type Kind int

const (
	KindText     Kind = iota // markup stripped, trimmed
	KindEmail                // trimmed, lower-cased, address syntax checked
	KindPassword             // untouched; length bounds only
	KindPhone                // reduced to digits, leading +, -, (, ) and spaces
	KindURL                  // absolute http(s) URL
	KindID                   // canonical UUID cross-reference
	KindNumber               // finite float64
	KindInteger              // whole number, stored as int64
	KindList                 // list of objects described by Items
)

// Field declares one schema entry. MinLen and MaxLen count runes for string
// kinds and elements for KindList; zero MaxLen means unbounded.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	MinLen      int
	MaxLen      int
	Positive    bool // numeric value must be > 0
	NonNegative bool // numeric value must be >= 0
	Items       []Field
}

// Schema is the fixed field list for one resource type.
type Schema struct {
	Resource ResourceType
	Fields   []Field
}

// schemas is built once at init and never mutated; SchemaFor hands out copies.
var schemas = map[ResourceType]Schema{
	ResourceRegistration: {
		Resource: ResourceRegistration,
		Fields: []Field{
			{Name: "email", Kind: KindEmail, Required: true, MaxLen: 254},
			{Name: "password", Kind: KindPassword, Required: true, MinLen: 8, MaxLen: 100},
			{Name: "name", Kind: KindText, Required: true, MinLen: 1, MaxLen: 100},
			{Name: "phone", Kind: KindPhone, MinLen: 7, MaxLen: 20},
			{Name: "address", Kind: KindText, MaxLen: 500},
		},
	},
	ResourceLogin: {
		Resource: ResourceLogin,
		Fields: []Field{
			{Name: "email", Kind: KindEmail, Required: true, MaxLen: 254},
			{Name: "password", Kind: KindPassword, Required: true, MinLen: 1, MaxLen: 100},
		},
	},
	ResourceProduct: {
		Resource: ResourceProduct,
		Fields: []Field{
			{Name: "name", Kind: KindText, Required: true, MinLen: 1, MaxLen: 200},
			{Name: "description", Kind: KindText, MaxLen: 5000},
			{Name: "price", Kind: KindNumber, Required: true, Positive: true},
			{Name: "stock", Kind: KindInteger, Required: true, NonNegative: true},
			{Name: "category", Kind: KindText, Required: true, MinLen: 1, MaxLen: 100},
			{Name: "imageUrl", Kind: KindURL, MaxLen: 2048},
		},
	},
	ResourceOrder: {
		Resource: ResourceOrder,
		Fields: []Field{
			{Name: "items", Kind: KindList, Required: true, MinLen: 1, MaxLen: 100, Items: []Field{
				{Name: "productId", Kind: KindID, Required: true},
				{Name: "quantity", Kind: KindInteger, Required: true, Positive: true},
			}},
			{Name: "shippingAddress", Kind: KindText, Required: true, MinLen: 5, MaxLen: 500},
			{Name: "phone", Kind: KindPhone, Required: true, MinLen: 7, MaxLen: 20},
			{Name: "notes", Kind: KindText, MaxLen: 1000},
		},
	},
}

// SchemaFor returns a copy of the schema registered for rt.
func SchemaFor(rt ResourceType) (Schema, bool) {
	s, ok := schemas[rt]
	if !ok {
		return Schema{}, false
	}
	return Schema{Resource: s.Resource, Fields: cloneFields(s.Fields)}, true
}

// ResourceTypes lists the registered resource types in a stable order.
func ResourceTypes() []ResourceType {
	out := make([]ResourceType, 0, len(schemas))
	for rt := range schemas {
		out = append(out, rt)
	}
	slices.Sort(out)
	return out
}

func cloneFields(fields []Field) []Field {
	out := slices.Clone(fields)
	for i := range out {
		if out[i].Items != nil {
			out[i].Items = cloneFields(out[i].Items)
		}
	}
	return out
}
