package calculator

// A Calculator is a polymorphic value object embedded in a parent record
// such as a payment or shipping method. One concrete variant is selected
// per parent; only that variant's fields are ever validated.
type Calculator struct {
	Tag    string            `json:"tag"`
	Values map[string]string `json:"values"`
}

// Field is one preference of a calculator variant. Name is the raw
// attribute name as submitted by forms ("preferred_amount"); Label is the
// humanized name shown in error messages.
type Field struct {
	Name  string
	Label string
}

// Variant describes a calculator type and its fields in declaration order
type Variant struct {
	Tag    string
	Fields []Field
}

// Variant tags shipped with the registry
const (
	TagFlatRate  = "FlatRate"
	TagFlexiRate = "FlexiRate"
)

// Registry maps a variant tag to its field schema
type Registry struct {
	variants map[string]Variant
	order    []string
}

// NewRegistry returns a registry pre-loaded with the built-in variants
func NewRegistry() *Registry {
	r := &Registry{variants: map[string]Variant{}}
	r.Register(Variant{
		Tag: TagFlatRate,
		Fields: []Field{
			{Name: "preferred_amount", Label: "Amount"},
		},
	})
	r.Register(Variant{
		Tag: TagFlexiRate,
		Fields: []Field{
			{Name: "preferred_first_item", Label: "First Item"},
			{Name: "preferred_additional_item", Label: "Additional Item Cost"},
			{Name: "preferred_max_items", Label: "Max Items"},
		},
	})
	return r
}

// Register adds or replaces a variant
func (r *Registry) Register(v Variant) {
	if _, exists := r.variants[v.Tag]; !exists {
		r.order = append(r.order, v.Tag)
	}
	r.variants[v.Tag] = v
}

// Lookup returns the variant for a tag
func (r *Registry) Lookup(tag string) (Variant, bool) {
	v, ok := r.variants[tag]
	return v, ok
}

// Tags returns the registered tags in registration order
func (r *Registry) Tags() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
