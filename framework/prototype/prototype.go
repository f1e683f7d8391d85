package prototype

import (
	"reflect"
)

// ── Prototype model ───────────────────────────────────────────────────────────

// ParameterPrototype describes a single constructor or method parameter.
//
// Type is the canonical service key the parameter resolves by, or "" when the
// parameter cannot be resolved by type (builtins, primitives) and must be
// satisfied by an override, a default, or null.
//
// Prototypes are immutable once created: they are produced by the Analyzer or
// a Builder, then only ever read.
type ParameterPrototype struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	HasDefault bool   `json:"has_default,omitempty"`
	Default    any    `json:"default,omitempty"`
	AllowsNull bool   `json:"allows_null,omitempty"`
	Variadic   bool   `json:"variadic,omitempty"`
	Position   int    `json:"position"`
}

// MethodPrototype describes an invokable injection point: either the
// constructor or an injectable method.
type MethodPrototype struct {
	Name       string               `json:"name"`
	Parameters []ParameterPrototype `json:"parameters,omitempty"`
}

// PropertyPrototype describes an injectable property (struct field).
type PropertyPrototype struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	AllowsNull bool   `json:"allows_null,omitempty"`
	HasDefault bool   `json:"has_default,omitempty"`
	Required   bool   `json:"required,omitempty"`
	Exported   bool   `json:"exported"`
}

// ServicePrototype is the complete blueprint for constructing and hydrating
// one class.
//
//	// Laravel analogue: the reflection metadata the container gathers in
//	// Container::build() before calling newInstanceArgs().
//
// Constructor is nil when the class declares none — the default constructor
// (zero-value instantiation) is used. Properties is keyed by field name;
// insertion order is irrelevant. Methods preserves declaration order and is
// invoked in that order after construction.
type ServicePrototype struct {
	Class        string                       `json:"class"`
	Instantiable bool                         `json:"instantiable"`
	Constructor  *MethodPrototype             `json:"constructor,omitempty"`
	Properties   map[string]PropertyPrototype `json:"properties,omitempty"`
	Methods      []MethodPrototype            `json:"methods,omitempty"`
}

// HasConstructor reports whether the class declares an explicit constructor.
func (p *ServicePrototype) HasConstructor() bool {
	return p.Constructor != nil && len(p.Constructor.Parameters) > 0
}

// ── TypeKey ───────────────────────────────────────────────────────────────────

// TypeKey returns the package-qualified name of t, the canonical class key
// used throughout the container, the analyzer and the cache.
//
//	key := prototype.TypeKey(reflect.TypeOf((*UserRepository)(nil)))
//	// "github.com/acme/app.UserRepository"
//
// Pointers are stripped so *T and T share one key.
func TypeKey(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// TypeKeyOf is the value-based variant of TypeKey.
//
//	key := prototype.TypeKeyOf((*UserRepository)(nil))
func TypeKeyOf(v any) string {
	return TypeKey(reflect.TypeOf(v))
}

// ── Builder ───────────────────────────────────────────────────────────────────

// Builder assembles a ServicePrototype by hand, for tests and ahead-of-time
// configuration where no live type is available to reflect over.
//
//	proto := prototype.NewBuilder("acme.Mailer").
//	    Constructor(
//	        prototype.Param("transport", "acme.Transport"),
//	        prototype.DefaultParam("retries", 3),
//	    ).
//	    Property("Logger", "acme.Logger", true).
//	    Method("InjectQueue", prototype.Param("queue", "acme.Queue")).
//	    Build()
type Builder struct {
	proto ServicePrototype
}

// NewBuilder starts a builder for the given class key. The prototype is
// instantiable unless NotInstantiable is called.
func NewBuilder(class string) *Builder {
	return &Builder{proto: ServicePrototype{
		Class:        class,
		Instantiable: true,
	}}
}

// NotInstantiable marks the class as impossible to construct.
func (b *Builder) NotInstantiable() *Builder {
	b.proto.Instantiable = false
	return b
}

// Constructor records the constructor parameter list. Positions are assigned
// from declaration order.
func (b *Builder) Constructor(params ...ParameterPrototype) *Builder {
	for i := range params {
		params[i].Position = i
	}
	b.proto.Constructor = &MethodPrototype{Name: ConstructorName, Parameters: params}
	return b
}

// Property adds an injectable property.
func (b *Builder) Property(name, typ string, required bool) *Builder {
	if b.proto.Properties == nil {
		b.proto.Properties = make(map[string]PropertyPrototype)
	}
	b.proto.Properties[name] = PropertyPrototype{
		Name:     name,
		Type:     typ,
		Required: required,
		Exported: isExportedName(name),
	}
	return b
}

// PropertyPrototype adds a fully specified injectable property.
func (b *Builder) PropertyPrototype(p PropertyPrototype) *Builder {
	if b.proto.Properties == nil {
		b.proto.Properties = make(map[string]PropertyPrototype)
	}
	b.proto.Properties[p.Name] = p
	return b
}

// Method appends an injectable method, invoked after construction in the
// order methods were added.
func (b *Builder) Method(name string, params ...ParameterPrototype) *Builder {
	for i := range params {
		params[i].Position = i
	}
	b.proto.Methods = append(b.proto.Methods, MethodPrototype{Name: name, Parameters: params})
	return b
}

// Build finalizes and returns the prototype.
func (b *Builder) Build() *ServicePrototype {
	p := b.proto
	return &p
}

// Param is a shorthand for a typed, required parameter.
func Param(name, typ string) ParameterPrototype {
	return ParameterPrototype{Name: name, Type: typ}
}

// DefaultParam is a shorthand for a parameter carrying a declared default.
func DefaultParam(name string, def any) ParameterPrototype {
	return ParameterPrototype{Name: name, HasDefault: true, Default: def}
}

// NullableParam is a shorthand for a parameter that accepts null.
func NullableParam(name, typ string) ParameterPrototype {
	return ParameterPrototype{Name: name, Type: typ, AllowsNull: true}
}

func isExportedName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}
