package prototype

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// ConstructorName is the method the container treats as the constructor.
//
//	func (s *Service) Construct(repo *Repository, logger Logger) { ... }
const ConstructorName = "Construct"

// InjectMethodPrefix marks post-construction injection methods.
//
//	func (s *Service) InjectMailer(m *Mailer) { ... }
const InjectMethodPrefix = "Inject"

// injectTag marks struct fields as injectable properties. Recognized options
// are "required" and "optional"; without one, a field that can hold nil is
// optional and anything else is required.
const injectTag = "inject"

// Analyzer produces a ServicePrototype from a live type. It is an interface
// so callers (and tests) can substitute the reflection-backed implementation.
type Analyzer interface {
	Analyze(t reflect.Type) (*ServicePrototype, error)
}

// ReflectionAnalyzer inspects Go types with the reflect package and builds
// their blueprints.
//
// Rules, mirroring the container's runtime behaviour:
//   - the constructor is the exported method named Construct on *T; a type
//     without one gets the default constructor (nil Constructor);
//   - injectable properties are exported fields carrying an `inject` tag;
//     unexported tagged fields are skipped — reflection cannot set them
//     after construction, so they are excluded rather than rejected;
//   - injectable methods are exported methods prefixed "Inject";
//   - a parameter or property resolves by type only when the type is a named
//     interface, struct, or pointer-to-struct; builtins and primitives are
//     unresolvable by type and must be satisfied by override, default, or
//     null.
type ReflectionAnalyzer struct{}

// NewAnalyzer returns the reflection-backed analyzer.
func NewAnalyzer() *ReflectionAnalyzer { return &ReflectionAnalyzer{} }

// Analyze reflects t and returns its ServicePrototype.
//
// It fails with *AnalysisError when t is not an instantiable struct type, or
// when a required injectable property has no resolvable type and therefore
// no way to ever be satisfied.
func (a *ReflectionAnalyzer) Analyze(t reflect.Type) (*ServicePrototype, error) {
	if t == nil {
		return nil, &AnalysisError{Class: "<nil>", Reason: "no type given"}
	}
	class := TypeKey(t)

	st := t
	for st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil, &AnalysisError{
			Class:  class,
			Reason: fmt.Sprintf("type kind %s is not instantiable", st.Kind()),
		}
	}

	proto := &ServicePrototype{Class: class, Instantiable: true}
	ptr := reflect.PointerTo(st)

	if ctor, ok := ptr.MethodByName(ConstructorName); ok {
		proto.Constructor = analyzeMethod(ctor)
	}

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		tag, tagged := field.Tag.Lookup(injectTag)
		if !tagged {
			continue
		}
		if !field.IsExported() {
			// Cannot be set post-construction; intentional exclusion.
			continue
		}
		prop, err := analyzeProperty(class, field, tag)
		if err != nil {
			return nil, err
		}
		if proto.Properties == nil {
			proto.Properties = make(map[string]PropertyPrototype)
		}
		proto.Properties[prop.Name] = prop
	}

	for i := 0; i < ptr.NumMethod(); i++ {
		m := ptr.Method(i)
		if m.Name == ConstructorName || !strings.HasPrefix(m.Name, InjectMethodPrefix) {
			continue
		}
		proto.Methods = append(proto.Methods, *analyzeMethod(m))
	}

	return proto, nil
}

// analyzeMethod builds a MethodPrototype from a reflected method. Input 0 is
// the receiver and is skipped.
func analyzeMethod(m reflect.Method) *MethodPrototype {
	fn := m.Type
	proto := &MethodPrototype{Name: m.Name}
	for i := 1; i < fn.NumIn(); i++ {
		argTy := fn.In(i)
		variadic := fn.IsVariadic() && i == fn.NumIn()-1
		if variadic {
			argTy = argTy.Elem()
		}
		pos := i - 1
		proto.Parameters = append(proto.Parameters, ParameterPrototype{
			Name:       parameterName(argTy, pos),
			Type:       serviceType(argTy),
			AllowsNull: nillable(argTy),
			Variadic:   variadic,
			Position:   pos,
		})
	}
	return proto
}

func analyzeProperty(class string, field reflect.StructField, tag string) (PropertyPrototype, error) {
	typ := serviceType(field.Type)
	allowsNull := nillable(field.Type)

	required := !allowsNull
	for _, opt := range strings.Split(tag, ",") {
		switch strings.TrimSpace(opt) {
		case "required":
			required = true
		case "optional":
			required = false
		}
	}

	if required && typ == "" {
		return PropertyPrototype{}, &AnalysisError{
			Class:  class,
			Reason: fmt.Sprintf("required property %s has no resolvable type", field.Name),
		}
	}

	return PropertyPrototype{
		Name:       field.Name,
		Type:       typ,
		AllowsNull: allowsNull,
		Required:   required,
		Exported:   true,
	}, nil
}

// serviceType maps a reflected type to its canonical service key, or ""
// when the type cannot be resolved through the container. This is the
// explicit ordered rule for multi-shape declarations: named interfaces,
// structs and pointers-to-struct win; everything primitive loses.
func serviceType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Interface:
		if t.Name() == "" || t.NumMethod() == 0 {
			return "" // `any` carries no resolution information
		}
		return TypeKey(t)
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct {
			return TypeKey(t)
		}
		return ""
	case reflect.Struct:
		return TypeKey(t)
	default:
		return ""
	}
}

// nillable reports whether the zero value of t is nil.
func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

// parameterName derives a stable name for a parameter. Go reflection does
// not expose declared parameter names, so package-scoped named types
// contribute a lower-camel name and everything else falls back to its
// position.
func parameterName(t reflect.Type, pos int) string {
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.PkgPath() != "" && base.Name() != "" {
		runes := []rune(base.Name())
		runes[0] = unicode.ToLower(runes[0])
		return string(runes)
	}
	return fmt.Sprintf("arg%d", pos)
}
