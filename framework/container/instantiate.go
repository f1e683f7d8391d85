package container

import (
	"fmt"
	"reflect"

	"github.com/shomsy/foundation/framework/prototype"
)

// ── Instantiator ──────────────────────────────────────────────────────────────

// build constructs one class: fetch its prototype, instantiate it through
// the constructor with resolved arguments, then hydrate properties and
// injection methods. Every failure is wrapped in a ConstructionError that
// preserves the original cause.
func (c *Container) build(class string, ty reflect.Type, overrides Overrides, ctx *Context) (any, error) {
	proto, err := c.prototypeFor(class, ty, ctx)
	if err != nil {
		return nil, &ConstructionError{Class: class, Err: err}
	}
	if !proto.Instantiable {
		return nil, &ConstructionError{Class: class, Err: fmt.Errorf("class is not instantiable")}
	}

	st := ty
	for st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil, &ConstructionError{Class: class, Err: fmt.Errorf("type kind %s cannot be instantiated", st.Kind())}
	}

	instance := reflect.New(st)

	if proto.Constructor != nil {
		ctor := instance.MethodByName(proto.Constructor.Name)
		if !ctor.IsValid() {
			return nil, &ConstructionError{
				Class: class,
				Err:   fmt.Errorf("constructor %s recorded in prototype does not exist", proto.Constructor.Name),
			}
		}
		args, err := c.resolveArguments(ctor.Type(), proto.Constructor.Parameters, overrides, ctx)
		if err != nil {
			return nil, &ConstructionError{Class: class, Err: err}
		}
		if err := checkArity(ctor.Type(), len(args)); err != nil {
			return nil, &ConstructionError{
				Class: class,
				Err:   fmt.Errorf("constructor %s: %w", proto.Constructor.Name, err),
			}
		}
		ctor.Call(args)
	}

	if err := c.injectProperties(instance, proto, overrides, ctx); err != nil {
		return nil, &ConstructionError{Class: class, Err: err}
	}
	if err := c.invokeInjectionMethods(instance, proto, ctx); err != nil {
		return nil, &ConstructionError{Class: class, Err: err}
	}

	return instance.Interface(), nil
}

// checkArity verifies the resolved arguments can actually invoke a method
// with this signature. A persisted prototype can disagree with the live
// code after a signature change; calling anyway would panic deep in
// reflect instead of failing the resolution.
func checkArity(fn reflect.Type, args int) error {
	if fn.IsVariadic() {
		if args >= fn.NumIn()-1 {
			return nil
		}
		return fmt.Errorf("prototype supplies %d arguments, method expects at least %d", args, fn.NumIn()-1)
	}
	if args != fn.NumIn() {
		return fmt.Errorf("prototype supplies %d arguments, method expects %d", args, fn.NumIn())
	}
	return nil
}

// prototypeFor returns the blueprint for class, preferring the one cached
// on the resolution context so a single request never derives it twice.
func (c *Container) prototypeFor(class string, ty reflect.Type, ctx *Context) (*prototype.ServicePrototype, error) {
	if v, ok := ctx.Value(prototypeMetaKey); ok {
		if proto, ok := v.(*prototype.ServicePrototype); ok && proto.Class == class {
			return proto, nil
		}
	}
	c.mu.RLock()
	factory := c.prototypes
	c.mu.RUnlock()

	proto, err := factory.CreateFor(ty)
	if err != nil {
		return nil, err
	}
	ctx.SetValue(prototypeMetaKey, proto)
	return proto, nil
}
