package container

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/shomsy/foundation/framework/prototype"
)

// ── Property & method injector ────────────────────────────────────────────────

// injectProperties hydrates the injectable fields of a freshly built
// instance, in deterministic (name) order.
//
// Each property follows the constructor priority ladder — override, then
// container, then fallback — with one property-specific policy: a property
// that already holds a code-level default keeps it when nothing can resolve
// the type; injection is skipped rather than forced to nil or failed. A
// property the prototype targets but reflection cannot assign is a hard
// error: the prototype and the class disagree.
func (c *Container) injectProperties(instance reflect.Value, proto *prototype.ServicePrototype, overrides Overrides, ctx *Context) error {
	if len(proto.Properties) == 0 {
		return nil
	}
	elem := instance.Elem()

	names := make([]string, 0, len(proto.Properties))
	for name := range proto.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := proto.Properties[name]

		field := elem.FieldByName(prop.Name)
		if !field.IsValid() || !field.CanSet() {
			return &ResolutionError{
				Reason: fmt.Sprintf("property %s in class %s cannot be assigned after construction",
					prop.Name, proto.Class),
			}
		}

		if v, ok := overrides.named(prop.Name); ok {
			val, err := coerce(v, field.Type())
			if err != nil {
				return &ResolutionError{
					Reason: fmt.Sprintf("property %s in class %s cannot accept the supplied override", prop.Name, proto.Class),
					Err:    err,
				}
			}
			field.Set(val)
			continue
		}

		var resolveErr error
		if prop.Type != "" {
			v, err := c.resolve(prop.Type, ctx, Overrides{})
			if err == nil {
				val, cerr := coerce(v, field.Type())
				if cerr != nil {
					return &ResolutionError{
						Reason: fmt.Sprintf("property %s in class %s resolved to an incompatible value", prop.Name, proto.Class),
						Err:    cerr,
					}
				}
				field.Set(val)
				continue
			}
			if isTerminal(err) {
				return err
			}
			resolveErr = err
		}

		// Unresolvable from here on — pick the gentlest fallback.
		if prop.HasDefault || !field.IsZero() {
			continue // the code-level default stays
		}
		if !prop.Required {
			continue // optional / nullable: stays zero
		}
		cause := resolveErr
		if cause == nil {
			cause = &NotFoundError{ID: prop.Type}
		}
		return &ResolutionError{
			Reason: fmt.Sprintf("Required property %s in class %s cannot be resolved", prop.Name, proto.Class),
			Err:    cause,
		}
	}
	return nil
}

// invokeInjectionMethods calls each injectable method on the built
// instance, in the order the prototype records, resolving parameters
// exactly like constructor parameters.
func (c *Container) invokeInjectionMethods(instance reflect.Value, proto *prototype.ServicePrototype, ctx *Context) error {
	for i := range proto.Methods {
		mp := &proto.Methods[i]
		method := instance.MethodByName(mp.Name)
		if !method.IsValid() {
			return &ResolutionError{
				Reason: fmt.Sprintf("injection method %s recorded in prototype of %s does not exist", mp.Name, proto.Class),
			}
		}
		args, err := c.resolveArguments(method.Type(), mp.Parameters, Overrides{}, ctx)
		if err != nil {
			return err
		}
		if err := checkArity(method.Type(), len(args)); err != nil {
			return &ResolutionError{
				Reason: fmt.Sprintf("injection method %s of class %s cannot be invoked", mp.Name, proto.Class),
				Err:    err,
			}
		}
		method.Call(args)
	}
	return nil
}
