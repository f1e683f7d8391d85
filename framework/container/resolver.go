package container

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/shomsy/foundation/framework/prototype"
)

// ── Overrides ─────────────────────────────────────────────────────────────────

// Overrides carries caller-supplied argument values for one resolution.
// Named entries match parameters and properties by name; Positional entries
// match constructor parameters by position, and any positional tail beyond
// the declared parameters is collected by a variadic parameter.
type Overrides struct {
	Named      map[string]any
	Positional []any
}

// WithValue returns a copy of the overrides with one more named value.
//
//	c.ResolveWith(key, container.Overrides{}.WithValue("retries", 5))
func (o Overrides) WithValue(name string, value any) Overrides {
	named := make(map[string]any, len(o.Named)+1)
	for k, v := range o.Named {
		named[k] = v
	}
	named[name] = value
	return Overrides{Named: named, Positional: o.Positional}
}

func (o Overrides) named(name string) (any, bool) {
	v, ok := o.Named[name]
	return v, ok
}

func (o Overrides) positional(i int) (any, bool) {
	if i < 0 || i >= len(o.Positional) {
		return nil, false
	}
	return o.Positional[i], true
}

// IsEmpty reports whether no override was supplied.
func (o Overrides) IsEmpty() bool {
	return len(o.Named) == 0 && len(o.Positional) == 0
}

// ── Dependency resolver ───────────────────────────────────────────────────────

// resolveArguments resolves concrete values for a constructor or injection
// method, in declaration order. fn is the reflected method type (receiver
// already bound, so input i corresponds to params[i]).
//
// Per-parameter priority, first match wins:
//  1. explicit caller override (positional, then by name);
//  2. container resolution of the parameter's service type, re-entering the
//     pipeline with the surrounding context so cycle detection state
//     propagates — "not found" and resolution failures fall through,
//     recursion and policy denials do not;
//  3. the declared default value;
//  4. null, when the parameter allows it;
//  5. a ResolutionError naming the parameter.
//
// A variadic parameter collects all remaining positional overrides.
func (c *Container) resolveArguments(fn reflect.Type, params []prototype.ParameterPrototype, overrides Overrides, ctx *Context) ([]reflect.Value, error) {
	args := make([]reflect.Value, 0, len(params))

	for i, param := range params {
		// A cached prototype can disagree with the live signature after a
		// code change; never index past what the method declares.
		if i >= fn.NumIn() {
			return nil, resolutionFailure(ctx, param,
				fmt.Errorf("method accepts only %d parameters", fn.NumIn()))
		}
		if param.Variadic && (!fn.IsVariadic() || i != fn.NumIn()-1) {
			return nil, resolutionFailure(ctx, param,
				fmt.Errorf("method has no variadic parameter at position %d", param.Position))
		}
		if param.Variadic {
			elemTy := fn.In(i).Elem()
			for pos := param.Position; ; pos++ {
				v, ok := overrides.positional(pos)
				if !ok {
					break
				}
				arg, err := coerce(v, elemTy)
				if err != nil {
					return nil, resolutionFailure(ctx, param, err)
				}
				args = append(args, arg)
			}
			break
		}

		argTy := fn.In(i)

		if v, ok := overrides.positional(param.Position); ok {
			arg, err := coerce(v, argTy)
			if err != nil {
				return nil, resolutionFailure(ctx, param, err)
			}
			args = append(args, arg)
			continue
		}
		if v, ok := overrides.named(param.Name); ok {
			arg, err := coerce(v, argTy)
			if err != nil {
				return nil, resolutionFailure(ctx, param, err)
			}
			args = append(args, arg)
			continue
		}

		var resolveErr error
		if param.Type != "" {
			v, err := c.resolve(param.Type, ctx, Overrides{})
			if err == nil {
				arg, cerr := coerce(v, argTy)
				if cerr != nil {
					return nil, resolutionFailure(ctx, param, cerr)
				}
				args = append(args, arg)
				continue
			}
			if isTerminal(err) {
				return nil, err
			}
			// Not found / failed: fall through to defaults, but keep the
			// failure as the cause if no fallback applies either.
			resolveErr = err
		}

		if param.HasDefault {
			arg, err := coerce(param.Default, argTy)
			if err != nil {
				return nil, resolutionFailure(ctx, param, err)
			}
			args = append(args, arg)
			continue
		}

		if param.AllowsNull {
			args = append(args, reflect.Zero(argTy))
			continue
		}

		cause := resolveErr
		if cause == nil {
			cause = fmt.Errorf("no resolvable type, override, default, or null fallback")
		}
		return nil, resolutionFailure(ctx, param, cause)
	}

	return args, nil
}

// isTerminal reports errors that must never be swallowed by fall-through:
// cycles and policy denials abort the whole branch.
func isTerminal(err error) bool {
	var rec *RecursionError
	var sec *SecurityError
	return errors.As(err, &rec) || errors.As(err, &sec)
}

func resolutionFailure(ctx *Context, param prototype.ParameterPrototype, cause error) error {
	return &ResolutionError{
		Reason: fmt.Sprintf("parameter %s (position %d) of [%s] cannot be resolved",
			param.Name, param.Position, ctx.ID()),
		Err: cause,
	}
}

// coerce converts an arbitrary value to the reflected parameter type.
// Assignable values pass straight through; nil becomes the type's zero
// value. Conversion is limited to numeric values that survive the round
// trip: the float64 a JSON cache entry hands back for an int default is
// accepted, a truncating float or any cross-kind conversion (int to
// string, say) is rejected rather than silently mangled.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if numericKind(rv.Kind()) && numericKind(t.Kind()) && rv.Type().ConvertibleTo(t) {
		converted := rv.Convert(t)
		if converted.Convert(rv.Type()).Interface() == rv.Interface() {
			return converted, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("value of type %T is not assignable to %s", v, t)
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
