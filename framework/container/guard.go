package container

// Guard is the policy gate consulted before any resolution work begins.
// A non-nil return denies the request and fails the whole pipeline with a
// SecurityError; the gate is checked before even the cycle check runs.
//
//	c := container.New(container.WithGuard(container.GuardFunc(
//	    func(id string, ctx *container.Context) error {
//	        if strings.HasPrefix(id, "internal.") && ctx.Parent() == nil {
//	            return fmt.Errorf("internal services cannot be resolved directly")
//	        }
//	        return nil
//	    })))
type Guard interface {
	CheckAllowed(id string, ctx *Context) error
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func(id string, ctx *Context) error

func (f GuardFunc) CheckAllowed(id string, ctx *Context) error { return f(id, ctx) }

// AllowAll is the default policy: every resolution is permitted.
type AllowAll struct{}

func (AllowAll) CheckAllowed(string, *Context) error { return nil }
