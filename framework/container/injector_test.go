package container_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shomsy/foundation/framework/container"
	"github.com/shomsy/foundation/framework/prototype"
)

// paymentProcessor declares every flavour of injectable member the analyzer
// recognizes: a required property, an optional one, and injection methods.
type paymentProcessor struct {
	Trail *auditTrail `inject:"required"`
	Limit int         `inject:"optional"`

	steps []string
}

func (p *paymentProcessor) InjectLedger(trail *auditTrail) {
	p.steps = append(p.steps, "ledger")
}

func (p *paymentProcessor) InjectNotifier(trail *auditTrail) {
	p.steps = append(p.steps, "notifier")
}

func TestInjector_HydratesRequiredPropertiesFromTheContainer(t *testing.T) {
	c := container.New()
	trailKey := container.Register[auditTrail](c, container.Singleton)
	procKey := container.Register[paymentProcessor](c, container.Transient)

	got, err := c.Resolve(procKey)
	require.NoError(t, err)

	proc := got.(*paymentProcessor)
	require.NotNil(t, proc.Trail)

	trail, _ := c.Resolve(trailKey)
	assert.Same(t, trail, proc.Trail)
	assert.Zero(t, proc.Limit, "optional untyped property stays zero")
}

func TestInjector_RequiredPropertyWithoutAServiceFails(t *testing.T) {
	c := container.New()
	procKey := container.Register[paymentProcessor](c, container.Transient)
	// auditTrail is deliberately not registered.

	_, err := c.Resolve(procKey)

	var res *container.ResolutionError
	require.ErrorAs(t, err, &res)
	assert.Contains(t, res.Reason, "Required property Trail in class")
	assert.Contains(t, res.Reason, "cannot be resolved")

	var nf *container.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestInjector_NamedOverridesReachProperties(t *testing.T) {
	c := container.New()
	procKey := container.Register[paymentProcessor](c, container.Transient)
	trail := &auditTrail{}

	got, err := c.ResolveWith(procKey, container.Overrides{}.
		WithValue("Trail", trail).
		WithValue("Limit", 500))
	require.NoError(t, err)

	proc := got.(*paymentProcessor)
	assert.Same(t, trail, proc.Trail)
	assert.Equal(t, 500, proc.Limit)
}

// warmedCache populates its own dependency in the constructor; injection
// must leave that value alone even though nothing can resolve the type.
type warmedCache struct {
	Trail *auditTrail `inject:"required"`
}

func (w *warmedCache) Construct() { w.Trail = &auditTrail{entries: []string{"warm"}} }

func TestInjector_CodeLevelDefaultsSurviveWhenNothingResolves(t *testing.T) {
	c := container.New()
	key := container.Register[warmedCache](c, container.Transient)

	got, err := c.Resolve(key)
	require.NoError(t, err)

	w := got.(*warmedCache)
	require.NotNil(t, w.Trail)
	assert.Equal(t, []string{"warm"}, w.Trail.entries)
}

func TestInjector_PrototypeTargetingAnUnassignableFieldIsAHardError(t *testing.T) {
	c := container.New()
	key := container.Register[reportJob](c, container.Transient)
	// A hand-built blueprint claiming the unexported field is injectable
	// contradicts what reflection can actually assign.
	seedPrototype(t, c, key, prototype.NewBuilder(key).
		PropertyPrototype(prototype.PropertyPrototype{
			Name: "transport", Type: "mail.transport", Required: true,
		}).
		Build())
	c.Instance("mail.transport", "smtp")

	_, err := c.Resolve(key)

	var res *container.ResolutionError
	require.ErrorAs(t, err, &res)
	assert.Contains(t, res.Reason, "cannot be assigned after construction")
}

func TestInjector_InvokesInjectionMethodsInDeclarationOrder(t *testing.T) {
	c := container.New()
	container.Register[auditTrail](c, container.Singleton)
	procKey := container.Register[paymentProcessor](c, container.Transient)

	got, err := c.Resolve(procKey)
	require.NoError(t, err)

	assert.Equal(t, []string{"ledger", "notifier"}, got.(*paymentProcessor).steps)
}

// flakyDep can never be built: its constructor wants an untyped int that
// no strategy can supply.
type flakyDep struct{ attempts int }

func (f *flakyDep) Construct(n int) { f.attempts = n }

type flakyConsumer struct {
	Dep *flakyDep `inject:"required"`
}

func TestInjector_PropertyFailureKeepsTheRealCause(t *testing.T) {
	c := container.New()
	depKey := container.Register[flakyDep](c, container.Transient)
	key := container.Register[flakyConsumer](c, container.Transient)

	_, err := c.Resolve(key)

	var res *container.ResolutionError
	require.ErrorAs(t, err, &res)
	assert.Contains(t, err.Error(), "Required property Dep in class")
	// The dependency exists but fails to build; that failure must surface
	// instead of a misleading not-found.
	assert.Contains(t, err.Error(), fmt.Sprintf("construction of [%s] failed", depKey))
	var nf *container.NotFoundError
	assert.False(t, errors.As(err, &nf))
}

func TestInjector_MethodPrototypeWithTooManyParametersFailsCleanly(t *testing.T) {
	c := container.New()
	trailKey := container.Register[auditTrail](c, container.Singleton)
	procKey := container.Register[paymentProcessor](c, container.Transient)
	// A stale blueprint recording an extra parameter the method lost.
	seedPrototype(t, c, procKey, prototype.NewBuilder(procKey).
		Method("InjectLedger",
			prototype.Param("trail", trailKey),
			prototype.Param("extra", trailKey)).
		Build())

	_, err := c.Resolve(procKey)

	var res *container.ResolutionError
	require.ErrorAs(t, err, &res)
	assert.Contains(t, err.Error(), "accepts only 1")
}

func TestInjector_MethodPrototypeWithTooFewParametersFailsCleanly(t *testing.T) {
	c := container.New()
	container.Register[auditTrail](c, container.Singleton)
	procKey := container.Register[paymentProcessor](c, container.Transient)
	seedPrototype(t, c, procKey, prototype.NewBuilder(procKey).
		Method("InjectLedger").
		Build())

	_, err := c.Resolve(procKey)

	var res *container.ResolutionError
	require.ErrorAs(t, err, &res)
	assert.Contains(t, res.Reason, "injection method InjectLedger")
	assert.Contains(t, err.Error(), "expects 1")
}

func TestInjector_MethodParametersResolveLikeConstructorParameters(t *testing.T) {
	c := container.New()
	container.Register[auditTrail](c, container.Singleton)
	procKey := container.Register[paymentProcessor](c, container.Transient)

	got, err := c.Resolve(procKey)
	require.NoError(t, err)

	proc := got.(*paymentProcessor)
	assert.Len(t, proc.steps, 2, "each injection method ran exactly once")

	// A second transient resolution repeats the full injection pass.
	again, err := c.Resolve(procKey)
	require.NoError(t, err)
	assert.NotSame(t, proc, again)
	assert.Len(t, again.(*paymentProcessor).steps, 2)
}
