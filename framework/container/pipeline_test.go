package container_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shomsy/foundation/framework/container"
	"github.com/shomsy/foundation/framework/prototype"
)

// orderRepo and orderService form a resolution cycle through their
// constructors.
type orderRepo struct{ svc *orderService }

func (r *orderRepo) Construct(svc *orderService) { r.svc = svc }

type orderService struct{ repo *orderRepo }

func (s *orderService) Construct(repo *orderRepo) { s.repo = repo }

func TestPipeline_DetectsConstructorCycles(t *testing.T) {
	c := container.New()
	svcKey := container.Register[orderService](c, container.Transient)
	repoKey := container.Register[orderRepo](c, container.Transient)

	_, err := c.Resolve(svcKey)

	var rec *container.RecursionError
	require.ErrorAs(t, err, &rec)
	assert.Equal(t, []string{svcKey, repoKey, svcKey}, rec.Chain)
	assert.Contains(t, err.Error(), "circular dependency detected: ")
	assert.Contains(t, rec.Error(), " -> ")
}

func TestPipeline_DetectsCyclesThroughFactoryBindings(t *testing.T) {
	c := container.New()
	c.Bind("a", func(c *container.Container) any {
		v, err := c.Resolve("b")
		if err != nil {
			panic(err)
		}
		return v
	})
	c.Bind("b", func(c *container.Container) any {
		v, err := c.Resolve("a")
		if err != nil {
			panic(err)
		}
		return v
	})

	assert.PanicsWithError(t, "circular dependency detected: a -> b -> a", func() {
		_, _ = c.Resolve("a")
	})
}

func TestPipeline_GuardDeniesBeforeAnyWork(t *testing.T) {
	denied := &container.SecurityError{ID: "internal.vault", Reason: "restricted namespace"}
	c := container.New(container.WithGuard(container.GuardFunc(
		func(id string, ctx *container.Context) error {
			if strings.HasPrefix(id, "internal.") {
				return denied
			}
			return nil
		})))
	c.Instance("internal.vault", "secret")
	c.Instance("public.config", "ok")

	_, err := c.Resolve("internal.vault")
	var sec *container.SecurityError
	require.ErrorAs(t, err, &sec)
	assert.Same(t, denied, sec)

	got, err := c.Resolve("public.config")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestPipeline_GuardErrorsAreWrappedAsSecurityErrors(t *testing.T) {
	c := container.New(container.WithGuard(container.GuardFunc(
		func(id string, ctx *container.Context) error {
			return fmt.Errorf("audit backend unavailable")
		})))
	c.Instance("anything", 1)

	_, err := c.Resolve("anything")
	var sec *container.SecurityError
	require.ErrorAs(t, err, &sec)
	assert.Equal(t, "anything", sec.ID)
	assert.Equal(t, "audit backend unavailable", sec.Reason)
}

func TestPipeline_PolicyDenialsAreNeverSwallowedByFallbacks(t *testing.T) {
	c := container.New(container.WithGuard(container.GuardFunc(
		func(id string, ctx *container.Context) error {
			if id == "mail.transport" {
				return fmt.Errorf("not allowed")
			}
			return nil
		})))
	c.Instance("mail.transport", "smtp")

	// The parameter carries a default, but a denial must not fall through
	// to it.
	key := container.Register[reportJob](c, container.Transient)
	seedPrototype(t, c, key, prototype.NewBuilder(key).
		Constructor(prototype.ParameterPrototype{
			Name: "transport", Type: "mail.transport", HasDefault: true, Default: "fallback",
		}).
		Build())

	_, err := c.Resolve(key)
	var sec *container.SecurityError
	require.ErrorAs(t, err, &sec)
}

func TestPipeline_UnknownIdentifierIsNotFound(t *testing.T) {
	c := container.New()

	_, err := c.Resolve("acme.Missing")
	var nf *container.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.EqualError(t, err, "no service found for type: acme.Missing")
}

func TestPipeline_ConcurrentSingletonResolutionConstructsOnce(t *testing.T) {
	c := container.New()
	var built int
	c.Singleton("slow.service", func(c *container.Container) any {
		built++
		time.Sleep(10 * time.Millisecond)
		return &connection{id: built}
	})

	const workers = 16
	results := make([]any, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := c.Resolve("slow.service")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, built)
	for _, v := range results {
		assert.Same(t, results[0], v)
	}
}

func TestPipeline_RegisteredTypeBuildsThroughItsConstructor(t *testing.T) {
	c := container.New()
	repoKey := container.Register[auditTrail](c, container.Singleton)
	svcKey := container.Register[billingService](c, container.Transient)

	got, err := c.Resolve(svcKey)
	require.NoError(t, err)
	svc, ok := got.(*billingService)
	require.True(t, ok)
	require.NotNil(t, svc.trail)

	trail, err := c.Resolve(repoKey)
	require.NoError(t, err)
	assert.Same(t, trail, svc.trail, "singleton dependency is shared")
}

type auditTrail struct{ entries []string }

func (a *auditTrail) record(line string) { a.entries = append(a.entries, line) }

type billingService struct{ trail *auditTrail }

func (s *billingService) Construct(trail *auditTrail) { s.trail = trail }

// seedPrototype plants a hand-built blueprint in the container's prototype
// cache so resolution uses it instead of reflecting over the type.
func seedPrototype(t *testing.T, c *container.Container, class string, proto *prototype.ServicePrototype) {
	t.Helper()
	require.NoError(t, c.Prototypes().Cache().Set(class, proto))
}
