package prototype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shomsy/foundation/framework/prototype"
)

func TestBuilder_AssemblesACompletePrototype(t *testing.T) {
	proto := prototype.NewBuilder("acme.Mailer").
		Constructor(
			prototype.Param("transport", "acme.Transport"),
			prototype.DefaultParam("retries", 3),
			prototype.NullableParam("fallback", "acme.Transport"),
		).
		Property("Logger", "acme.Logger", true).
		Method("InjectQueue", prototype.Param("queue", "acme.Queue")).
		Build()

	assert.Equal(t, "acme.Mailer", proto.Class)
	assert.True(t, proto.Instantiable)
	assert.True(t, proto.HasConstructor())

	params := proto.Constructor.Parameters
	assert.Equal(t, []int{0, 1, 2}, []int{params[0].Position, params[1].Position, params[2].Position})
	assert.True(t, params[1].HasDefault)
	assert.Equal(t, 3, params[1].Default)
	assert.True(t, params[2].AllowsNull)

	logger := proto.Properties["Logger"]
	assert.True(t, logger.Required)
	assert.True(t, logger.Exported)

	assert.Len(t, proto.Methods, 1)
	assert.Equal(t, "InjectQueue", proto.Methods[0].Name)
}

func TestBuilder_NotInstantiable(t *testing.T) {
	proto := prototype.NewBuilder("acme.Contract").NotInstantiable().Build()
	assert.False(t, proto.Instantiable)
	assert.False(t, proto.HasConstructor())
}

func TestBuilder_BuildCopiesSoLaterMutationIsIsolated(t *testing.T) {
	b := prototype.NewBuilder("acme.Thing")
	first := b.Build()
	b.NotInstantiable()
	second := b.Build()

	assert.True(t, first.Instantiable)
	assert.False(t, second.Instantiable)
}
