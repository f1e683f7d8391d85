package prototype_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shomsy/foundation/framework/prototype"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type AuditSink interface {
	Record(entry string)
}

type Queue struct{ name string }

type Handler struct {
	Sink    AuditSink `inject:""`
	Queue   *Queue    `inject:"required"`
	Retries int       `inject:"optional"`
	secret  string    `inject:""` // unexported: must be skipped
	Plain   string    // untagged: not an injection point
}

func (h *Handler) Construct(queue *Queue, labels ...string) { h.Queue = queue; _ = labels }

func (h *Handler) InjectSink(sink AuditSink) { h.Sink = sink }

// Silence "unused field" vet noise for fixture-only members.
func (h *Handler) touch() { _ = h.secret }

type bare struct{ n int }

type untypedRequired struct {
	Timeout int `inject:"required"`
}

// ── Analyze ───────────────────────────────────────────────────────────────────

func TestAnalyze_Constructor(t *testing.T) {
	proto, err := prototype.NewAnalyzer().Analyze(reflect.TypeOf((*Handler)(nil)))
	require.NoError(t, err)

	assert.Equal(t, prototype.TypeKeyOf((*Handler)(nil)), proto.Class)
	assert.True(t, proto.Instantiable)

	require.NotNil(t, proto.Constructor)
	require.Len(t, proto.Constructor.Parameters, 2)

	queue := proto.Constructor.Parameters[0]
	assert.Equal(t, "queue", queue.Name)
	assert.Equal(t, prototype.TypeKeyOf((*Queue)(nil)), queue.Type)
	assert.True(t, queue.AllowsNull)
	assert.False(t, queue.Variadic)
	assert.Equal(t, 0, queue.Position)

	labels := proto.Constructor.Parameters[1]
	assert.True(t, labels.Variadic)
	assert.Empty(t, labels.Type, "builtin element type is unresolvable by type")
	assert.Equal(t, 1, labels.Position)
}

func TestAnalyze_NoConstructorMeansDefaultConstructor(t *testing.T) {
	proto, err := prototype.NewAnalyzer().Analyze(reflect.TypeOf(bare{}))
	require.NoError(t, err)
	assert.Nil(t, proto.Constructor)
	assert.False(t, proto.HasConstructor())
}

func TestAnalyze_Properties(t *testing.T) {
	proto, err := prototype.NewAnalyzer().Analyze(reflect.TypeOf((*Handler)(nil)))
	require.NoError(t, err)

	require.Contains(t, proto.Properties, "Sink")
	sink := proto.Properties["Sink"]
	assert.Equal(t, prototype.TypeKeyOf((*AuditSink)(nil)), sink.Type)
	assert.True(t, sink.AllowsNull)
	assert.False(t, sink.Required, "nillable fields default to optional")

	require.Contains(t, proto.Properties, "Queue")
	assert.True(t, proto.Properties["Queue"].Required)

	require.Contains(t, proto.Properties, "Retries")
	retries := proto.Properties["Retries"]
	assert.Empty(t, retries.Type, "primitive fields are unresolvable by type")
	assert.False(t, retries.Required)

	assert.NotContains(t, proto.Properties, "secret", "unexported fields cannot be set post-construction")
	assert.NotContains(t, proto.Properties, "Plain", "untagged fields are not injection points")
}

func TestAnalyze_InjectionMethods(t *testing.T) {
	proto, err := prototype.NewAnalyzer().Analyze(reflect.TypeOf((*Handler)(nil)))
	require.NoError(t, err)

	require.Len(t, proto.Methods, 1)
	assert.Equal(t, "InjectSink", proto.Methods[0].Name)
	require.Len(t, proto.Methods[0].Parameters, 1)
	assert.Equal(t, prototype.TypeKeyOf((*AuditSink)(nil)), proto.Methods[0].Parameters[0].Type)
}

func TestAnalyze_NonStructIsNotInstantiable(t *testing.T) {
	_, err := prototype.NewAnalyzer().Analyze(reflect.TypeOf(42))

	var analysisErr *prototype.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Contains(t, analysisErr.Error(), "not instantiable")
}

func TestAnalyze_RequiredUntypedPropertyFails(t *testing.T) {
	_, err := prototype.NewAnalyzer().Analyze(reflect.TypeOf((*untypedRequired)(nil)))

	var analysisErr *prototype.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Contains(t, analysisErr.Error(), "Timeout")
}

func TestTypeKey_StripsPointers(t *testing.T) {
	direct := prototype.TypeKey(reflect.TypeOf(Queue{}))
	viaPtr := prototype.TypeKey(reflect.TypeOf((*Queue)(nil)))
	assert.Equal(t, direct, viaPtr)
	assert.Contains(t, direct, "Queue")
}
