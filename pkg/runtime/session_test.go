package runtime_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pal-lang/pal/pkg/runtime"
)

func TestSessionKeepsGlobals(t *testing.T) {
	var out bytes.Buffer
	s := newRuntime(&out).NewSession()
	ctx := context.Background()

	require.NoError(t, s.Exec(ctx, "var a = 20;"))
	require.NoError(t, s.Exec(ctx, "var b = a + 1;"))
	require.NoError(t, s.Exec(ctx, "print b;"))
	assert.Equal(t, "21\n", out.String())
	assert.Equal(t, []string{"a", "b"}, s.Globals())
}

func TestSessionPrintsBareExpressions(t *testing.T) {
	var out bytes.Buffer
	s := newRuntime(&out).NewSession()
	ctx := context.Background()

	require.NoError(t, s.Exec(ctx, "1 + 2"))
	require.NoError(t, s.Exec(ctx, `"a" + "b"`))
	require.NoError(t, s.Exec(ctx, "nil"))
	assert.Equal(t, "3\nab\nnil\n", out.String())
}

func TestSessionStatementsDoNotEcho(t *testing.T) {
	var out bytes.Buffer
	s := newRuntime(&out).NewSession()

	require.NoError(t, s.Exec(context.Background(), "var x = 1; x = 2;"))
	assert.Empty(t, out.String())
}

func TestSessionErrorsKeepState(t *testing.T) {
	var out bytes.Buffer
	s := newRuntime(&out).NewSession()
	ctx := context.Background()

	require.NoError(t, s.Exec(ctx, "var a = 1;"))

	err := s.Exec(ctx, "{ var a = 2; print -nil; }")
	require.Error(t, err)
	assert.True(t, runtime.IsRuntimeError(err))

	err = s.Exec(ctx, "print ;")
	require.Error(t, err)
	assert.False(t, runtime.IsRuntimeError(err))

	err = s.Exec(ctx, "missing")
	require.Error(t, err)

	require.NoError(t, s.Exec(ctx, "a"))
	assert.Equal(t,
		"Operand must be a number. [line 1]\n"+
			"[line 1] Error at ';': Expect expression.\n"+
			"Undefined variable 'missing'. [line 1]\n"+
			"1\n",
		out.String())
}

func TestSessionEmptyInput(t *testing.T) {
	var out bytes.Buffer
	s := newRuntime(&out).NewSession()
	require.NoError(t, s.Exec(context.Background(), "   "))
	assert.Empty(t, out.String())
}

func TestComplete(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"1 + 2", true},
		{"print 1;", true},
		{"print 1", false},
		{"1 +", false},
		{"{ var a = 1;", false},
		{"if (x) {", false},
		{"\"open string", false},
		{"print ;", true},
		{"@", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, runtime.Complete(tt.input), tt.input)
	}
}
