package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalArithmetic(t *testing.T) {
	prog, err := Compile("{units} * {price} - {discount}", nil)
	require.NoError(t, err)
	v, unresolved := prog.Eval(MapEnv{"units": 3, "price": 10, "discount": 5})
	assert.Empty(t, unresolved)
	assert.Equal(t, 25.0, v)
}

func TestEvalDivisionByZeroDegradesToZero(t *testing.T) {
	prog, err := Compile("{a} / {b}", nil)
	require.NoError(t, err)
	v, unresolved := prog.Eval(MapEnv{"a": 10, "b": 0})
	assert.Empty(t, unresolved)
	assert.Equal(t, 0.0, v)
}

func TestEvalUnknownPlaceholderWarnsAndDegradesToZero(t *testing.T) {
	prog, err := Compile("{known} + {missing}", nil)
	require.NoError(t, err)
	v, unresolved := prog.Eval(MapEnv{"known": 7})
	assert.Equal(t, []string{"missing"}, unresolved)
	assert.Equal(t, 7.0, v)
}

func TestEvalLocaleNumberLiterals(t *testing.T) {
	prog, err := Compile("{x} + 1,5", nil)
	require.NoError(t, err)
	v, _ := prog.Eval(MapEnv{"x": 1})
	assert.Equal(t, 2.5, v)

	prog2, err := Compile("R$ 10 + {x}", nil)
	require.NoError(t, err)
	v2, _ := prog2.Eval(MapEnv{"x": 5})
	assert.Equal(t, 15.0, v2)
}

func TestEvalComparisonAndBoolean(t *testing.T) {
	prog, err := Compile("({a} > {b}) && ({a} < 100)", nil)
	require.NoError(t, err)
	v, _ := prog.Eval(MapEnv{"a": 50, "b": 10})
	assert.Equal(t, 1.0, v)
}

func TestEvalRounding(t *testing.T) {
	decimals := 2
	prog, err := Compile("{a} / {b}", &decimals)
	require.NoError(t, err)
	v, _ := prog.Eval(MapEnv{"a": 1, "b": 3})
	assert.Equal(t, 0.33, v)
}

func TestCompileSyntaxErrors(t *testing.T) {
	cases := []string{
		"",
		"{unterminated",
		"1 +",
		"1 + 2)",
		"(1 + 2",
		"1 & 2",
	}
	for _, c := range cases {
		_, err := Compile(c, nil)
		assert.Error(t, err, "expected error for %q", c)
	}
}

func TestCompileUnaryNegation(t *testing.T) {
	prog, err := Compile("-{a} + 5", nil)
	require.NoError(t, err)
	v, _ := prog.Eval(MapEnv{"a": 2})
	assert.Equal(t, 3.0, v)
}
