package reflector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type calculator struct{}

func TestTypeInfoOf(t *testing.T) {
	ti := TypeInfoOf(&calculator{})
	require.Equal(t, "calculator", ti.Short)
	require.Equal(t, "github.com/gdmec07150948/NetX/internal/reflector.calculator", ti.Name)

	// cached pointer and value lookups agree
	require.Equal(t, ti, TypeInfoOf(&calculator{}))
	require.Equal(t, ti.Name, TypeInfoOf(calculator{}).Name)
}

func TestTypeInfoFor_builtin(t *testing.T) {
	ti := TypeInfoFor[int]()
	require.Equal(t, "int", ti.Short)
	require.Equal(t, "int", ti.Name)
}

func TestTypeInfoOf_nil(t *testing.T) {
	require.Equal(t, TypeInfo{}, TypeInfoOf(nil))
}
