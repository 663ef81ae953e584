package actor

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilders_shape_and_arity(t *testing.T) {
	noop := func(context.Context) {}
	tests := []struct {
		name  string
		cmd   Command
		arity int
		shape Shape
	}{
		{"Action0", Action0(1, noop), 0, ShapeNone},
		{"Action1", Action1(1, func(context.Context, int) {}), 1, ShapeNone},
		{"Action2", Action2(1, func(context.Context, int, string) {}), 2, ShapeNone},
		{"Exec0", Exec0(1, func(context.Context) error { return nil }), 0, ShapeTask},
		{"Exec1", Exec1(1, func(context.Context, int) error { return nil }), 1, ShapeTask},
		{"Exec2", Exec2(1, func(context.Context, int, int) error { return nil }), 2, ShapeTask},
		{"Exec3", Exec3(1, func(context.Context, int, int, int) error { return nil }), 3, ShapeTask},
		{"Func0", Func0(1, func(context.Context) (int, error) { return 0, nil }), 0, ShapeValue},
		{"Func1", Func1(1, func(context.Context, int) (int, error) { return 0, nil }), 1, ShapeValue},
		{"Func2", Func2(1, func(context.Context, int, int) (int, error) { return 0, nil }), 2, ShapeValue},
		{"Func3", Func3(1, func(context.Context, int, int, int) (int, error) { return 0, nil }), 3, ShapeValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.arity, tt.cmd.Arity)
			require.Equal(t, tt.shape, tt.cmd.Shape)
			require.NoError(t, tt.cmd.validate())
		})
	}
}

func TestBuilders_invoke(t *testing.T) {
	cmd := Func3(1, func(_ context.Context, a int, b string, c bool) (string, error) {
		if c {
			return b, nil
		}
		return "", errors.New("nope")
	})

	v, err := cmd.Invoke(context.Background(), []any{1, "x", true})
	require.NoError(t, err)
	require.Equal(t, "x", v)

	_, err = cmd.Invoke(context.Background(), []any{1, "x", false})
	require.EqualError(t, err, "nope")

	_, err = cmd.Invoke(context.Background(), []any{1, 2, true})
	require.ErrorIs(t, err, ErrArgType)
	require.Contains(t, err.Error(), "want string")

	// nil arguments become the zero value
	v, err = cmd.Invoke(context.Background(), []any{nil, nil, true})
	require.NoError(t, err)
	require.Equal(t, "", v)
}

func TestCommand_validate(t *testing.T) {
	invoke := func(context.Context, []any) (any, error) { return nil, nil }

	require.ErrorIs(t, Command{Tag: 1, Shape: ShapeNone}.validate(), ErrInvalidCommand)
	require.ErrorIs(t, Command{Tag: 1, Shape: ShapeNone, Arity: -1, Invoke: invoke}.validate(), ErrInvalidCommand)
	require.ErrorIs(t, Command{Tag: 1, Invoke: invoke}.validate(), ErrReturnMode)
	require.ErrorIs(t, Raw(1, 0, Shape(7), invoke).validate(), ErrReturnMode)
	require.NoError(t, Raw(1, 2, ShapeValue, invoke).validate())
}

func TestRegistry(t *testing.T) {
	r := buildRegistry(slog.Default(), []Command{
		Action0(3, func(context.Context) {}),
		Action0(1, func(context.Context) {}).Named("one"),
	})

	d, ok := r.lookup(1)
	require.True(t, ok)
	require.Equal(t, "one", d.Name)

	list := r.list()
	require.Len(t, list, 2)
	require.Equal(t, int32(1), list[0].Tag)
	require.Equal(t, "cmd-3", list[1].Name)

	r.clear()
	_, ok = r.lookup(1)
	require.False(t, ok)
	require.Empty(t, r.list())
}

func TestShape_String(t *testing.T) {
	require.Equal(t, "none", ShapeNone.String())
	require.Equal(t, "task", ShapeTask.String())
	require.Equal(t, "value", ShapeValue.String())
	require.Equal(t, "shape(0)", shapeInvalid.String())
}

func TestErrorResult(t *testing.T) {
	er := errorResult(5, "unknown command: cmd=%d", 9)
	require.Equal(t, ErrorActor, er.ErrorID)
	require.Equal(t, int64(5), er.ID)
	require.Equal(t, "unknown command: cmd=9", er.ErrorMsg)

	_, ok := AsErrorResult(42)
	require.False(t, ok)
	got, ok := AsErrorResult(er)
	require.True(t, ok)
	require.Same(t, er, got)
}
