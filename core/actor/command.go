package actor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
)

// Shape is the result shape of a command, fixed when the command is built.
type Shape uint8

const (
	shapeInvalid Shape = iota
	// ShapeNone runs the operation and resolves with no value.
	ShapeNone
	// ShapeTask waits for the operation to finish and resolves with no value,
	// or faults with the error it returned.
	ShapeTask
	// ShapeValue waits for the operation and resolves with the value it produced.
	ShapeValue
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeTask:
		return "task"
	case ShapeValue:
		return "value"
	default:
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
}

// Invoke runs a controller operation with the message arguments.
type Invoke func(ctx context.Context, args []any) (any, error)

// Command is one tagged controller operation, as returned by
// [Controller.Commands]. Build commands with [Action0], [Exec1], [Func2] and
// friends so that arity and shape always match the function signature.
type Command struct {
	Tag    int32
	Name   string
	Arity  int
	Shape  Shape
	Invoke Invoke
}

// Named returns a copy of c with a human readable name used in logs.
func (c Command) Named(name string) Command {
	c.Name = name
	return c
}

func (c Command) validate() error {
	switch {
	case c.Invoke == nil:
		return fmt.Errorf("%w: no invoke func", ErrInvalidCommand)
	case c.Arity < 0:
		return fmt.Errorf("%w: negative arity %d", ErrInvalidCommand, c.Arity)
	case c.Shape < ShapeNone || c.Shape > ShapeValue:
		return fmt.Errorf("%w: %s", ErrReturnMode, c.Shape)
	}
	return nil
}

// Descriptor is a registered command as seen by the dispatcher.
type Descriptor struct {
	Tag   int32
	Name  string
	Arity int
	Shape Shape

	invoke Invoke
}

// registry maps command tags to descriptors. It is built once and only read
// afterwards; clear swaps in an empty map so readers never race a writer.
type registry struct {
	cmds atomic.Pointer[map[int32]*Descriptor]
}

func buildRegistry(log *slog.Logger, cmds []Command) *registry {
	m := make(map[int32]*Descriptor, len(cmds))
	for _, c := range cmds {
		if c.Name == "" {
			c.Name = fmt.Sprintf("cmd-%d", c.Tag)
		}
		if err := c.validate(); err != nil {
			log.Error("skipping invalid command registration",
				slog.Int("cmd", int(c.Tag)), slog.String("name", c.Name), slog.Any("error", err))
			continue
		}
		if prev, ok := m[c.Tag]; ok {
			log.Warn("duplicate command tag, last registration wins",
				slog.Int("cmd", int(c.Tag)), slog.String("previous", prev.Name), slog.String("name", c.Name))
		}
		m[c.Tag] = &Descriptor{Tag: c.Tag, Name: c.Name, Arity: c.Arity, Shape: c.Shape, invoke: c.Invoke}
	}
	r := &registry{}
	r.cmds.Store(&m)
	return r
}

func (r *registry) lookup(tag int32) (*Descriptor, bool) {
	d, ok := (*r.cmds.Load())[tag]
	return d, ok
}

func (r *registry) clear() {
	empty := map[int32]*Descriptor{}
	r.cmds.Store(&empty)
}

func (r *registry) list() []Descriptor {
	m := *r.cmds.Load()
	out := make([]Descriptor, 0, len(m))
	for _, d := range m {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// ---- builders ----

// Raw builds a command from an untyped invoke func. Generated proxies use it;
// hand-written controllers should prefer the typed builders.
func Raw(tag int32, arity int, shape Shape, invoke Invoke) Command {
	return Command{Tag: tag, Arity: arity, Shape: shape, Invoke: invoke}
}

// Action0 registers an operation with no arguments and no result.
func Action0(tag int32, fn func(ctx context.Context)) Command {
	return Raw(tag, 0, ShapeNone, func(ctx context.Context, _ []any) (any, error) {
		fn(ctx)
		return nil, nil
	})
}

// Action1 registers an operation with one argument and no result.
func Action1[A any](tag int32, fn func(ctx context.Context, a A)) Command {
	return Raw(tag, 1, ShapeNone, func(ctx context.Context, args []any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		fn(ctx, a)
		return nil, nil
	})
}

// Action2 registers an operation with two arguments and no result.
func Action2[A, B any](tag int32, fn func(ctx context.Context, a A, b B)) Command {
	return Raw(tag, 2, ShapeNone, func(ctx context.Context, args []any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		fn(ctx, a, b)
		return nil, nil
	})
}

// Exec0 registers an operation that completes without a value.
func Exec0(tag int32, fn func(ctx context.Context) error) Command {
	return Raw(tag, 0, ShapeTask, func(ctx context.Context, _ []any) (any, error) {
		return nil, fn(ctx)
	})
}

// Exec1 registers a one argument operation that completes without a value.
func Exec1[A any](tag int32, fn func(ctx context.Context, a A) error) Command {
	return Raw(tag, 1, ShapeTask, func(ctx context.Context, args []any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		return nil, fn(ctx, a)
	})
}

// Exec2 is Exec1 with two arguments.
func Exec2[A, B any](tag int32, fn func(ctx context.Context, a A, b B) error) Command {
	return Raw(tag, 2, ShapeTask, func(ctx context.Context, args []any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		return nil, fn(ctx, a, b)
	})
}

// Exec3 is Exec1 with three arguments.
func Exec3[A, B, C any](tag int32, fn func(ctx context.Context, a A, b B, c C) error) Command {
	return Raw(tag, 3, ShapeTask, func(ctx context.Context, args []any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		c, err := arg[C](args, 2)
		if err != nil {
			return nil, err
		}
		return nil, fn(ctx, a, b, c)
	})
}

// Func0 registers an operation that completes with a value of type R.
func Func0[R any](tag int32, fn func(ctx context.Context) (R, error)) Command {
	return Raw(tag, 0, ShapeValue, func(ctx context.Context, _ []any) (any, error) {
		return fn(ctx)
	})
}

// Func1 registers a one argument operation that completes with a value.
func Func1[A, R any](tag int32, fn func(ctx context.Context, a A) (R, error)) Command {
	return Raw(tag, 1, ShapeValue, func(ctx context.Context, args []any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a)
	})
}

// Func2 is Func1 with two arguments.
func Func2[A, B, R any](tag int32, fn func(ctx context.Context, a A, b B) (R, error)) Command {
	return Raw(tag, 2, ShapeValue, func(ctx context.Context, args []any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a, b)
	})
}

// Func3 is Func1 with three arguments.
func Func3[A, B, C, R any](tag int32, fn func(ctx context.Context, a A, b B, c C) (R, error)) Command {
	return Raw(tag, 3, ShapeValue, func(ctx context.Context, args []any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		c, err := arg[C](args, 2)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a, b, c)
	})
}

// arg converts args[i] to T. A nil argument becomes the zero value.
func arg[T any](args []any, i int) (T, error) {
	var zero T
	if args[i] == nil {
		return zero, nil
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: arg %d is %T, want %s", ErrArgType, i, args[i], typeName[T]())
	}
	return v, nil
}

func typeName[T any]() string { return fmt.Sprintf("%T", (*T)(nil))[1:] }
