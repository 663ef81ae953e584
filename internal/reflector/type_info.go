// Package reflector names Go types for logs and metrics.
package reflector

import (
	"reflect"
	"sync"
)

var (
	muCache sync.RWMutex
	cache   = make(map[reflect.Type]TypeInfo)
)

type TypeInfo struct {
	// Name is the package qualified name, e.g. "github.com/acme/calc.Calculator".
	Name string
	// Short is the bare type name, e.g. "Calculator".
	Short string
	Type  reflect.Type
}

func TypeInfoOf(x any) TypeInfo {
	return TypeInfoForType(reflect.TypeOf(x))
}

func TypeInfoFor[T any]() TypeInfo {
	return TypeInfoForType(reflect.TypeOf((*T)(nil)).Elem())
}

func TypeInfoForType(t reflect.Type) TypeInfo {
	if t == nil {
		return TypeInfo{}
	}

	// check cache
	muCache.RLock()
	ti, ok := cache[t]
	muCache.RUnlock()
	if ok {
		return ti
	}

	key := t
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	short := t.Name()
	if short == "" {
		// unnamed types: fall back to the type literal
		short = t.String()
	}
	name := short
	if t.PkgPath() != "" {
		name = t.PkgPath() + "." + short
	}

	ti = TypeInfo{Name: name, Short: short, Type: t}

	muCache.Lock()
	cache[key] = ti
	muCache.Unlock()
	return ti
}
