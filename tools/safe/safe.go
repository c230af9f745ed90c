package safe

import (
	"fmt"
	"reflect"

	"PolyChat/logger"
	"PolyChat/tools/errs"

	"go.uber.org/zap"
)

// MustNotNil panics if the given value is nil.
func MustNotNil(v any, name string) {
	if v == nil {
		panic(fmt.Sprintf("%s must not be nil", name))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			panic(fmt.Sprintf("%s must not be nil", name))
		}
	}
}

// DefaultString returns *s, or fallback when s is nil or empty.
func DefaultString(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

// SafeGo starts f in a goroutine that recovers and logs panics.
func SafeGo(f func()) {
	go func() {
		defer Recover("SafeGo")
		f()
	}()
}

// Recover is meant to be deferred; it logs a recovered panic with its stack.
func Recover(where string) {
	if r := recover(); r != nil {
		logger.Error("panic recovered", zap.String("where", where), zap.Error(errs.ErrPanic(r)), zap.Stack("stack"))
	}
}
