package errors

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// String is a constant error.
	String string

	// StringF is a constant error format, filled in with F.
	StringF string

	// State is a constant error that describes a condition the caller
	// should branch on rather than report.
	State string

	Struct struct {
		e    error
		rr   error
		wrap []error
		kv   []interface{}
	}
)

func (e String) Error() string { return string(e) }
func (e String) KV(kv ...interface{}) Struct {
	return Struct{e: e, rr: e, kv: kv}
}

func (e State) Error() string { return string(e) }

func (e StringF) Error() string { return string(e) }

func (e StringF) F(v ...interface{}) Struct {
	var kv []interface{}
	for i, val := range v {
		if value, ok := val.(Struct); ok && len(value.kv) > 0 {
			kv = append(kv, value.kv...)
			value.kv = nil
			v[i] = value
		}
	}

	err := fmt.Errorf(string(e), v...)

	var errs []error
	for une := errors.Unwrap(err); une != nil; une = errors.Unwrap(une) {
		errs = append(errs, une)
	}

	return Struct{e: e, rr: err, kv: kv, wrap: errs}
}

func (e Struct) Error() string { return e.rr.Error() + fmtKV(e.kv) }
func (e Struct) Unwrap() error {
	if len(e.wrap) > 0 {
		return e.wrap[0]
	}
	return nil
}

func (e Struct) KV(kv ...interface{}) Struct {
	return Struct{e: e.e, rr: e.rr, wrap: e.wrap, kv: append(e.kv, kv...)}
}

func (e Struct) Is(target error) bool {
	switch t := target.(type) {
	case Struct:
		return e.e.Error() == t.e.Error()
	case String, StringF, State:
		if e.e.Error() == t.Error() {
			return true
		}
	}
	for _, werr := range e.wrap {
		if errors.Is(werr, target) {
			return true
		}
	}
	return false
}

func fmtKV(kvPairs []interface{}) string {
	if len(kvPairs) == 0 {
		return ""
	}

	pairs := make([]string, (len(kvPairs)+1)/2)
	for i, n := 0, 0; n < len(kvPairs); i, n = i+1, n+2 {
		key, val := kvPairs[n], interface{}("")
		if n+1 < len(kvPairs) {
			val = kvPairs[n+1]
		}
		pairs[i] = fmt.Sprint(key, `":"`, val)
	}

	return fmt.Sprintf("\t"+`{"%s"}`, strings.Join(pairs, `","`))
}
