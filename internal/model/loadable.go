package model

import "encoding/json"

// LoadableState is the tag of a Loadable's four cases (§3).
type LoadableState int

const (
	NotLoaded LoadableState = iota
	Loading
	Ready
	Err
)

func (s LoadableState) String() string {
	switch s {
	case NotLoaded:
		return "NotLoaded"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Err:
		return "Err"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders the state as its name rather than the bare int.
func (s LoadableState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Loadable is a tagged variant over an asynchronous value, generalized with
// Go generics from the teacher's plain-struct style (no interface
// hierarchy): NotLoaded, Loading, Ready(T) or Err(error). It is monotone for
// a given request key until explicitly reset (§3, §8.5).
type Loadable[T any] struct {
	state LoadableState
	value T
	err   error
}

// LoadableNotLoaded constructs the NotLoaded case.
func LoadableNotLoaded[T any]() Loadable[T] {
	return Loadable[T]{state: NotLoaded}
}

// LoadableLoading constructs the Loading case.
func LoadableLoading[T any]() Loadable[T] {
	return Loadable[T]{state: Loading}
}

// LoadableReady constructs the Ready(value) case.
func LoadableReady[T any](value T) Loadable[T] {
	return Loadable[T]{state: Ready, value: value}
}

// LoadableErr constructs the Err(err) case.
func LoadableErr[T any](err error) Loadable[T] {
	return Loadable[T]{state: Err, err: err}
}

// State returns the tag of this Loadable.
func (l Loadable[T]) State() LoadableState { return l.state }

// IsReady reports whether this Loadable is in the Ready state.
func (l Loadable[T]) IsReady() bool { return l.state == Ready }

// IsLoading reports whether this Loadable is in the Loading state.
func (l Loadable[T]) IsLoading() bool { return l.state == Loading }

// Value returns the Ready value and true, or the zero value and false.
func (l Loadable[T]) Value() (T, bool) {
	if l.state == Ready {
		return l.value, true
	}
	var zero T
	return zero, false
}

// Error returns the error carried by the Err case, or nil.
func (l Loadable[T]) Error() error {
	if l.state == Err {
		return l.err
	}
	return nil
}

// loadableWire is the JSON shape used for snapshotting a Loadable (a
// {state, value?, error?} envelope), used by cmd/runtimedemo's /snapshot
// endpoint since the tagged-union fields are otherwise unexported.
type loadableWire[T any] struct {
	State LoadableState `json:"state"`
	Value T             `json:"value,omitempty"`
	Error string        `json:"error,omitempty"`
}

// MarshalJSON renders the tagged union as {state, value?, error?}.
func (l Loadable[T]) MarshalJSON() ([]byte, error) {
	w := loadableWire[T]{State: l.state}
	if l.state == Ready {
		w.Value = l.value
	}
	if l.state == Err && l.err != nil {
		w.Error = l.err.Error()
	}
	return json.Marshal(w)
}
