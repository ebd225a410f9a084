package model

import (
	"errors"
	"fmt"
)

// Sentinel OtherError values. Grounded on the teacher's errors.go, which
// keeps its handful of domain sentinels as plain package-level errors.New
// values rather than a bespoke error enum type.
var (
	ErrUserNotLoggedIn               = errors.New("user not logged in")
	ErrLibraryItemNotFound           = errors.New("library item not found")
	ErrAddonAlreadyInstalled         = errors.New("addon already installed")
	ErrAddonIsProtected              = errors.New("addon is protected")
	ErrStorageUnavailable            = errors.New("storage unavailable")
	ErrStorageSchemaVersionDowngrade = errors.New("storage schema version downgrade")
	ErrNoContent                     = errors.New("no content")
)

// EnvError wraps a failure from an Environment call (§4.1/§7).
type EnvError struct {
	Kind EnvErrorKind
	Msg  string
	Err  error
}

// EnvErrorKind enumerates the EnvError cases named in §7.
type EnvErrorKind int

const (
	EnvErrUnknown EnvErrorKind = iota
	EnvErrFetch
	EnvErrSerde
	EnvErrStorageUnavailable
	EnvErrStorageSchemaVersionDowngrade
	EnvErrAddonTransport
)

func (e *EnvError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "env error"
}

func (e *EnvError) Unwrap() error { return e.Err }

// NewAddonTransportError builds the EnvError::AddonTransport(msg) case.
func NewAddonTransportError(msg string) *EnvError {
	return &EnvError{Kind: EnvErrAddonTransport, Msg: msg}
}

// FetchError wraps a transport-level failure.
func FetchError(err error) *EnvError {
	return &EnvError{Kind: EnvErrFetch, Err: err, Msg: fmt.Sprintf("fetch: %v", err)}
}

// SerdeError wraps a (de)serialization failure.
func SerdeError(err error) *EnvError {
	return &EnvError{Kind: EnvErrSerde, Err: err, Msg: fmt.Sprintf("serde: %v", err)}
}

// APIError is the error shape returned by the main API and datastore (§6/§7).
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// JSONRPCError is the legacy add-on transport's error envelope (§4.8).
type JSONRPCError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (e JSONRPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ErrLegacyUnsupportedResource / ErrLegacyUnsupportedRequest are the two
// non-JSON-RPC legacy transport failure modes (§4.8).
var (
	ErrLegacyUnsupportedResource = errors.New("legacy transport: unsupported resource")
	ErrLegacyUnsupportedRequest  = errors.New("legacy transport: unsupported request")
)

// CtxError wraps any of the above so that ctx-model effects have a single
// error type to carry in Event.Error (§7).
type CtxError struct {
	Err error
}

func (e *CtxError) Error() string { return e.Err.Error() }
func (e *CtxError) Unwrap() error { return e.Err }

// WrapCtxError is a small helper mirroring the teacher's fmt.Errorf("%w", ...)
// wrapping convention, used at every ctx-model effect boundary.
func WrapCtxError(err error) *CtxError {
	if err == nil {
		return nil
	}
	var ce *CtxError
	if errors.As(err, &ce) {
		return ce
	}
	return &CtxError{Err: err}
}
