package models

import "fmt"

// ErrorInvalidArgument is returned for malformed ids, paging values, sort specs and bodies.
type ErrorInvalidArgument struct {
	Message string
}

func (e ErrorInvalidArgument) Error() string {
	return e.Message
}

// ErrorUnauthorized means no valid caller identity was presented.
type ErrorUnauthorized struct {
	Message string
}

func (e ErrorUnauthorized) Error() string {
	return e.Message
}

// ErrorForbidden means the caller is known but lacks the required action.
type ErrorForbidden struct {
	Role   string
	Action string
}

func (e ErrorForbidden) Error() string {
	return fmt.Sprintf("role %q is not allowed to %s", e.Role, e.Action)
}

type ErrorNotFound struct {
	Resource string
	ID       string
}

func (e ErrorNotFound) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

type ErrorConflict struct {
	Message string
}

func (e ErrorConflict) Error() string {
	return e.Message
}

// ErrorUpstream wraps a failure of the document store or the asset store.
type ErrorUpstream struct {
	Op  string
	Err error
}

func (e ErrorUpstream) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e ErrorUpstream) Unwrap() error {
	return e.Err
}

func NewInvalidArgument(format string, args ...interface{}) error {
	return ErrorInvalidArgument{Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(resource, id string) error {
	return ErrorNotFound{Resource: resource, ID: id}
}

func NewUpstream(op string, err error) error {
	return ErrorUpstream{Op: op, Err: err}
}
