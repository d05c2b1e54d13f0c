package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest wraps every request rejected before the search starts.
	ErrInvalidRequest = errors.New("planner: invalid request")

	ErrUnsupportedCriterion   = errors.New("unsupported optimizing criterion")
	ErrUnknownVertex          = errors.New("unknown vertex")
	ErrBadDestinationList     = errors.New("malformed destination list")
	ErrSpeedProfileConstraint = errors.New("speed profiles need a depart after constraint")
	ErrNoAllowedMode          = errors.New("no usable transport mode")
	ErrNoStep                 = errors.New("request has no step")

	ErrNoPathFound = errors.New("planner: no path found")

	// ErrDataInconsistency means the network and the search labels disagree.
	ErrDataInconsistency = errors.New("planner: data inconsistency")
)

func invalidRequest(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidRequest, cause, fmt.Sprintf(format, args...))
}
