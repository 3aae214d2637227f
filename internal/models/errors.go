package models

import (
	"errors"
	"fmt"
)

var (
	// general errors.
	ErrEmptyURL   = errors.New("URL cannot be empty")
	ErrEmptyToken = errors.New("token cannot be empty")

	// connection errors.
	ErrNoConnectionToReadFrom = errors.New("no connection to read from")
	ErrNoConnectionToWriteTo  = errors.New("no connection to write to")
	ErrConnectionClosed       = errors.New("connection closed")

	// home assistant errors.
	ErrNoStatesReceived      = errors.New("no states received")
	ErrUnexpectedMessageType = errors.New("unexpected message type")
	ErrHubRequest            = errors.New("hub rejected request")
	ErrHubUnreachable        = errors.New("hub unreachable")
	ErrAutomationNotFound    = errors.New("automation not found")

	// entity errors.
	ErrEmptyEntityID   = errors.New("empty entity id")
	ErrInvalidEntityID = errors.New("invalid entity id")

	// pipeline errors.
	ErrInvalidDraft      = errors.New("invalid draft")
	ErrOutOfScope        = errors.New("outside your areas or templated")
	ErrCompilerInvariant = errors.New("compiler invariant violated")
	ErrInternal          = errors.New("internal error")
	ErrEmptyUser         = errors.New("user cannot be empty")
)

func EmptyEntityIDErr() error {
	return fmt.Errorf("%w", ErrEmptyEntityID)
}

func InvalidEntityIDErr(rawEntityID string) error {
	return fmt.Errorf("%w: %s", ErrInvalidEntityID, rawEntityID)
}

// InvalidDraftErr wraps a validation failure for the given draft field.
func InvalidDraftErr(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidDraft, field, fmt.Sprintf(format, args...))
}
