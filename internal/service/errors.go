// Package service holds the domain logic of the drive. Handlers call into
// it and translate the returned errors into HTTP responses.
package service

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
	KindBadRequest
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad_request"
	case KindTooLarge:
		return "too_large"
	default:
		return "internal"
	}
}

// Error is a failure the caller is allowed to see. Msg is safe to send to
// clients, Err is only for logs.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}

	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and message so wrapped sentinels compare equal
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == t.Kind && e.Msg == t.Msg
}

var (
	ErrUserNotFound   = &Error{Kind: KindNotFound, Msg: "User not found"}
	ErrFolderNotFound = &Error{Kind: KindNotFound, Msg: "Folder not found"}
	ErrParentNotFound = &Error{Kind: KindNotFound, Msg: "Parent folder not found"}
	ErrFileNotFound   = &Error{Kind: KindNotFound, Msg: "File not found"}
	ErrBlobMissing    = &Error{Kind: KindNotFound, Msg: "File content not found"}

	ErrEmailTaken = &Error{Kind: KindConflict, Msg: "Email already registered"}

	ErrBadCredentials = &Error{Kind: KindUnauthorized, Msg: "Incorrect email or password"}

	ErrInactive       = &Error{Kind: KindBadRequest, Msg: "Inactive user"}
	ErrFolderCycle    = &Error{Kind: KindBadRequest, Msg: "Cannot move a folder into itself or one of its subfolders"}
	ErrFolderNotEmpty = &Error{Kind: KindBadRequest, Msg: "Cannot delete folder with contents"}
	ErrFileNotTrashed = &Error{Kind: KindNotFound, Msg: "File not found in trash"}
	ErrFolderNotTrash = &Error{Kind: KindNotFound, Msg: "Folder not found in trash"}

	ErrQuotaExceeded = &Error{Kind: KindTooLarge, Msg: "Storage quota exceeded"}
)

// BadRequest builds a validation error with a client facing message
func BadRequest(msg string) error {
	return &Error{Kind: KindBadRequest, Msg: msg}
}

// KindOf returns the kind of the first *Error in err's chain. Plain errors
// are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}
