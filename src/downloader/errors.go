package downloader

import (
	"errors"
	"fmt"
)

// Kind identifies one failure class of a download task.
type Kind int

// Failure kinds.
const (
	KindFileExisted Kind = iota
	KindDifferentFileExisted
	KindDifferentFileExistedWhenRename
	KindFileExistedAsFolder
	KindFolderExistedAsFile
	KindFileExistedAsFolderWhenRename
	KindFailedToCreateFolder
	KindNoPermissionToWrite
	KindResourceNotFound
	KindRequestNotOK
	KindHTTPError
	KindURLIllegal
	KindURLCannotDownload
	KindFileIsNotBinary
	KindIOError
	KindIOErrorWhenRename
	KindHashingError
	KindHashingErrorWhenRename
	KindProxyError
	KindClientBuild
)

type kindInfo struct {
	name      string
	ignorable bool
}

var kinds = [...]kindInfo{
	KindFileExisted:                    {"FileExisted", false},
	KindDifferentFileExisted:           {"DifferentFileExisted", false},
	KindDifferentFileExistedWhenRename: {"DifferentFileExistedWhenRename", true},
	KindFileExistedAsFolder:            {"FileExistedAsFolder", false},
	KindFolderExistedAsFile:            {"FolderExistedAsFile", false},
	KindFileExistedAsFolderWhenRename:  {"FileExistedAsFolderWhenRename", true},
	KindFailedToCreateFolder:           {"FailedToCreateFolder", false},
	KindNoPermissionToWrite:            {"NoPermissionToWrite", false},
	KindResourceNotFound:               {"ResourceNotFound", false},
	KindRequestNotOK:                   {"RequestNotOK", false},
	KindHTTPError:                      {"HttpError", false},
	KindURLIllegal:                     {"UrlIllegal", false},
	KindURLCannotDownload:              {"UrlCannotDownload", true},
	KindFileIsNotBinary:                {"FileIsNotBinary", true},
	KindIOError:                        {"IoError", false},
	KindIOErrorWhenRename:              {"IoErrorWhenRename", true},
	KindHashingError:                   {"HashingError", false},
	KindHashingErrorWhenRename:         {"HashingErrorWhenRename", true},
	KindProxyError:                     {"ProxyError", false},
	KindClientBuild:                    {"ClientBuildError", false},
}

// String returns the kind name.
func (kind Kind) String() string {
	if kind < 0 || int(kind) >= len(kinds) {
		return fmt.Sprintf("Kind(%d)", int(kind))
	}

	return kinds[kind].name
}

// Ignorable reports whether failures of this kind are expected outcomes
// rather than faults worth investigating.
func (kind Kind) Ignorable() bool {
	if kind < 0 || int(kind) >= len(kinds) {
		return false
	}

	return kinds[kind].ignorable
}

// Error is the failure of a single task, or of a pre-flight step.
type Error struct {
	Kind Kind

	// StatusCode is set for KindRequestNotOK.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// Sentinels for errors.Is. Matching compares kinds only.
var (
	ErrFileExisted                    = &Error{Kind: KindFileExisted}
	ErrDifferentFileExisted           = &Error{Kind: KindDifferentFileExisted}
	ErrDifferentFileExistedWhenRename = &Error{Kind: KindDifferentFileExistedWhenRename}
	ErrFileExistedAsFolder            = &Error{Kind: KindFileExistedAsFolder}
	ErrFolderExistedAsFile            = &Error{Kind: KindFolderExistedAsFile}
	ErrFileExistedAsFolderWhenRename  = &Error{Kind: KindFileExistedAsFolderWhenRename}
	ErrFailedToCreateFolder           = &Error{Kind: KindFailedToCreateFolder}
	ErrNoPermissionToWrite            = &Error{Kind: KindNoPermissionToWrite}
	ErrResourceNotFound               = &Error{Kind: KindResourceNotFound}
	ErrRequestNotOK                   = &Error{Kind: KindRequestNotOK}
	ErrHTTP                           = &Error{Kind: KindHTTPError}
	ErrURLIllegal                     = &Error{Kind: KindURLIllegal}
	ErrURLCannotDownload              = &Error{Kind: KindURLCannotDownload}
	ErrFileIsNotBinary                = &Error{Kind: KindFileIsNotBinary}
	ErrIO                             = &Error{Kind: KindIOError}
	ErrIOWhenRename                   = &Error{Kind: KindIOErrorWhenRename}
	ErrHashing                        = &Error{Kind: KindHashingError}
	ErrHashingWhenRename              = &Error{Kind: KindHashingErrorWhenRename}
	ErrProxy                          = &Error{Kind: KindProxyError}
	ErrClientBuild                    = &Error{Kind: KindClientBuild}
)

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Kind == KindRequestNotOK && e.StatusCode != 0 {
		msg = fmt.Sprintf("%s(%d)", msg, e.StatusCode)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}

	return other.Kind == e.Kind
}

// Ignorable reports the static classification of the error's kind.
func (e *Error) Ignorable() bool {
	return e.Kind.Ignorable()
}

// KindOf returns the kind of err and whether err carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}

	return e.Kind, true
}

// IsIgnorable reports whether err is a classified, ignorable failure.
// Unclassified errors are never ignorable.
func IsIgnorable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.Ignorable()
}

// SetupError is returned by Run when a pre-flight step fails and no task
// was dispatched.
type SetupError struct {
	Stage string
	Err   *Error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
