// Package strategy implements the acquisition methods for hardware
// monitoring tools. Every method exposes the same Install/Remove/Check
// contract; all durable state lives on the host, queried fresh on each
// Check.
package strategy

import (
	"context"
	"fmt"
)

// Kind identifies an acquisition method. Lower rank wins when more than one
// strategy is registered for the same tool.
type Kind int

const (
	// KindNone marks tools with nothing to install on the host (the
	// backing service lives elsewhere, e.g. on the BMC).
	KindNone Kind = iota
	KindPackage
	KindSnap
	KindVendorRepo
	KindResource
	KindDownload
)

// Rank orders kinds for tie-breaking: package and snap installs are
// preferred, vendor repositories next, operator attachments after that,
// and the deprecated direct download last.
func (k Kind) Rank() int {
	switch k {
	case KindNone, KindPackage, KindSnap:
		return 0
	case KindVendorRepo:
		return 1
	case KindResource:
		return 2
	default:
		return 3
	}
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPackage:
		return "package"
	case KindSnap:
		return "snap"
	case KindVendorRepo:
		return "vendor-repo"
	case KindResource:
		return "resource"
	case KindDownload:
		return "download"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Strategy is one concrete way to install, remove and verify a tool.
//
// Install and Remove are idempotent: installing an already-present tool and
// removing an absent one both succeed. Install performs exactly one attempt;
// retry policy belongs to the caller. Check never mutates state and treats
// "cannot probe" as absent.
type Strategy interface {
	// Tool returns the tool this strategy provides.
	Tool() string
	// Kind returns the acquisition method, used for tie-breaking.
	Kind() Kind

	Install(ctx context.Context) error
	Remove(ctx context.Context) error
	Check(ctx context.Context) bool
}

// ErrorKind classifies an installation failure for retry policy.
type ErrorKind int

const (
	// MissingResource: a required operator attachment is absent, empty, or
	// fails checksum validation. Durable; never auto-retried.
	MissingResource ErrorKind = iota
	// CommandFailed: the underlying install mechanism exited non-zero.
	// Assumed transient; retried on the next trigger.
	CommandFailed
	// UnsupportedPlatform: the strategy cannot run on this OS or
	// architecture. Durable; the tool is excluded on this host.
	UnsupportedPlatform
)

func (k ErrorKind) String() string {
	switch k {
	case MissingResource:
		return "missing-resource"
	case CommandFailed:
		return "command-failed"
	case UnsupportedPlatform:
		return "unsupported-platform"
	}
	return fmt.Sprintf("error-kind(%d)", int(k))
}

// InstallError is the typed failure returned by Install.
type InstallError struct {
	Kind ErrorKind
	Tool string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("%s: install %s: %v", e.Tool, e.Kind, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

func installErr(tool string, kind ErrorKind, format string, args ...any) *InstallError {
	return &InstallError{Kind: kind, Tool: tool, Err: fmt.Errorf(format, args...)}
}
