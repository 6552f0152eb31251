package crm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotHosted means the desktop is not running inside the CRM.
	ErrNotHosted = errors.New("not hosted inside the CRM")

	// ErrUnavailable means the toolkit API is absent even after a load attempt.
	ErrUnavailable = errors.New("CRM telephony API unavailable")
)

// API is the slice of the CRM telephony toolkit the desktop relies on.
type API interface {
	// SetSoftphonePanelWidth resizes the softphone panel hosting the desktop.
	SetSoftphonePanelWidth(widthPX int) *Call

	// SaveLog creates or updates a CRM record.
	SaveLog(record Record) *Call

	// RefreshView reloads the CRM page the agent is looking at.
	RefreshView() error
}

// Record is a CRM record written by SaveLog. An empty ID creates a new record.
type Record struct {
	ID          string
	Description string
}

// Result is what the toolkit reports back for an asynchronous call.
type Result struct {
	Success     bool
	ReturnValue string
	Errors      []string
}

// Err returns nil on success and a *RemoteError otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &RemoteError{Errors: r.Errors}
}

// Succeeded builds a successful Result.
func Succeeded(returnValue string) Result {
	return Result{Success: true, ReturnValue: returnValue}
}

// Failed builds a failed Result from error details.
func Failed(details ...string) Result {
	return Result{Success: false, Errors: details}
}

// RemoteError is a failure reported by the toolkit through a call result.
type RemoteError struct {
	Errors []string
}

func (e *RemoteError) Error() string {
	if len(e.Errors) == 0 {
		return "CRM call failed"
	}
	return fmt.Sprintf("CRM call failed: %s", strings.Join(e.Errors, "; "))
}
