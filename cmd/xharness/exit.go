package main

import (
	"errors"

	"github.com/pavelsavara/xharness/internal/orchestrate"
)

// Process exit codes. They match the codes CI scripts already branch on.
const (
	exitSuccess             = 0
	exitInvalidArguments    = 3
	exitPackageNotFound     = 4
	exitTimeout             = 70
	exitGeneralFailure      = 71
	exitCancelled           = 72
	exitInstallationFailure = 78
	exitDeviceNotFound      = 81
)

var kindExitCodes = map[orchestrate.Kind]int{
	orchestrate.Success:             exitSuccess,
	orchestrate.InvalidArguments:    exitInvalidArguments,
	orchestrate.PackageNotFound:     exitPackageNotFound,
	orchestrate.Timeout:             exitTimeout,
	orchestrate.GeneralFailure:      exitGeneralFailure,
	orchestrate.Cancelled:           exitCancelled,
	orchestrate.InstallationFailure: exitInstallationFailure,
	orchestrate.DeviceNotFound:      exitDeviceNotFound,
}

func exitCodeForKind(k orchestrate.Kind) int {
	if code, ok := kindExitCodes[k]; ok {
		return code
	}
	return exitGeneralFailure
}

// generalError marks a command failure that is not caused by how the CLI was
// invoked. Unmarked errors (flag parsing, config) exit as invalid arguments.
type generalError struct {
	err error
}

func (e *generalError) Error() string { return e.err.Error() }

func (e *generalError) Unwrap() error { return e.err }

func general(err error) error {
	if err == nil {
		return nil
	}
	return &generalError{err: err}
}

func exitCodeForError(err error) int {
	var g *generalError
	if errors.As(err, &g) {
		return exitGeneralFailure
	}
	return exitInvalidArguments
}
