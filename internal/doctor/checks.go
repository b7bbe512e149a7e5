// Package doctor runs environment checks: config, device-control tools, and
// the history database.
package doctor

import (
	"context"
	"fmt"

	"github.com/pavelsavara/xharness/internal/config"
	"github.com/pavelsavara/xharness/internal/history"
	"github.com/pavelsavara/xharness/internal/messages"
)

// Status is the verdict of one check.
type Status string

const (
	StatusOK   Status = "OK"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Result is one line of doctor output.
type Result struct {
	Status         Status
	CheckName      string
	Message        string
	Recommendation string
}

// Versioner is the slice of a tool the doctor needs.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

var (
	loadConfigFunc  = config.Load
	openHistoryFunc = history.Open
)

// CheckConfig loads the config at path. A missing file is OK and yields the
// defaults; a broken file fails and returns nil.
func CheckConfig(path string) (Result, *config.Config) {
	cfg, found, err := loadConfigFunc(path)
	if err != nil {
		return Result{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameConfig,
			Message:        fmt.Sprintf(messages.DoctorConfigLoadFailedFmt, err),
			Recommendation: messages.DoctorConfigLoadRecommend,
		}, nil
	}
	msg := fmt.Sprintf(messages.DoctorConfigLoadedFmt, path)
	if !found {
		msg = fmt.Sprintf(messages.DoctorConfigDefaultsFmt, path)
	}
	return Result{Status: StatusOK, CheckName: messages.DoctorCheckNameConfig, Message: msg}, cfg
}

// CheckTool queries the tool version. A tool that is only needed for one
// family is reported with warn rather than fail.
func CheckTool(ctx context.Context, name string, t Versioner, missing Status, recommend string) Result {
	version, err := t.Version(ctx)
	if err != nil {
		return Result{
			Status:         missing,
			CheckName:      name,
			Message:        fmt.Sprintf(messages.DoctorToolMissingFmt, name, err),
			Recommendation: recommend,
		}
	}
	return Result{
		Status:    StatusOK,
		CheckName: name,
		Message:   fmt.Sprintf(messages.DoctorToolVersionFmt, name, version),
	}
}

// CheckHistory opens the history database, running migrations if needed.
func CheckHistory(ctx context.Context, cfg *config.Config, path string) Result {
	if !cfg.HistoryEnabled() {
		return Result{Status: StatusOK, CheckName: messages.DoctorCheckNameHistory, Message: messages.DoctorHistoryDisabled}
	}
	store, err := openHistoryFunc(ctx, path)
	if err != nil {
		return Result{
			Status:         StatusWarn,
			CheckName:      messages.DoctorCheckNameHistory,
			Message:        fmt.Sprintf(messages.DoctorHistoryFailedFmt, path, err),
			Recommendation: messages.DoctorHistoryRecommend,
		}
	}
	_ = store.Close()
	return Result{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameHistory,
		Message:   fmt.Sprintf(messages.DoctorHistoryOKFmt, path),
	}
}
