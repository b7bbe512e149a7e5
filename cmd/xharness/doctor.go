package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pavelsavara/xharness/internal/config"
	"github.com/pavelsavara/xharness/internal/doctor"
	"github.com/pavelsavara/xharness/internal/messages"
)

var (
	checkConfig  = doctor.CheckConfig
	checkTool    = doctor.CheckTool
	checkHistory = doctor.CheckHistory
)

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.DoctorUse,
		Short: messages.DoctorShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			paths, err := resolvePaths(opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(out, messages.DoctorHealthCheck)

			configResult, cfg := checkConfig(paths.ConfigPath)
			results := []doctor.Result{configResult}
			if cfg == nil {
				cfg = config.Default()
			}
			paths, err = paths.WithConfig(cfg)
			if err != nil {
				return err
			}
			e := &env{opts: opts, cfg: cfg, paths: paths, logger: newLogger(cmd.ErrOrStderr(), opts.verbose), stderr: cmd.ErrOrStderr()}

			if adb, err := e.android(0); err != nil {
				results = append(results, doctor.Result{Status: doctor.StatusFail, CheckName: messages.DoctorCheckNameADB, Message: err.Error(), Recommendation: messages.DoctorADBRecommend})
			} else {
				results = append(results, checkTool(cmd.Context(), messages.DoctorCheckNameADB, adb, doctor.StatusFail, messages.DoctorADBRecommend))
			}

			// mlaunch only runs on macOS; elsewhere its absence is expected.
			mlaunchMissing := doctor.StatusWarn
			if runtime.GOOS == "darwin" {
				mlaunchMissing = doctor.StatusFail
			}
			if mlaunch, err := e.apple(0); err != nil {
				results = append(results, doctor.Result{Status: mlaunchMissing, CheckName: messages.DoctorCheckNameMLaunch, Message: err.Error(), Recommendation: messages.DoctorMLaunchRecommend})
			} else {
				results = append(results, checkTool(cmd.Context(), messages.DoctorCheckNameMLaunch, mlaunch, mlaunchMissing, messages.DoctorMLaunchRecommend))
			}

			results = append(results, checkHistory(cmd.Context(), cfg, paths.HistoryPath))

			hasFail := false
			for _, r := range results {
				printResult(out, r)
				if r.Status == doctor.StatusFail {
					hasFail = true
				}
			}
			if hasFail {
				_, _ = fmt.Fprintln(out, color.RedString(messages.DoctorFailureSummary))
				return &SilentExitError{Code: exitGeneralFailure}
			}
			_, _ = fmt.Fprintln(out, color.GreenString(messages.DoctorSuccessSummary))
			return nil
		},
	}
}

func printResult(out io.Writer, r doctor.Result) {
	var status string
	switch r.Status {
	case doctor.StatusOK:
		status = color.GreenString(messages.DoctorStatusOKLabel)
	case doctor.StatusWarn:
		status = color.YellowString(messages.DoctorStatusWarnLabel)
	case doctor.StatusFail:
		status = color.RedString(messages.DoctorStatusFailLabel)
	}

	_, _ = fmt.Fprintf(out, messages.DoctorResultLineFmt, status, r.CheckName, r.Message)
	if r.Recommendation != "" {
		printRecommendation(out, r.Recommendation)
	}
}

// printRecommendation renders a multi-line recommendation with consistent indentation.
func printRecommendation(out io.Writer, recommendation string) {
	lines := strings.Split(recommendation, "\n")
	for i, line := range lines {
		if i == 0 {
			_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationPrefix, line)
			continue
		}
		if line == "" {
			_, _ = fmt.Fprintf(out, "%s\n", messages.DoctorRecommendationIndent)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationIndent, line)
	}
}
