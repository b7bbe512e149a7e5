package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pavelsavara/xharness/internal/history"
	"github.com/pavelsavara/xharness/internal/messages"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   messages.HistoryUse,
		Short: messages.HistoryShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf(messages.HistoryLimitFmt, limit)
			}
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			if !e.cfg.HistoryEnabled() {
				return errors.New(messages.HistoryDisabled)
			}
			store, err := openHistory(cmd.Context(), e.paths.HistoryPath)
			if err != nil {
				return general(err)
			}
			defer func() {
				_ = store.Close()
			}()
			if len(args) == 1 {
				record, err := store.Get(cmd.Context(), args[0])
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf(messages.HistoryRunIDFmt, args[0], err)
				}
				if err != nil {
					return general(err)
				}
				printRun(cmd.OutOrStdout(), record)
				return nil
			}
			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return general(err)
			}
			printHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, messages.HistoryFlagLimit)
	return cmd
}
