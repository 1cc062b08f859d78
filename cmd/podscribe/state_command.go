package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podscribe/internal/state"
)

func newStateCommand(ctx *commandContext) *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect the processed-episodes log",
	}
	stateCmd.AddCommand(newStateListCommand(ctx))
	stateCmd.AddCommand(newStatePathCommand(ctx))
	return stateCmd
}

func newStateListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processed episode identifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := state.Open(cfg.StateFile())
			if err != nil {
				return err
			}
			defer store.Close()

			ids := store.Identifiers()
			if limit > 0 && len(ids) > limit {
				ids = ids[len(ids)-limit:]
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No processed episodes recorded.")
				return nil
			}

			rows := make([][]string, 0, len(ids))
			for i, id := range ids {
				rows = append(rows, []string{strconv.Itoa(i + 1), id})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Episode ID"},
				rows,
				[]columnAlignment{alignRight, alignLeft},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d processed episode(s)\n", store.Count())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the most recent N entries")
	return cmd
}

func newStatePathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the state file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.StateFile())
			return nil
		},
	}
}
