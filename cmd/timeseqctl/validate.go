package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/not-things-modular/timeseq/internal/resolve"
	"github.com/not-things-modular/timeseq/script"
)

func newValidateCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "validate <script.json>",
		Short: "Load and resolve a script, reporting every validation error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			s, errs := script.Load(data)
			if len(errs) > 0 {
				printValidationErrors(cmd, errs)
				return fmt.Errorf("%d validation error(s)", len(errs))
			}

			resolved, errs := resolve.Resolve(s)
			if len(errs) > 0 {
				printValidationErrors(cmd, errs)
				return fmt.Errorf("%d validation error(s)", len(errs))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d timeline(s), %d global action(s), %d input trigger(s))\n",
				args[0], len(resolved.Timelines), len(resolved.GlobalActions), len(resolved.InputTriggers))
			if debug {
				spew.Fdump(cmd.OutOrStdout(), resolved)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "dump the fully resolved IR with go-spew")
	return cmd
}

func printValidationErrors(cmd *cobra.Command, errs []script.ValidationError) {
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", e.Location, e.Code, e.Message)
	}
}
