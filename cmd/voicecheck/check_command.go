package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"voicecheck/internal/preflight"
)

// optionalChecks only warn: runs refuse on their own when they need them.
var optionalChecks = map[string]bool{
	"Codec tool": true,
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether the engine and its dependencies are ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			failed := 0
			for _, r := range results {
				if !r.Passed && !optionalChecks[r.Name] {
					failed++
				}
			}

			if jsonOutput {
				if err := writeJSON(cmd, checkJSON{ConfigPath: ctx.configPath, Results: results}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Environment", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Engine", statusInfo, cfg.Engine.Name, colorize))
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
						if optionalChecks[r.Name] {
							kind = statusWarn
						}
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
			}

			if failed > 0 {
				return errors.New("environment check failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the checks as JSON")
	return cmd
}
