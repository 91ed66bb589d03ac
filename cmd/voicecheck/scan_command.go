package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voicecheck/internal/config"
	"voicecheck/internal/mapping"
	"voicecheck/internal/script"
	"voicecheck/internal/tasks"
	"voicecheck/internal/textutil"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var scriptPath, audioDir, column string
	var jsonOutput bool
	var assign assignmentFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Show how audio files pair with script rows without running the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			assignments, err := assign.resolve()
			if err != nil {
				return err
			}
			scriptFile, err := config.ExpandPath(scriptPath)
			if err != nil {
				return fmt.Errorf("resolve script path: %w", err)
			}
			folder, err := config.ExpandPath(audioDir)
			if err != nil {
				return fmt.Errorf("resolve audio folder: %w", err)
			}

			table, err := script.Load(scriptFile, script.Options{
				Delimiter:        cfg.Script.Delimiter,
				FallbackEncoding: cfg.Script.FallbackEncoding,
				Logger:           logger,
			})
			if err != nil {
				return err
			}
			mappings, err := mapping.Scan(folder)
			if err != nil {
				return err
			}
			if strings.TrimSpace(column) == "" {
				column = cfg.Script.Column
			}
			_, columnFound := tasks.ColumnIndex(table.Header(), column)
			unknown := mapping.Apply(mappings, assignments)
			if assign.autoMap {
				mapping.AutoAssign(mappings, table.IDs)
			}

			if jsonOutput {
				header := table.Header()
				if header == nil {
					header = []string{}
				}
				return writeJSON(cmd, scanJSON{
					Header:       header,
					IDs:          table.IDs,
					Encoding:     table.Encoding,
					Column:       column,
					ColumnFound:  columnFound,
					Mappings:     mappings,
					UnknownFiles: unknown,
					ScannedAt:    time.Now().UTC(),
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Script", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("File", statusInfo, scriptFile, colorize))
			fmt.Fprintln(out, renderStatusLine("Encoding", statusInfo, table.Encoding, colorize))
			fmt.Fprintln(out, renderStatusLine("Header", statusInfo, strings.Join(table.Header(), cfg.Script.Delimiter), colorize))
			fmt.Fprintln(out, renderStatusLine("Rows", statusInfo, fmt.Sprintf("%d", len(table.DataRows())), colorize))
			if columnFound {
				fmt.Fprintln(out, renderStatusLine("Script column", statusOK, column, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Script column", statusError, fmt.Sprintf("%q not in header", column), colorize))
			}

			for _, line := range renderSectionHeader("Audio", colorize) {
				fmt.Fprintln(out, line)
			}
			assigned := 0
			rows := make([][]string, 0, len(mappings))
			for _, m := range mappings {
				if m.Assigned() {
					assigned++
				}
				rows = append(rows, []string{
					textutil.Shorten(m.FileName, tableCellWidth),
					m.AssignedID,
					yesNo(mapping.NeedsCodec(m.FileName)),
				})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"File", "Assigned ID", "Needs codec"}, rows, nil))
			}
			fmt.Fprintln(out, renderStatusLine("Assigned", statusInfo, fmt.Sprintf("%d of %d files", assigned, len(mappings)), colorize))
			if len(unknown) > 0 {
				fmt.Fprintln(out, renderStatusLine("Unknown files", statusWarn, strings.Join(unknown, ", "), colorize))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Delimited script file")
	cmd.Flags().StringVarP(&audioDir, "audio", "a", "", "Folder containing the recorded audio files")
	cmd.Flags().StringVar(&column, "column", "", "Header of the column holding the expected line (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the scan as JSON")
	assign.register(cmd)
	_ = cmd.MarkFlagRequired("script")
	_ = cmd.MarkFlagRequired("audio")
	return cmd
}
