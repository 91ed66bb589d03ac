package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"voicecheck/internal/config"
	"voicecheck/internal/engine"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("inspect %s: %w", target, err)
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			if found := config.FindUpward("RecognizeAndCompare.py"); found != "" {
				fmt.Fprintf(out, "Found engine script at %s\n", found)
			} else {
				fmt.Fprintln(out, "RecognizeAndCompare.py was not found from this folder; set engine.script_path or VOICECHECK_ENGINE_SCRIPT.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default ~/.config/voicecheck/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.DefaultConfigPath()
	}
	target, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("resolve --path: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file and show the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Config", colorize) {
				fmt.Fprintln(out, line)
			}
			if ctx.configExists {
				fmt.Fprintln(out, renderStatusLine("File", statusOK, ctx.configPath, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("File", statusWarn, ctx.configPath+" (not found; defaults used)", colorize))
			}

			for _, line := range renderSectionHeader("Engine", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, row := range engineSettingRows(cfg) {
				fmt.Fprintln(out, renderStatusLine(row.label, row.kind, row.value, colorize))
			}

			for _, line := range renderSectionHeader("Script", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Column", statusInfo, cfg.Script.Column, colorize))
			fmt.Fprintln(out, renderStatusLine("Delimiter", statusInfo, strconv.Quote(cfg.Script.Delimiter), colorize))
			fmt.Fprintln(out, renderStatusLine("Fallback encoding", statusInfo,
				fmt.Sprintf("%s (%s)", cfg.Script.FallbackEncoding, cfg.FallbackEncodingName()), colorize))

			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

type settingRow struct {
	label string
	kind  statusKind
	value string
}

// engineSettingRows resolves what a validate run would launch. A missing
// engine script is a warning since it may be installed later.
func engineSettingRows(cfg *config.Config) []settingRow {
	selected, _ := engine.Parse(cfg.Engine.Name)
	language := cfg.Engine.Language
	if language == "" {
		language = engine.DefaultLanguage(selected) + " (engine default)"
	}
	rows := []settingRow{
		{label: "Recognizer", kind: statusInfo, value: string(selected)},
		{label: "Language", kind: statusInfo, value: language},
		{label: "Model", kind: statusInfo, value: engine.ModelFor(selected, cfg.Engine.WhisperModel)},
		{label: "Interpreter", kind: statusInfo, value: cfg.Engine.Interpreter},
	}
	scriptPath := cfg.EngineScript()
	switch {
	case strings.TrimSpace(cfg.Engine.ScriptPath) != "":
		rows = append(rows, settingRow{label: "Engine script", kind: fileStatus(scriptPath), value: scriptPath})
	case filepath.IsAbs(scriptPath):
		rows = append(rows, settingRow{label: "Engine script", kind: statusOK, value: scriptPath + " (discovered)"})
	default:
		rows = append(rows, settingRow{label: "Engine script", kind: statusWarn, value: scriptPath + " (not found; set engine.script_path)"})
	}
	rows = append(rows, settingRow{label: "Codec tool", kind: statusInfo, value: cfg.Engine.CodecBinary})
	return rows
}

func fileStatus(path string) statusKind {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return statusOK
	}
	return statusWarn
}
