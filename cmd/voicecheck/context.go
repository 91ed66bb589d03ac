package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"voicecheck/internal/config"
	"voicecheck/internal/logging"
	"voicecheck/internal/mapping"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// newLogger writes console records to w and JSON records to the log file.
func (c *commandContext) newLogger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, w, shouldColorize(w))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// assignmentFlags collects the ways an operator pairs files with script ids.
type assignmentFlags struct {
	pairs   []string
	file    string
	autoMap bool
}

func (a *assignmentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&a.pairs, "map", "m", nil, "Assign an audio file to a script id (file=ID, repeatable)")
	cmd.Flags().StringVar(&a.file, "assignments", "", "TOML file of file = \"ID\" assignments")
	cmd.Flags().BoolVar(&a.autoMap, "auto-map", false, "Assign remaining files whose name matches a script id")
}

// resolve merges the assignment file with --map pairs; pairs win.
func (a *assignmentFlags) resolve() (mapping.Assignments, error) {
	merged := mapping.Assignments{}
	if path := strings.TrimSpace(a.file); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		fromFile, err := mapping.LoadAssignments(expanded)
		if err != nil {
			return nil, err
		}
		for name, id := range fromFile {
			merged[name] = id
		}
	}
	pairs, err := mapping.ParsePairs(a.pairs)
	if err != nil {
		return nil, err
	}
	for name, id := range pairs {
		merged[name] = id
	}
	return merged, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
