package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"voicecheck/internal/logging"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	_ = logging.CloseLogFiles()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
