// Package main hosts the voicecheck CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into validation
// runs, folder scans, environment checks, and configuration scaffolding. It
// centralizes configuration resolution and logging setup so subcommands can
// focus on presenting results.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
