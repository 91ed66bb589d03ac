// Package services defines shared utilities consumed by the validation
// workflow and the packages that talk to external tools.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that let the workflow
//     classify failures (input, configuration, preflight, launch, parse,
//     cancellation) without string matching.
//
// Use these helpers when wiring new stage logic so error reporting stays
// uniform across the pipeline.
package services
