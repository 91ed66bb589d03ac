// Package preflight provides readiness checks for the external programs and
// filesystem paths voicecheck depends on.
//
// These checks run in two contexts:
//   - The workflow calls Require before spawning the engine. When the chosen
//     engine or any assigned audio format needs the codec tool and the tool
//     does not answer a version query, the run is refused.
//   - The CLI "check" command calls RunAll to display environment health.
//
// A failed probe is always reported as unavailable, never as a fatal error.
package preflight
