// Package textutil provides small text helpers shared by the pipeline and the
// CLI: rune-safe truncation for display and case-folded substring matching.
package textutil
