// Package serialize implements the custom textual dump format: four
// ordered sections ([META], [BETAS], [UNUSED], [VERTICES]) describing a
// map's darts, β relations, free set and vertex geometry.
//
// Decoding runs in steps ([META], [BETAS], [UNUSED], [VERTICES], then
// the β invariants). Within a step, violations are aggregated with
// go.uber.org/multierr the way a configuration loader would, so a
// caller fixing a hand-edited dump file sees all of that step's
// mistakes at once. Decoding stops after the first step that reports
// any violation, and a wrong [META] line count, field count or [BETAS]
// row count is reported alone.
package serialize
