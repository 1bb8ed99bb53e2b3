// Package domain models stormwater runoff monitoring data from a two-site
// roof and facade study, and implements the reconciliation and load
// computation pipeline over it.
//
// # Data Sources
//
// Three independently recorded streams feed the pipeline:
//
//   - Logger CSV exports: flow and rain instruments write one file per
//     deployment. After a clock resynchronization the instrument starts a new
//     file, so several files cover the same period with drifted, overlapping
//     timestamps. Files are deduplicated by startDay grouping (see below).
//   - Event sheets: sampling events recorded by hand in a spreadsheet, one
//     sheet per monitoring-point type (facade, roof, sewer), one row per
//     rain event, keyed by the event start timestamp.
//   - Concentration sheets: lab results per analyzed sample bottle, one
//     column per substance.
//
// # Conventions
//
// Timestamps are minute resolution in a fixed-offset zone with no DST.
// Numeric cells use a decimal comma ("3,2" = 3.2). The logger value column
// may carry an over-range sentinel string; it maps to missing. Missing
// values are NaN throughout so arithmetic propagates them.
//
// Facade sampled volumes are recorded in milliliters and may carry a ">"
// prefix when the sampling bottle overflowed: ">100" means at least 100 ml
// were collected. The numeric part is kept and the record is flagged as
// overflowed rather than discarded.
//
// Lab concentrations below the detection limit are reported as "<X" where X
// is the limit. How such cells resolve to a number is a run-level policy:
// zero, half the limit, or the limit itself. See [ResolveConcentration].
//
// # startDay grouping
//
// All logger files whose first sample falls on the same calendar day are
// duplicate captures of the same underlying series after a clock reset.
// Per group exactly one file is kept: the one with the maximum duration
// measured from midnight of that day to its last sample. Equal durations
// tie-break lexicographically by file name so merges are reproducible.
package domain
