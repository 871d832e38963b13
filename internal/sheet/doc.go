// Package sheet turns loosely-structured spreadsheet exports into named
// logical tables.
//
// The shared hunt sheet packs several tables side by side on one tab. Row 0
// carries sparse merged-cell labels: a non-empty label opens a table whose
// columns run until the next label. BuildTableMap indexes those spans and
// PullTable extracts one table as a cleaned record set.
package sheet
