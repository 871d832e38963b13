// Package tally counts "total drop" challenge submissions by scanning a
// channel's message history and keeps a single sticky summary message up to
// date with both teams' totals and the current leader.
package tally
