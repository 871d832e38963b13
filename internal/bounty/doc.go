// Package bounty manages per-team, time-boxed reward claims for named
// items. Each team keeps its own list; expired and closed bounties stay in
// the list as history and only flip inactive.
package bounty
