package scheduler

// Package scheduler drives the periodic indicator refresh.
// It owns two triggers that share one orchestrator entry point:
// - A calendar trigger at a fixed local time (daily full refresh)
// - An interval trigger every N hours, as redundancy in case the
//   process was down when the calendar trigger fired
//
// The jobs are implemented in jobs.go
