// Package control issues mutations against the control service (run
// requests, approvals, config saves, source registration, log clears)
// and nudges the sync controller to re-fetch the affected resources so
// the operator sees the result without waiting for the next poll.
package control
