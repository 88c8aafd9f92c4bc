// Package main hosts the curator CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into API
// calls against the remote control service: session management, the
// workspace dashboard, pipeline configuration, source registration,
// candidate review and approval, run triggering, and log inspection. It
// centralizes configuration resolution, credential storage, and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
