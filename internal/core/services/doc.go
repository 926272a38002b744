// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Beyond the standard library they use
// only golang.org/x/time/rate for batch pacing, golang.org/x/sync/errgroup
// for the concurrency probe and github.com/google/uuid for run ids.
package services
