// Package pkg provides the core libraries for gitstat, a terminal explorer
// for GitHub profiles.
//
// # Overview
//
// gitstat searches accounts, shows a profile with its most recently updated
// repositories and README, and derives an activity dashboard. Everything comes
// from the public, unauthenticated GitHub REST API. The pkg directory is
// organized into these areas:
//
//  1. [integrations] - HTTP fetch wrapper and the GitHub API client
//  2. [search] - debounced query controller and result projection
//  3. [profile] - profile aggregation into a single view model
//  4. [stats] - activity dashboard derived from repos and public events
//  5. [cache] - byte stores and the time-stamped TTL cache on top of them
//  6. [config], [errors], [observability], [clock] - shared infrastructure
//
// # Architecture
//
// The data flow for a profile:
//
//	gitstat profile <login>
//	         ↓
//	    [profile] Loader (optionally behind [cache] TTLCache)
//	         ↓
//	    [integrations/github] user, repos, starred (parallel), then README
//	         ↓
//	    [integrations] Client (headers, status classification, JSON decode)
//
// Interactive search runs keystrokes through a [search] Controller, which
// waits for input to settle, issues one request per settled edit and drops
// responses that a later edit superseded.
//
// # Quick Start
//
//	gh := github.NewClient("")
//	loader := profile.NewLoader(gh)
//	vm, err := loader.Load(ctx, "octocat")
//	if errors.IsNotFound(err) {
//	    // no such account
//	}
//
// [integrations]: https://pkg.go.dev/github.com/matzehuels/gitstat/pkg/integrations
// [search]: https://pkg.go.dev/github.com/matzehuels/gitstat/pkg/search
// [profile]: https://pkg.go.dev/github.com/matzehuels/gitstat/pkg/profile
// [stats]: https://pkg.go.dev/github.com/matzehuels/gitstat/pkg/stats
// [cache]: https://pkg.go.dev/github.com/matzehuels/gitstat/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/gitstat/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/gitstat/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/gitstat/pkg/observability
// [clock]: https://pkg.go.dev/github.com/matzehuels/gitstat/pkg/clock
// [integrations/github]: https://pkg.go.dev/github.com/matzehuels/gitstat/pkg/integrations/github
package pkg
