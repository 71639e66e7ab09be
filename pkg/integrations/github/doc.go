// Package github provides a typed client for the public GitHub REST API v3.
//
// # Overview
//
// The client is unauthenticated and subject to GitHub's public rate limit
// (60 requests/hour per IP). It covers the endpoints gitstat consumes:
//
//   - GET /search/users?q={query}+in:login&per_page=N  ([Client.SearchUsers])
//   - GET /users/{login}                                ([Client.User])
//   - GET /users/{login}/repos                          ([Client.Repos])
//   - GET /users/{login}/starred?per_page=1             ([Client.StarredCount])
//   - GET /repos/{login}/{login}/readme                 ([Client.Readme])
//   - GET /users/{login}/events/public                  ([Client.PublicEvents])
//
// # Usage
//
//	client := github.NewClient("")
//	user, err := client.User(ctx, "octocat")
//	if errors.IsNotFound(err) {
//	    // no such account
//	}
//
// # Validation
//
// Responses are decoded into the typed records of this package and checked
// with go-playground/validator. A record missing its identity (login, id,
// name) is reported as errors.ErrMalformedResponse instead of being passed on.
//
// # Starred count
//
// [Client.StarredCount] requests one item per page; the page number of the
// rel="last" link then equals the total. [ParseLastPage] is exported for
// reuse.
package github
