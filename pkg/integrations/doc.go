// Package integrations provides the HTTP fetch wrapper shared by API clients.
//
// # Overview
//
// [Client] issues GET requests with a fixed default Accept header
// ([DefaultAccept]) merged under client and per-request headers, and turns
// every failure into the taxonomy of [errors]:
//
//   - *errors.HTTPError for any non-2xx status
//   - errors.ErrAborted when the request context is cancelled first
//   - errors.ErrNetwork for transport failures
//   - errors.ErrMalformedResponse when a JSON body cannot be decoded
//
// Failures are logged before they are returned; callers decide whether they
// are fatal. The client never retries.
//
// # Subpackages
//
//   - [github]: typed GitHub REST API v3 client
//
// [errors]: github.com/matzehuels/gitstat/pkg/errors
// [github]: github.com/matzehuels/gitstat/pkg/integrations/github
package integrations
