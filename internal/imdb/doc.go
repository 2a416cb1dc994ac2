// Package imdb implements the remote review source: a client for the IMDb
// GraphQL persisted query that serves cursor-paginated user reviews.
//
// Failures are reported as distinct, errors.Is-matchable kinds so callers can
// apply different policies per kind: ErrRateLimited (back off and retry the
// same cursor), ErrTransient (retry against a bounded budget), ErrValidation
// and ErrNetwork (fatal for the current title).
package imdb
