// Package auth protects the operator endpoints under /api/admin and sets
// security headers on every response.
//
// Learner-facing routes are public: identity is established upstream and
// arrives as a userId field. Admin routes require a bearer token whose
// bcrypt hash is configured as ADMIN_TOKEN_HASH:
//
//	mazo hash-token            # prints a new token and its hash
//	ADMIN_TOKEN_HASH='$2a$12$...'
//
// With no hash configured the admin routes answer 500 CONFIGURATION.
// Failed attempts are rate limited per client IP.
package auth
