package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
// For users this means an active (non-deleted) account with the same email.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the caller could not be identified.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the caller lacks the role required for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCredentials indicates a failed email/password combination.
// Deliberately indistinguishable from an unknown email.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAccountLocked indicates the account is temporarily locked after repeated
// failed login attempts. The lock is checked before the password is compared.
var ErrAccountLocked = errors.New("account temporarily locked")

// ErrAccountInactive indicates the resolved account is missing, blocked or deleted.
var ErrAccountInactive = errors.New("account inactive")

// ErrInvalidToken indicates a token with a bad signature, an unknown fingerprint
// or one that has already been consumed.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrTokenExpired indicates a refresh token whose stored expiry has passed.
var ErrTokenExpired = errors.New("token expired")

// ErrNoPasswordSet indicates a password operation on an OAuth-only account.
var ErrNoPasswordSet = errors.New("account has no password set")

// ErrSamePassword indicates the new password equals the current one.
var ErrSamePassword = errors.New("new password must differ from current password")

// ErrOAuth indicates a failure while exchanging a code with an OAuth provider.
var ErrOAuth = errors.New("oauth exchange failed")

// ErrUpstreamTimeout indicates an outbound call to a collaborator timed out.
var ErrUpstreamTimeout = errors.New("upstream request timed out")
