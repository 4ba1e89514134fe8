package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrRepoNotFound indicates the hosting API returned a non-success
	// status for the repository metadata call. The pipeline skips the
	// repository and continues.
	ErrRepoNotFound = goerr.New("repository not found")

	// ErrHookExists indicates the hosting API rejected a webhook
	// registration because an identical hook is already present.
	// SubscriptionManager treats this as success.
	ErrHookExists = goerr.New("webhook already registered")

	// ErrNoHostingLogin indicates the user has no hosting-profile
	// username configured. The pipeline run fails fast without
	// partial writes.
	ErrNoHostingLogin = goerr.New("user has no hosting profile username")

	// ErrUserNotFound indicates a lookup by ID or hosting login
	// matched no user.
	ErrUserNotFound = goerr.New("user not found")

	// ErrInvalidSignature indicates webhook HMAC verification failed.
	ErrInvalidSignature = goerr.New("invalid webhook signature")
)
