package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNoUserInToken      = errors.New("unable to retrieve user information from token")
	ErrNoTokenInResponse  = errors.New("login response received but no token found")
	ErrSessionActive      = errors.New("a share card session is already active for this movie")
	ErrSessionCancelled   = errors.New("share card session cancelled")
	ErrGoogleLoginFailed  = errors.New("google login failed")
	ErrNoJobID            = errors.New("submission response carried no job_id")
)
