package auth

import "errors"

var (
	// ErrUserNotFound - no active user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrIncorrectPassword - the presented password does not match the hash.
	ErrIncorrectPassword = errors.New("incorrect password")

	// ErrInvalidToken - the bearer token is malformed, mis-signed or expired.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrTokenUserGone - the token verifies but its user no longer exists.
	ErrTokenUserGone = errors.New("the user belonging to this token no longer exists")

	// ErrTokenStale - the password was rotated after the token was issued.
	ErrTokenStale = errors.New("password was changed recently, please log in again")

	// ErrResetTokenInvalid - no user matches the presented reset token.
	ErrResetTokenInvalid = errors.New("reset token is invalid")

	// ErrResetTokenExpired - the reset token's window has passed.
	ErrResetTokenExpired = errors.New("reset token has expired")

	// ErrSendFailed - the reset email could not be delivered; the flow was
	// rolled back and may be retried.
	ErrSendFailed = errors.New("there was an error sending the email, try again later")

	// ErrGenToken is returned when we cannot sign a JWT.
	ErrGenToken = errors.New("failed to generate access token")
)
