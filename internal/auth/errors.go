package auth

import "errors"

var (
	ErrDuplicateUser        = errors.New("username already registered")
	ErrInvalidCredentials   = errors.New("incorrect username or password")
	ErrUnauthorized         = errors.New("could not validate credentials")
	ErrUnsupportedMediaType = errors.New("only image uploads are allowed")
	ErrInvalidInput         = errors.New("username and password required")

	errUserNotFound = errors.New("user not found")
)
