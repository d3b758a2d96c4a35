package models

import (
	"errors"
)

var (
	ErrNoRecord            = errors.New("models: no matching record found")
	ErrEntityNotFound      = errors.New("models: map entity not found")
	ErrInvalidSearchColumn = errors.New("models: invalid search column")
	ErrInvalidCredentials  = errors.New("models: invalid credentials")
)
