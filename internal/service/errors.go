package service

import "errors"

// Sentinel errors services return for conditions handlers must map to
// specific HTTP statuses. Anything else is treated as a persistence-layer
// failure and surfaces as a 500.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrRoleExists         = errors.New("role already exists")
	ErrSystemRole         = errors.New("system roles cannot be modified or deleted")
	ErrSelfDelete         = errors.New("cannot delete your own account")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrUnknownRole        = errors.New("unknown role")
	ErrDuplicateInvoice   = errors.New("invoice number already exists")
)
