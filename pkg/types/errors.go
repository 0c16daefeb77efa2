package types

import "errors"

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrDonationNotFound     = errors.New("donation not found")
	ErrBloodRequestNotFound = errors.New("blood request not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
