package entity

import "errors"

// ErrMessageNotFound means the channel no longer knows the message handle
// (deleted or expired), so it cannot be edited.
var ErrMessageNotFound = errors.New("notification message not found")
