package errors

import "fmt"

var (
	ErrAuthentication    = fmt.Errorf("authentication failed")
	ErrNotAuthorized     = fmt.Errorf("not authorized")
	ErrMessageNotFound   = fmt.Errorf("message not found")
	ErrRoomAlreadyExists = fmt.Errorf("room already exists")
	ErrInvalidRoomName   = fmt.Errorf("invalid room name")
	ErrStore             = fmt.Errorf("store failure")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
)
