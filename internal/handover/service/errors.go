package service

import "errors"

var (
	ErrJournalUnavailable = errors.New("journal is unavailable")
	ErrResumeFailed       = errors.New("failed to resume journaled dataset")
)
