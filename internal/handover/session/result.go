package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUninitialized = errors.New("no dataset loaded")
	ErrNotFound      = errors.New("tracking number not found")
	ErrDuplicate     = errors.New("order already scanned")
)

type ResultKind string

const (
	KindSuccess       = ResultKind("success")
	KindIgnored       = ResultKind("ignored")
	KindNotFound      = ResultKind("not_found")
	KindDuplicate     = ResultKind("duplicate")
	KindUninitialized = ResultKind("uninitialized")
)

// Result is the outcome of one Scan call. Order is set for success and duplicate
// results; PreviouslyScannedAt only for duplicates.
type Result struct {
	DatasetID           uuid.UUID
	Kind                ResultKind
	Code                string
	Event               ScanEvent
	Order               *Order
	PreviouslyScannedAt time.Time
}

// Err maps a failed outcome onto its sentinel error, nil for success and ignored input.
func (r Result) Err() error {
	switch r.Kind {
	case KindUninitialized:
		return ErrUninitialized
	case KindNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, r.Code)
	case KindDuplicate:
		return fmt.Errorf("%w: %s", ErrDuplicate, r.Code)
	}
	return nil
}

func (r Result) Message() string {
	switch r.Kind {
	case KindSuccess:
		return fmt.Sprintf("scanned %s (%s #%s)", r.Code, r.Event.Source, r.Event.OrderNumber)
	case KindIgnored:
		return ""
	}
	return r.Err().Error()
}
