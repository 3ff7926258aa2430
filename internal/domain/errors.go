package domain

import "fmt"

// StoreNotFoundError — the store is not in the configured table.
// Raised locally, before any remote call is made.
type StoreNotFoundError struct {
	Store string
}

func (e *StoreNotFoundError) Error() string {
	return fmt.Sprintf("store %s not found", e.Store)
}

// RemoteError — non-2xx or malformed response from the shop API.
// Body carries the raw response for diagnosis.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote call failed: status %d: %s", e.Status, e.Body)
}

// Stage names the pipeline step an error surfaced from.
type Stage string

const (
	StageOrders       Stage = "orders"
	StageOrderDetails Stage = "order details"
	StageSupplierID   Stage = "supplier id"
	StageSupplierName Stage = "supplier name"
	StageCSV          Stage = "csv"
)

// StageError tags the first error of an aggregation run with the
// stage it occurred in. The run aborts on it; nothing is retried.
type StageError struct {
	Stage   Stage
	OrderID int64 // set only for StageOrderDetails
	Err     error
}

func (e *StageError) Error() string {
	if e.Stage == StageOrderDetails {
		return fmt.Sprintf("%s (order %d): %v", e.Stage, e.OrderID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Feedback returns the stage tag in the wording the tool envelope
// has always used.
func (e *StageError) Feedback() string {
	switch e.Stage {
	case StageOrders:
		return "error in orders"
	case StageOrderDetails:
		return fmt.Sprintf("error while fetching order details with id %d", e.OrderID)
	case StageSupplierID:
		return "error when fetching supplier id"
	case StageSupplierName:
		return "error when fetching supplier name"
	case StageCSV:
		return "error when creating csv files"
	default:
		return string(e.Stage)
	}
}
