package domain

// PaymentMode narrows order discovery to a single payment method.
type PaymentMode string

const (
	PaymentAll     PaymentMode = "all"
	PaymentCOD     PaymentMode = "cod"
	PaymentPrepaid PaymentMode = "cmi"
)

// Label returns the payment-method label the shop API filters on,
// or "" when the mode does not narrow results.
func (p PaymentMode) Label() string {
	switch p {
	case PaymentCOD:
		return "Paiement comptant à la livraison (Cash on delivery)"
	case PaymentPrepaid:
		return "cmi"
	default:
		return ""
	}
}

// OrderFilter selects orders for discovery. ToDate is exclusive:
// callers wanting an inclusive end date add one calendar day first.
type OrderFilter struct {
	FromDate string // YYYY-MM-DD
	ToDate   string // YYYY-MM-DD, exclusive
	FromTime string // HH:MM:SS
	Payment  PaymentMode
	Statuses []int // order state ids, empty = any state
}

// LineItem — one product row inside an order's detail payload.
// Price is kept as the upstream text verbatim; it is truncated,
// never parsed, when folded into the aggregate.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"product_name"`
	Quantity  int    `json:"product_quantity"`
	Price     string `json:"product_price"`
}

// OrderDetail — full order record with its line items.
type OrderDetail struct {
	ID        int64      `json:"id"`
	Reference string     `json:"reference"`
	Payment   string     `json:"payment"`
	TotalPaid string     `json:"total_paid"`
	Items     []LineItem `json:"items"`
}
