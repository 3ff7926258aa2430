package presta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/presta-export-service/internal/domain"
)

// browserUA is sent on the suppliers endpoint only; the shop front
// rejects that route for non-browser agents.
const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"

// Client talks to the shop's REST API. The store table maps allowed
// store names to their hostnames; a store absent from it fails
// locally with StoreNotFoundError before any request is built.
type Client struct {
	HTTP       *http.Client
	APIKey     string
	SecureKey  string
	Stores     map[string]string // store name -> hostname
	InvoiceDir string
}

var _ domain.OrderGateway = (*Client)(nil)
var _ domain.SupplierResolver = (*Client)(nil)
var _ domain.InvoiceFetcher = (*Client)(nil)

// hostFor resolves a store name through the table to a base URL.
// Entries are bare hostnames served over https; an entry may carry
// an explicit scheme.
func (c *Client) hostFor(store string) (string, error) {
	host, ok := c.Stores[store]
	if !ok {
		return "", &domain.StoreNotFoundError{Store: store}
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host, nil
}

// getJSON performs one authenticated GET and decodes the 2xx body
// into out. Anything else becomes a RemoteError with the raw body.
func (c *Client) getJSON(ctx context.Context, rawURL, userAgent string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.APIKey, "")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &domain.RemoteError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.RemoteError{Status: resp.StatusCode, Body: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return &domain.RemoteError{Status: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.RemoteError{Status: resp.StatusCode, Body: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

func (c *Client) apiURL(base, path string, query url.Values) string {
	query.Set("output_format", "JSON")
	return fmt.Sprintf("%s/api/%s?%s", base, path, query.Encode())
}

// FindOrderIDs lists order ids matching the filter. The invoice-date
// range is inclusive at FromDate+FromTime and exclusive at ToDate.
func (c *Client) FindOrderIDs(ctx context.Context, store string, f domain.OrderFilter) ([]int64, error) {
	base, err := c.hostFor(store)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("filter[invoice_date]", fmt.Sprintf("[%s %s,%s]", f.FromDate, f.FromTime, f.ToDate))
	if label := f.Payment.Label(); label != "" {
		q.Set("filter[payment]", "["+label+"]")
	}
	if len(f.Statuses) > 0 {
		states := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			states[i] = strconv.Itoa(s)
		}
		q.Set("filter[current_state]", "["+strings.Join(states, "|")+"]")
	}

	var payload struct {
		Orders []struct {
			ID int64 `json:"id"`
		} `json:"orders"`
	}
	if err := c.getJSON(ctx, c.apiURL(base, "orders", q), "", &payload); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(payload.Orders))
	for _, o := range payload.Orders {
		ids = append(ids, o.ID)
	}
	return ids, nil
}

// orderRow is the wire shape of one line item; the shop serializes
// every numeric field as a string.
type orderRow struct {
	ProductID string `json:"product_id"`
	Name      string `json:"product_name"`
	Quantity  string `json:"product_quantity"`
	Price     string `json:"product_price"`
}

func (c *Client) OrderDetails(ctx context.Context, store string, id int64) (domain.OrderDetail, error) {
	base, err := c.hostFor(store)
	if err != nil {
		return domain.OrderDetail{}, err
	}

	var payload struct {
		Order struct {
			ID           int64  `json:"id"`
			Reference    string `json:"reference"`
			Payment      string `json:"payment"`
			TotalPaid    string `json:"total_paid"`
			Associations struct {
				OrderRows []orderRow `json:"order_rows"`
			} `json:"associations"`
		} `json:"order"`
	}
	u := c.apiURL(base, fmt.Sprintf("orders/%d", id), url.Values{})
	if err := c.getJSON(ctx, u, "", &payload); err != nil {
		return domain.OrderDetail{}, err
	}

	det := domain.OrderDetail{
		ID:        payload.Order.ID,
		Reference: payload.Order.Reference,
		Payment:   payload.Order.Payment,
		TotalPaid: payload.Order.TotalPaid,
	}
	for _, row := range payload.Order.Associations.OrderRows {
		qty, err := strconv.Atoi(row.Quantity)
		if err != nil {
			return domain.OrderDetail{}, &domain.RemoteError{
				Status: http.StatusOK,
				Body:   fmt.Sprintf("malformed response: product_quantity %q", row.Quantity),
			}
		}
		det.Items = append(det.Items, domain.LineItem{
			ProductID: row.ProductID,
			Name:      row.Name,
			Quantity:  qty,
			Price:     row.Price,
		})
	}
	return det, nil
}

// SupplierID fetches the product and reads its supplier id field.
func (c *Client) SupplierID(ctx context.Context, store, productID string) (string, error) {
	base, err := c.hostFor(store)
	if err != nil {
		return "", err
	}
	var payload struct {
		Product struct {
			IDSupplier string `json:"id_supplier"`
		} `json:"product"`
	}
	u := c.apiURL(base, "products/"+url.PathEscape(productID), url.Values{})
	if err := c.getJSON(ctx, u, "", &payload); err != nil {
		return "", err
	}
	return payload.Product.IDSupplier, nil
}

func (c *Client) SupplierName(ctx context.Context, store, supplierID string) (string, error) {
	base, err := c.hostFor(store)
	if err != nil {
		return "", err
	}
	var payload struct {
		Supplier struct {
			Name string `json:"name"`
		} `json:"supplier"`
	}
	u := c.apiURL(base, "suppliers/"+url.PathEscape(supplierID), url.Values{})
	if err := c.getJSON(ctx, u, browserUA, &payload); err != nil {
		return "", err
	}
	return payload.Supplier.Name, nil
}

// FetchInvoice downloads the order's invoice PDF into InvoiceDir and
// returns the saved path.
func (c *Client) FetchInvoice(ctx context.Context, store string, orderID int64) (string, error) {
	base, err := c.hostFor(store)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/generatePDF.php?id_order=%d&secure_key=%s", base, orderID, url.QueryEscape(c.SecureKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.APIKey, "")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", &domain.RemoteError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &domain.RemoteError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := os.MkdirAll(c.InvoiceDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(c.InvoiceDir, fmt.Sprintf("invoice_%s_%d.pdf", store, orderID))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
