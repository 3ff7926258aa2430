package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/presta-export-service/internal/domain"
	"github.com/example/presta-export-service/internal/usecase"
)

// envelope is the wire shape every tool answers with. Feedback names
// the failing pipeline stage and is only set by saveProducts.
type envelope struct {
	HasError bool   `json:"hasError"`
	Content  any    `json:"content"`
	Feedback string `json:"feedback,omitempty"`
}

// Server exposes each capability as a named tool under
// POST /api/tools/{tool}.
type Server struct {
	Router   *mux.Router
	Save     usecase.SaveProducts
	Resolve  usecase.ResolveSupplier
	Orders   domain.OrderGateway
	Invoices domain.InvoiceFetcher
	Mirror   domain.QueryRunner // nil when no mirror DB is configured
}

func NewServer(save usecase.SaveProducts, orders domain.OrderGateway, resolver domain.SupplierResolver, invoices domain.InvoiceFetcher, mirror domain.QueryRunner) *Server {
	s := &Server{
		Router:   mux.NewRouter(),
		Save:     save,
		Resolve:  usecase.ResolveSupplier{Supplier: resolver},
		Orders:   orders,
		Invoices: invoices,
		Mirror:   mirror,
	}
	s.Router.HandleFunc("/api/tools/{tool}", s.handleTool).Methods(http.MethodPost)
	return s
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	switch tool := mux.Vars(r)["tool"]; tool {
	case "getOrders":
		s.handleGetOrders(w, r)
	case "getOrderDetails":
		s.handleGetOrderDetails(w, r)
	case "getProductSupplier":
		s.handleGetProductSupplier(w, r)
	case "saveProducts":
		s.handleSaveProducts(w, r)
	case "downloadInvoice":
		s.handleDownloadInvoice(w, r)
	case "fetchDB":
		s.handleFetchDB(w, r)
	default:
		writeEnvelope(w, http.StatusNotFound, envelope{HasError: true, Content: "unknown tool " + tool})
	}
}

type orderArgs struct {
	Store    string `json:"store"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
	FromTime string `json:"from_time"`
	Payment  string `json:"payment"`
	Status   []int  `json:"status"`
}

func (a *orderArgs) filter(statuses []int) domain.OrderFilter {
	if a.FromTime == "" {
		a.FromTime = "00:00:00"
	}
	if a.Payment == "" {
		a.Payment = string(domain.PaymentAll)
	}
	if statuses == nil {
		statuses = a.Status
	}
	return domain.OrderFilter{
		FromDate: a.FromDate,
		ToDate:   a.ToDate,
		FromTime: a.FromTime,
		Payment:  domain.PaymentMode(a.Payment),
		Statuses: statuses,
	}
}

func (s *Server) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	var args orderArgs
	if !decodeArgs(w, r, &args) {
		return
	}
	ids, err := s.Orders.FindOrderIDs(r.Context(), args.Store, args.filter(nil))
	if err != nil {
		writeEnvelope(w, http.StatusOK, failure(err))
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{Content: ids})
}

func (s *Server) handleGetOrderDetails(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Store string `json:"store"`
		ID    int64  `json:"id"`
	}
	if !decodeArgs(w, r, &args) {
		return
	}
	det, err := s.Orders.OrderDetails(r.Context(), args.Store, args.ID)
	if err != nil {
		writeEnvelope(w, http.StatusOK, failure(err))
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{Content: det})
}

func (s *Server) handleGetProductSupplier(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Store     string `json:"store"`
		ProductID string `json:"product_id"`
	}
	if !decodeArgs(w, r, &args) {
		return
	}
	name, err := s.Resolve.Execute(r.Context(), args.Store, args.ProductID)
	if err != nil {
		writeEnvelope(w, http.StatusOK, failure(err))
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{Content: name})
}

// saveProducts always runs over the "payment accepted" and
// "preparation in progress" states (2 and 3).
var saveProductsStates = []int{2, 3}

func (s *Server) handleSaveProducts(w http.ResponseWriter, r *http.Request) {
	var args orderArgs
	if !decodeArgs(w, r, &args) {
		return
	}
	sum, err := s.Save.Execute(r.Context(), args.Store, args.filter(saveProductsStates))
	if err != nil {
		env := failure(err)
		var stageErr *domain.StageError
		if errors.As(err, &stageErr) {
			env.Content = stageErr.Unwrap().Error()
			env.Feedback = stageErr.Feedback()
		}
		writeEnvelope(w, http.StatusOK, env)
		return
	}
	if sum.Orders == 0 {
		writeEnvelope(w, http.StatusOK, envelope{Content: "No orders found"})
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{Content: "Products saved successfully"})
}

func (s *Server) handleDownloadInvoice(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Store   string `json:"store"`
		OrderID int64  `json:"order_id"`
	}
	if !decodeArgs(w, r, &args) {
		return
	}
	path, err := s.Invoices.FetchInvoice(r.Context(), args.Store, args.OrderID)
	if err != nil {
		writeEnvelope(w, http.StatusOK, failure(err))
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{Content: path})
}

func (s *Server) handleFetchDB(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Query string `json:"query"`
	}
	if !decodeArgs(w, r, &args) {
		return
	}
	if s.Mirror == nil {
		writeEnvelope(w, http.StatusOK, envelope{HasError: true, Content: "mirror database not configured"})
		return
	}
	rows, err := s.Mirror.FetchRows(r.Context(), args.Query)
	if err != nil {
		writeEnvelope(w, http.StatusOK, failure(err))
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{Content: rows})
}

func decodeArgs(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{HasError: true, Content: "invalid arguments: " + err.Error()})
		return false
	}
	return true
}

func failure(err error) envelope {
	return envelope{HasError: true, Content: err.Error()}
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
