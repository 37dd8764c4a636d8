package orders

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/retailops-backend/api/responses"
	"github.com/retailops/retailops-backend/api/validators"
	internalorders "github.com/retailops/retailops-backend/internal/orders"
	"github.com/retailops/retailops-backend/internal/pricing"
	"github.com/retailops/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops/retailops-backend/pkg/errors"
	"github.com/retailops/retailops-backend/pkg/logger"
	"github.com/retailops/retailops-backend/pkg/outbox"
	"github.com/retailops/retailops-backend/pkg/pagination"
)

// Quantity carries no validation tag: zero and negative quantities are legal
// input and are dropped during pricing.
type cartEntryRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

type orderRequest struct {
	Name            string             `json:"name" validate:"required,max=200"`
	BuyerID         string             `json:"buyer_id" validate:"required,uuid"`
	OrderType       string             `json:"order_type" validate:"required"`
	Cart            []cartEntryRequest `json:"cart" validate:"dive"`
	FreightPrice    decimal.Decimal    `json:"freight_price"`
	AdvancedPayment decimal.Decimal    `json:"advanced_payment"`
	DueDate         *time.Time         `json:"due_date"`
	Description     *string            `json:"description"`
}

type transitionRequest struct {
	Status *string `json:"status"`
	Paid   *bool   `json:"paid"`
}

func (req *orderRequest) toCreateInput() (internalorders.CreateOrderInput, error) {
	buyerID, orderType, cart, err := req.parseCommon()
	if err != nil {
		return internalorders.CreateOrderInput{}, err
	}
	return internalorders.CreateOrderInput{
		Name:            strings.TrimSpace(req.Name),
		BuyerID:         buyerID,
		OrderType:       orderType,
		Cart:            cart,
		FreightPrice:    req.FreightPrice,
		AdvancedPayment: req.AdvancedPayment,
		DueDate:         req.DueDate,
		Description:     req.Description,
		Actor:           &outbox.ActorRef{Source: "api"},
	}, nil
}

func (req *orderRequest) parseCommon() (uuid.UUID, enums.OrderType, []pricing.CartEntry, error) {
	buyerID, err := uuid.Parse(req.BuyerID)
	if err != nil {
		return uuid.Nil, "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid buyer id")
	}
	orderType, err := enums.ParseOrderType(req.OrderType)
	if err != nil {
		return uuid.Nil, "", nil, err
	}
	cart := make([]pricing.CartEntry, 0, len(req.Cart))
	for _, entry := range req.Cart {
		productID, err := uuid.Parse(entry.ProductID)
		if err != nil {
			return uuid.Nil, "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id").
				WithDetails(map[string]any{"product_id": entry.ProductID})
		}
		cart = append(cart, pricing.CartEntry{ProductID: productID, Quantity: entry.Quantity})
	}
	return buyerID, orderType, cart, nil
}

// Create handles POST /api/v1/orders.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var req orderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// Edit handles PUT /api/v1/orders/{orderId}.
func Edit(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req orderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		createInput, err := req.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.EditOrder(r.Context(), internalorders.EditOrderInput{
			OrderID:         orderID,
			Name:            createInput.Name,
			BuyerID:         createInput.BuyerID,
			OrderType:       createInput.OrderType,
			Cart:            createInput.Cart,
			FreightPrice:    createInput.FreightPrice,
			AdvancedPayment: createInput.AdvancedPayment,
			DueDate:         createInput.DueDate,
			Description:     createInput.Description,
			Actor:           createInput.Actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// Transition handles PATCH /api/v1/orders/{orderId}/status.
func Transition(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.TransitionStatusInput{
			OrderID: orderID,
			Paid:    req.Paid,
			Actor:   &outbox.ActorRef{Source: "api"},
		}
		if req.Status != nil {
			status, err := enums.ParseOrderStatus(*req.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Status = &status
		}

		result, err := svc.TransitionStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transitionResponse{
			Order:              newOrderResponse(result.Order),
			InventoryAdjusted:  result.InventoryAdjusted,
			InventoryDiagnosis: result.Diagnostic,
		})
	}
}

// Detail handles GET /api/v1/orders/{orderId}.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// List handles GET /api/v1/orders.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListResponse(list))
	}
}

func buildListFilters(r *http.Request) (internalorders.ListFilters, error) {
	var filters internalorders.ListFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, err
		}
		filters.Status = &status
	}

	paid, err := validators.ParseQueryBool(r, "paid")
	if err != nil {
		return filters, err
	}
	filters.Paid = paid

	buyerID, err := validators.ParseQueryUUID(r, "buyer_id")
	if err != nil {
		return filters, err
	}
	filters.BuyerID = buyerID

	return filters, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}
