package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalorders "github.com/retailops/retailops-backend/internal/orders"
	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
)

type lineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type orderResponse struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	BuyerID         uuid.UUID         `json:"buyer_id"`
	OrderType       enums.OrderType   `json:"order_type"`
	Status          enums.OrderStatus `json:"status"`
	Paid            bool              `json:"paid"`
	RequestDate     time.Time         `json:"request_date"`
	DueDate         *time.Time        `json:"due_date,omitempty"`
	FreightPrice    decimal.Decimal   `json:"freight_price"`
	AdvancedPayment decimal.Decimal   `json:"advanced_payment"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	FinalAmount     decimal.Decimal   `json:"final_amount"`
	Description     *string           `json:"description,omitempty"`
	Version         int64             `json:"version"`
	Lines           []lineResponse    `json:"lines"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type transitionResponse struct {
	Order              orderResponse `json:"order"`
	InventoryAdjusted  bool          `json:"inventory_adjusted"`
	InventoryDiagnosis string        `json:"inventory_diagnosis"`
}

type listResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	lines := make([]lineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, lineResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		})
	}
	return orderResponse{
		ID:              order.ID,
		Name:            order.Name,
		BuyerID:         order.BuyerID,
		OrderType:       order.OrderType,
		Status:          order.Status,
		Paid:            order.Paid,
		RequestDate:     order.RequestDate,
		DueDate:         order.DueDate,
		FreightPrice:    order.FreightPrice,
		AdvancedPayment: order.AdvancedPayment,
		TotalAmount:     order.TotalAmount,
		FinalAmount:     order.FinalAmount,
		Description:     order.Description,
		Version:         order.Version,
		Lines:           lines,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func newListResponse(list *internalorders.OrderList) listResponse {
	if list == nil {
		return listResponse{Orders: []orderResponse{}}
	}
	orders := make([]orderResponse, 0, len(list.Orders))
	for i := range list.Orders {
		orders = append(orders, newOrderResponse(&list.Orders[i]))
	}
	return listResponse{
		Orders:     orders,
		NextCursor: list.NextCursor,
		HasMore:    list.HasMore,
	}
}
