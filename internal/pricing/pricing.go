package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops/retailops-backend/pkg/errors"
)

// CartEntry is one product/quantity pair submitted by a caller. Entries keep
// their submitted order so line output is deterministic.
type CartEntry struct {
	ProductID uuid.UUID
	Quantity  int
}

// Line is a priced cart entry snapshotted at the current product price.
type Line struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Totals aggregates the monetary outcome of an order.
type Totals struct {
	TotalAmount decimal.Decimal
	FinalAmount decimal.Decimal
}

// PriceFor selects the product price tier named by the order type.
func PriceFor(product models.Product, orderType enums.OrderType) (decimal.Decimal, error) {
	switch orderType {
	case enums.OrderTypeRetail:
		return product.RetailPrice, nil
	case enums.OrderTypeWholesale:
		return product.WholesalePrice, nil
	case enums.OrderTypeSpecial:
		return product.SpecialPrice, nil
	case enums.OrderTypeWebPage:
		return product.WebPagePrice, nil
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order type %q", orderType))
	}
}

// ComputeLines prices every cart entry with a positive quantity against the
// provided product snapshots. A cart entry referencing a product absent from
// the snapshots aborts the whole computation; no partial lines are returned.
func ComputeLines(cart []CartEntry, snapshots map[uuid.UUID]models.Product, orderType enums.OrderType) ([]Line, error) {
	lines := make([]Line, 0, len(cart))
	for _, entry := range cart {
		if entry.Quantity <= 0 {
			continue
		}
		product, ok := snapshots[entry.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": entry.ProductID.String()})
		}
		price, err := PriceFor(product, orderType)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    entry.Quantity,
			UnitPrice:   price,
			LineTotal:   price.Mul(decimal.NewFromInt(int64(entry.Quantity))),
		})
	}
	return lines, nil
}

// ComputeTotals sums line totals and derives the amount still owed. The final
// amount may go negative when the advance exceeds total plus freight; callers
// decide how to treat overpayment.
func ComputeTotals(lines []Line, freight, advance decimal.Decimal) Totals {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}
	return Totals{
		TotalAmount: total,
		FinalAmount: total.Add(freight).Sub(advance),
	}
}
