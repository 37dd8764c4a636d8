package enums

import "fmt"

// AdjustmentReason records why an inventory adjustment was made.
type AdjustmentReason string

const (
	AdjustmentReasonOrderPaid    AdjustmentReason = "order_paid"
	AdjustmentReasonOrderAdvance AdjustmentReason = "order_advance"
	AdjustmentReasonManual       AdjustmentReason = "manual"
)

var validAdjustmentReasons = []AdjustmentReason{
	AdjustmentReasonOrderPaid,
	AdjustmentReasonOrderAdvance,
	AdjustmentReasonManual,
}

// String implements fmt.Stringer.
func (a AdjustmentReason) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdjustmentReason.
func (a AdjustmentReason) IsValid() bool {
	for _, candidate := range validAdjustmentReasons {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAdjustmentReason converts raw input into an AdjustmentReason.
func ParseAdjustmentReason(value string) (AdjustmentReason, error) {
	for _, candidate := range validAdjustmentReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment reason %q", value)
}
