package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// PaymentStatus represents the reconciliation state of an order's payment.
// It is mutated only by the payment reconciliation flow.
type PaymentStatus int

const (
	// PaymentUnknown is the invalid zero value.
	PaymentUnknown PaymentStatus = iota

	// PaymentPending means no definitive gateway outcome has landed yet.
	PaymentPending

	// PaymentPaid means the gateway confirmed the payment. Reaching this
	// state is a one-way door for the reconciliation flow.
	PaymentPaid

	// PaymentFailed means the gateway reported a failed attempt. The order
	// stays pending and the customer may retry.
	PaymentFailed

	// PaymentRefunded means a paid amount was returned to the customer.
	PaymentRefunded
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentUnknown:  "unknown",
		PaymentPending:  "pending",
		PaymentPaid:     "paid",
		PaymentFailed:   "failed",
		PaymentRefunded: "refunded",
	}
}

// PaymentStatusFromString parses the wire representation of a payment status.
func PaymentStatusFromString(s string) (PaymentStatus, error) {
	for status, str := range getPaymentStatusStrings() {
		if status != PaymentUnknown && str == s {
			return status, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause("paymentStatus",
		fmt.Errorf("%q is not a valid payment status", s))
}

// Validate returns an error for PaymentUnknown or any out-of-range value.
func (s PaymentStatus) Validate() error {
	if s == PaymentUnknown {
		return errs.NewValueIsInvalidError("paymentStatus")
	}
	if _, ok := getPaymentStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus",
			fmt.Errorf("%d is not a valid payment status", s))
	}
	return nil
}

// String implements fmt.Stringer.
func (s PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}
