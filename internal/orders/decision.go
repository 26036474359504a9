package orders

// Action is what a payment notification should do to an order.
type Action int

const (
	// ActionNone: the order is already paid/approved; every further
	// notification is a no-op. This is the exactly-once boundary.
	ActionNone Action = iota
	// ActionApprove: mark paid, decrement stock, clear the owner's cart.
	ActionApprove
	// ActionRecord: store the gateway's payment status, nothing else.
	// Rejections land here too, leaving the order pending and payable again.
	ActionRecord
)

type Decision struct {
	Action        Action
	PaymentStatus PaymentStatus
}

// DecidePaymentUpdate folds a fetched gateway status into a transition
// decision for an order currently in (status, payStatus). Callers must hold
// the order row lock while acting on the result.
func DecidePaymentUpdate(status Status, payStatus PaymentStatus, gatewayStatus string) Decision {
	if payStatus == PaymentApproved || status == StatusPaid {
		return Decision{Action: ActionNone}
	}
	switch gatewayStatus {
	case string(PaymentApproved):
		return Decision{Action: ActionApprove, PaymentStatus: PaymentApproved}
	case "":
		// A payment fetch without a status tells us nothing beyond "still
		// pending".
		return Decision{Action: ActionRecord, PaymentStatus: PaymentPending}
	default:
		// rejected, pending, in_process, ... mirrored verbatim.
		return Decision{Action: ActionRecord, PaymentStatus: PaymentStatus(gatewayStatus)}
	}
}
