package payments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/catfecito/storefront/internal/orders"
)

// ErrOrderHasNoItems should be impossible for orders created through
// checkout, but the ledger is the judge, not this package.
var ErrOrderHasNoItems = errors.New("order has no items")

// Ledger is the slice of the order ledger preference creation needs.
type Ledger interface {
	GetForPayment(ctx context.Context, orderID, userID string) (*orders.PaymentOrder, error)
	SetPaymentPreference(ctx context.Context, orderID, preferenceID string) error
}

// PreferenceCreator is implemented by *Client.
type PreferenceCreator interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
}

// Service owns the create-preference use case.
type Service struct {
	Ledger              Ledger
	Gateway             PreferenceCreator
	CurrencyID          string
	PublicBaseURL       string
	StatementDescriptor string
	Logger              *slog.Logger
}

// CheckoutLink is what the client needs to send the payer to the gateway.
type CheckoutLink struct {
	PreferenceID     string `json:"preference_id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
	OrderID          string `json:"order_id"`
	TotalCents       int64  `json:"total_cents"`
}

// CreatePreference registers the order with the gateway and persists the
// returned preference id onto the order so the webhook can cross-reference
// it. The order must belong to the user and must not be paid already.
func (s *Service) CreatePreference(ctx context.Context, userID, orderID string) (*CheckoutLink, error) {
	po, err := s.Ledger.GetForPayment(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if po.PaymentStatus == orders.PaymentApproved || po.Status == orders.StatusPaid {
		return nil, orders.ErrAlreadyPaid
	}
	if len(po.Items) == 0 {
		return nil, ErrOrderHasNoItems
	}

	req := PreferenceRequest{
		Payer:               PreferencePayer{Name: po.PayerName, Email: po.PayerEmail},
		ExternalReference:   po.ID,
		NotificationURL:     s.PublicBaseURL + "/api/payments/webhook",
		StatementDescriptor: s.StatementDescriptor,
	}
	for _, it := range po.Items {
		req.Items = append(req.Items, PreferenceItem{
			ID:          it.ID,
			Title:       it.Title,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   float64(it.PriceCents) / 100,
			CurrencyID:  s.CurrencyID,
		})
	}

	pref, err := s.Gateway.CreatePreference(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.Ledger.SetPaymentPreference(ctx, po.ID, pref.ID); err != nil {
		return nil, err
	}

	s.Logger.Info("payment preference created", "order_id", po.ID, "preference_id", pref.ID)
	return &CheckoutLink{
		PreferenceID:     pref.ID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
		OrderID:          po.ID,
		TotalCents:       po.TotalCents,
	}, nil
}
