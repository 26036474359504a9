package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrGatewayUnavailable covers every provider failure: transport errors,
// non-2xx responses and unusable payloads. Callers surface it as "payment
// system unavailable" and the order stays payable.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Preference is the normalized payable intent the provider created for an
// order.
type Preference struct {
	ID               string
	InitPoint        string
	SandboxInitPoint string
}

// Payment is the normalized view of a provider payment object. Everything
// downstream branches only on these three fields, never on raw provider
// shapes.
type Payment struct {
	ID                string
	Status            string
	ExternalReference string
}

type PreferenceItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

type PreferencePayer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PreferenceRequest struct {
	Items               []PreferenceItem `json:"items"`
	Payer               PreferencePayer  `json:"payer"`
	ExternalReference   string           `json:"external_reference"`
	NotificationURL     string           `json:"notification_url"`
	StatementDescriptor string           `json:"statement_descriptor,omitempty"`
}

// Client talks to the payment provider's REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   accessToken,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// providerID accepts the provider's id field in both shapes it ships:
// payment ids arrive as JSON numbers, preference ids as opaque strings
// ("202809963-920c288b-..."). Either way it normalizes to a string.
type providerID string

func (id *providerID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = providerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = providerID(n.String())
	return nil
}

// preferencePayload appears either flat or wrapped under "body" depending on
// the provider SDK/API version that produced it.
type preferencePayload struct {
	ID               providerID `json:"id"`
	InitPoint        string     `json:"init_point"`
	SandboxInitPoint string     `json:"sandbox_init_point"`
}

type preferenceEnvelope struct {
	preferencePayload
	Body *preferencePayload `json:"body"`
}

// CreatePreference registers a payable intent for an order and returns the
// provider's preference id plus the client-facing redirect URLs.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	var env preferenceEnvelope
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", req, &env); err != nil {
		return nil, err
	}

	p := env.preferencePayload
	if p.ID == "" && env.Body != nil {
		p = *env.Body
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: preference response has no id", ErrGatewayUnavailable)
	}
	return &Preference{
		ID:               string(p.ID),
		InitPoint:        p.InitPoint,
		SandboxInitPoint: p.SandboxInitPoint,
	}, nil
}

type paymentPayload struct {
	ID                providerID `json:"id"`
	Status            string     `json:"status"`
	ExternalReference string     `json:"external_reference"`
}

type paymentEnvelope struct {
	paymentPayload
	Body *paymentPayload `json:"body"`
}

// GetPayment fetches the authoritative state of a payment. The webhook body
// only signals "something changed"; this is the source of truth.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var env paymentEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &env); err != nil {
		return nil, err
	}

	p := env.paymentPayload
	if p.ID == "" && env.Body != nil {
		p = *env.Body
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: payment response has no id", ErrGatewayUnavailable)
	}
	return &Payment{
		ID:                string(p.ID),
		Status:            p.Status,
		ExternalReference: p.ExternalReference,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrGatewayUnavailable, method, path, resp.StatusCode, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrGatewayUnavailable, err)
	}
	return nil
}
