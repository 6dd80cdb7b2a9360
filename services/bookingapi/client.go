package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"consultly/models"
)

// Client is the remote booking platform contract. The three mutating calls
// are invoked only by the wizard's orchestrator, in the fixed order create →
// billing → payment.
type Client interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (string, error)
	UpdateBilling(ctx context.Context, bookingID string, billing models.BillingInfo) error
	SubmitPayment(ctx context.Context, bookingID string, req PaymentRequest) (*PaymentConfirmation, error)
}

// CreateBookingRequest is the create-booking call payload.
type CreateBookingRequest struct {
	ConsultantID  string             `json:"consultantId"`
	Date          string             `json:"date"`
	Slot          string             `json:"slot"`
	Contact       models.ContactInfo `json:"contact"`
	TermsAccepted bool               `json:"termsAccepted"`
}

// PaymentRequest is the submit-payment call payload.
type PaymentRequest struct {
	Method   string `json:"method"`
	Provider string `json:"provider"`
}

// PaymentConfirmation is the provider confirmation returned by the payment call.
type PaymentConfirmation struct {
	Reference string `json:"reference"`
	Provider  string `json:"provider"`
	Status    string `json:"status"`
}

// APIError is a non-2xx response from the booking platform.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("booking api %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// IsSlotUnavailable reports whether err means the requested slot was taken
// between availability fetch and booking creation.
func IsSlotUnavailable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Code == "slot_unavailable" || apiErr.StatusCode == http.StatusConflict)
}

// HTTPClient implements Client against the booking platform's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewHTTPClient creates a booking platform client.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) CreateBooking(ctx context.Context, req CreateBookingRequest) (string, error) {
	var resp struct {
		BookingID string `json:"bookingId"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/bookings", req, &resp); err != nil {
		return "", err
	}
	if resp.BookingID == "" {
		return "", errors.New("booking api returned an empty booking id")
	}
	return resp.BookingID, nil
}

func (c *HTTPClient) UpdateBilling(ctx context.Context, bookingID string, billing models.BillingInfo) error {
	path := fmt.Sprintf("/v1/bookings/%s/billing", bookingID)
	return c.do(ctx, http.MethodPut, path, billing, nil)
}

func (c *HTTPClient) SubmitPayment(ctx context.Context, bookingID string, req PaymentRequest) (*PaymentConfirmation, error) {
	path := fmt.Sprintf("/v1/bookings/%s/payment", bookingID)
	var conf PaymentConfirmation
	if err := c.do(ctx, http.MethodPost, path, req, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s body: %w", method, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("booking api %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
