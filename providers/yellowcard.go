package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// YellowCardProvider implements PaymentProvider against the YellowCard
// collections API.
type YellowCardProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewYellowCardProvider creates a new YellowCardProvider.
func NewYellowCardProvider(baseURL, apiKey string) *YellowCardProvider {
	return &YellowCardProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (p *YellowCardProvider) Name() string { return "yellowcard" }

// ---- YellowCard API request/response structs ----

type yellowCardCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type yellowCardCollectionRequest struct {
	Amount      int64              `json:"amount"`
	Currency    string             `json:"currency"`
	Country     string             `json:"country"`
	Channel     string             `json:"channel"` // operator code
	Reference   string             `json:"reference"`
	CallbackURL string             `json:"callback_url,omitempty"`
	ReturnURL   string             `json:"return_url,omitempty"`
	Customer    yellowCardCustomer `json:"customer"`
}

type yellowCardCollectionResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	PaymentURL string `json:"payment_url"`
	Message    string `json:"message"`
}

func (p *YellowCardProvider) InitiatePayment(ctx context.Context, req ProviderRequest) (*ProviderResponse, error) {
	payload := yellowCardCollectionRequest{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Country:     req.Country,
		Channel:     req.OperatorCode,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
		Customer: yellowCardCustomer{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.PhoneNumber,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal collection request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/v2/collections", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build collection request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{StatusCode: http.StatusBadGateway, Message: fmt.Sprintf("gateway unreachable: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{StatusCode: http.StatusBadGateway, Message: fmt.Sprintf("failed to read gateway response: %v", err)}
	}

	var ycResp yellowCardCollectionResponse
	if err := json.Unmarshal(respBody, &ycResp); err != nil && resp.StatusCode < 300 {
		return nil, &ProviderError{StatusCode: http.StatusBadGateway, Message: "malformed gateway response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ycResp.Message
		if msg == "" {
			msg = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &ProviderResponse{
		TransactionID: ycResp.ID,
		PaymentURL:    ycResp.PaymentURL,
		Status:        ycResp.Status,
	}, nil
}
