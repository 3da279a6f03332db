package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"spotvibe/internal/config"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/adapter"
)

var _ adapter.MomoGateway = (*MoovGateway)(nil)

// MoovGateway implements adapter.MomoGateway against the Moov Money
// merchant payment API.
type MoovGateway struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
}

func NewMoovGateway(cfg config.MomoOperatorConfig) (*MoovGateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("moov api key empty")
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.moov-africa.bj/merchant/v1"
	}
	return &MoovGateway{
		baseURL:   base,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *MoovGateway) Name() string                 { return "moov-money" }
func (g *MoovGateway) Operator() model.MomoOperator { return model.OperatorMoov }

func (g *MoovGateway) post(ctx context.Context, path string, body, out interface{}) error {
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", g.apiKey)
	req.Header.Set("X-Api-Secret", g.apiSecret)
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("moov %s status %d", path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (g *MoovGateway) RequestPayment(ctx context.Context, r adapter.PaymentRequest) (adapter.PaymentResult, error) {
	payload := map[string]interface{}{
		"amount":      r.Amount.String(),
		"currency":    r.Currency,
		"msisdn":      r.Phone,
		"reference":   r.Reference,
		"description": r.Description,
	}
	var out struct {
		TransactionID string `json:"transaction_id"`
		Status        string `json:"status"`
		Message       string `json:"message"`
	}
	if err := g.post(ctx, "/transactions/push", payload, &out); err != nil {
		return adapter.PaymentResult{}, err
	}
	if out.TransactionID == "" {
		return adapter.PaymentResult{}, errors.New("moov push returned no transaction id")
	}
	return adapter.PaymentResult{
		ProviderTxID: out.TransactionID,
		Status:       moovStatus(out.Status),
		Message:      out.Message,
	}, nil
}

func (g *MoovGateway) VerifyTransaction(ctx context.Context, providerTxID string) (adapter.VerifyResult, error) {
	var out struct {
		TransactionID string `json:"transaction_id"`
		Status        string `json:"status"`
		Amount        string `json:"amount"`
		Currency      string `json:"currency"`
		ErrorCode     string `json:"error_code"`
		ErrorMessage  string `json:"error_message"`
	}
	if err := g.post(ctx, "/transactions/status", map[string]string{"transaction_id": providerTxID}, &out); err != nil {
		return adapter.VerifyResult{}, err
	}
	res := adapter.VerifyResult{
		ProviderTxID: providerTxID,
		Status:       moovStatus(out.Status),
		Currency:     out.Currency,
		ErrorCode:    out.ErrorCode,
		ErrorMessage: out.ErrorMessage,
	}
	res.Amount, _ = parseAmount(out.Amount)
	return res, nil
}

func (g *MoovGateway) CancelTransaction(ctx context.Context, providerTxID string) error {
	return g.post(ctx, "/transactions/cancel", map[string]string{"transaction_id": providerTxID}, nil)
}

func moovStatus(s string) model.MomoTransactionStatus {
	switch s {
	case "SUCCESS", "SUCCESSFUL", "COMPLETED":
		return model.MomoStatusSuccess
	case "FAILED", "REJECTED":
		return model.MomoStatusFailed
	case "CANCELLED":
		return model.MomoStatusCancelled
	default:
		return model.MomoStatusPending
	}
}
