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

var _ adapter.MomoGateway = (*MTNGateway)(nil)

// MTNGateway implements adapter.MomoGateway against the MTN MoMo collections
// API (requesttopay flow).
type MTNGateway struct {
	baseURL   string
	apiKey    string
	apiSecret string
	sandbox   bool
	client    *http.Client
}

func NewMTNGateway(cfg config.MomoOperatorConfig) (*MTNGateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mtn api key empty")
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://momodeveloper.mtn.com/collection/v1_0"
		if cfg.Sandbox {
			base = "https://sandbox.momodeveloper.mtn.com/collection/v1_0"
		}
	}
	return &MTNGateway{
		baseURL:   base,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		sandbox:   cfg.Sandbox,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *MTNGateway) Name() string                 { return "mtn-momo" }
func (g *MTNGateway) Operator() model.MomoOperator { return model.OperatorMTN }

func (g *MTNGateway) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, rd)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", g.apiKey)
	req.Header.Set("Authorization", "Bearer "+g.apiSecret)
	resp, err := g.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (g *MTNGateway) RequestPayment(ctx context.Context, r adapter.PaymentRequest) (adapter.PaymentResult, error) {
	txID := newProviderRef("MTN")
	payload := map[string]interface{}{
		"amount":       r.Amount.String(),
		"currency":     r.Currency,
		"externalId":   r.Reference,
		"payer":        map[string]string{"partyIdType": "MSISDN", "partyId": r.Phone},
		"payerMessage": r.Description,
	}
	code, err := g.do(ctx, http.MethodPost, "/requesttopay?referenceId="+txID, payload, nil)
	if err != nil {
		return adapter.PaymentResult{}, err
	}
	if code != http.StatusAccepted && code != http.StatusOK {
		return adapter.PaymentResult{}, fmt.Errorf("mtn requesttopay status %d", code)
	}
	return adapter.PaymentResult{
		ProviderTxID: txID,
		Status:       model.MomoStatusPending,
		Message:      "collection requested",
	}, nil
}

func (g *MTNGateway) VerifyTransaction(ctx context.Context, providerTxID string) (adapter.VerifyResult, error) {
	var out struct {
		Amount     string `json:"amount"`
		Currency   string `json:"currency"`
		ExternalID string `json:"externalId"`
		Status     string `json:"status"` // PENDING | SUCCESSFUL | FAILED
		Reason     struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"reason"`
	}
	code, err := g.do(ctx, http.MethodGet, "/requesttopay/"+providerTxID, nil, &out)
	if err != nil {
		return adapter.VerifyResult{}, err
	}
	if code != http.StatusOK {
		return adapter.VerifyResult{}, fmt.Errorf("mtn verify status %d", code)
	}
	res := adapter.VerifyResult{
		ProviderTxID: providerTxID,
		Currency:     out.Currency,
		ErrorCode:    out.Reason.Code,
		ErrorMessage: out.Reason.Message,
	}
	res.Amount, _ = parseAmount(out.Amount)
	switch out.Status {
	case "SUCCESSFUL":
		res.Status = model.MomoStatusSuccess
	case "FAILED":
		res.Status = model.MomoStatusFailed
	default:
		res.Status = model.MomoStatusPending
	}
	return res, nil
}

func (g *MTNGateway) CancelTransaction(ctx context.Context, providerTxID string) error {
	// MTN collections has no cancel endpoint; pending requests simply time
	// out on the operator side.
	return nil
}
