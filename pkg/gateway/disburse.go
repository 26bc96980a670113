package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// PayoutsProvider talks to the disbursement API that wires host withdrawals
// to their bank accounts. Final status always arrives via webhook; the
// initiation response only acknowledges the instruction.
type PayoutsProvider struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewPayoutsProvider(baseURL, apiKey string) *PayoutsProvider {
	if baseURL == "" {
		baseURL = "https://payouts.paymobsolutions.com"
	}
	return &PayoutsProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type disburseReq struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"client_reference"`
	Destination string `json:"issuer_account"`
}

type disburseResp struct {
	TransactionID      string `json:"transaction_id"`
	DisbursementStatus string `json:"disbursement_status"`
	StatusCode         string `json:"status_code"`
	StatusDescription  string `json:"status_description"`
}

func (p *PayoutsProvider) CreateDisbursement(ctx context.Context, req DisbursementRequest) (*DisbursementResponse, error) {
	payload := disburseReq{
		Amount:      fmt.Sprintf("%d.%02d", req.AmountCents/100, req.AmountCents%100),
		Currency:    req.Currency,
		Reference:   req.Reference,
		Destination: req.Destination,
	}
	body, _ := json.Marshal(payload)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/secure/disburse/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Token "+p.APIKey)
	log.Printf("[Payouts] POST %s/api/secure/disburse/ ref=%s amount=%s", p.BaseURL, req.Reference, payload.Amount)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[Payouts] disburse response status=%d body=%s", resp.StatusCode, string(respBody))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("disburse api: %d %s", resp.StatusCode, string(respBody))
	}
	var out disburseResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if out.TransactionID == "" {
		return nil, fmt.Errorf("disburse api: missing transaction_id in response")
	}
	return &DisbursementResponse{TransactionID: out.TransactionID, Status: out.DisbursementStatus}, nil
}
