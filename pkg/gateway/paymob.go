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

// PaymobProvider talks to the Paymob acceptance API: payment intentions for
// checkout and refunds against captured transactions.
type PaymobProvider struct {
	BaseURL   string
	SecretKey string
	PublicKey string
	client    *http.Client
}

func NewPaymobProvider(baseURL, secretKey, publicKey string) *PaymobProvider {
	if baseURL == "" {
		baseURL = "https://accept.paymob.com"
	}
	return &PaymobProvider{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		PublicKey: publicKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type paymobIntentionReq struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	PaymentMethods []string          `json:"payment_methods"`
	SpecialRef     string            `json:"special_reference"`
	BillingData    paymobBilling     `json:"billing_data"`
	Extras         map[string]string `json:"extras,omitempty"`
}

type paymobBilling struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type paymobIntentionResp struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// CreateIntention opens a payment intention and returns the hosted checkout
// URL the guest completes payment on.
func (p *PaymobProvider) CreateIntention(ctx context.Context, req IntentionRequest) (*IntentionResponse, error) {
	first, last := splitName(req.CustomerName)
	payload := paymobIntentionReq{
		Amount:         req.AmountCents,
		Currency:       req.Currency,
		PaymentMethods: []string{"card"},
		SpecialRef:     req.SpecialRef,
		BillingData:    paymobBilling{Email: req.CustomerEmail, FirstName: first, LastName: last},
		Extras:         req.Metadata,
	}
	body, _ := json.Marshal(payload)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/intention/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Token "+p.SecretKey)
	log.Printf("[Paymob] POST %s/v1/intention/ ref=%s amount=%d %s", p.BaseURL, req.SpecialRef, req.AmountCents, req.Currency)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("paymob intention: %d %s", resp.StatusCode, string(respBody))
	}
	var out paymobIntentionResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if out.ClientSecret == "" {
		return nil, fmt.Errorf("paymob: intention returned empty client_secret")
	}
	return &IntentionResponse{
		IntentionID:  out.ID,
		ClientSecret: out.ClientSecret,
		CheckoutURL:  fmt.Sprintf("%s/unifiedcheckout/?publicKey=%s&clientSecret=%s", p.BaseURL, p.PublicKey, out.ClientSecret),
	}, nil
}

type paymobRefundReq struct {
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
}

// RefundTransaction reverses a captured transaction for the given amount.
func (p *PaymobProvider) RefundTransaction(ctx context.Context, transactionID string, amountCents int64) error {
	body, _ := json.Marshal(paymobRefundReq{TransactionID: transactionID, AmountCents: amountCents})
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/acceptance/void_refund/refund", bytes.NewReader(body))
	if err != nil {
		return err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Token "+p.SecretKey)
	log.Printf("[Paymob] POST %s/api/acceptance/void_refund/refund txn=%s amount=%d", p.BaseURL, transactionID, amountCents)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("paymob refund: %d %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func splitName(name string) (string, string) {
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' {
			return name[:i], name[i+1:]
		}
	}
	if name == "" {
		return "Guest", "Guest"
	}
	return name, name
}
