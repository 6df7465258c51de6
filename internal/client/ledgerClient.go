package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"groupbuy-commerce/internal/config"
	"io"
	"net/http"
	"time"
)

// LedgerClient moves value between custody accounts. Transfers can fail
// synchronously (insufficient balance, counterparty rejection); every call
// site decides whether that failure aborts the surrounding operation.
type LedgerClient interface {
	Transfer(ctx context.Context, to string, amount int64, currency string) error
}

type ledgerClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
}

func NewLedgerClient(ledgerCfg *config.Ledger) LedgerClient {
	return &ledgerClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: ledgerCfg.BaseApiURL,
		apiKey:     ledgerCfg.APIKey,
	}
}

type transferRequest struct {
	To       string `json:"to"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (c *ledgerClientImpl) Transfer(ctx context.Context, to string, amount int64, currency string) error {
	body, err := json.Marshal(&transferRequest{
		To:       to,
		Amount:   amount,
		Currency: currency,
	})
	if err != nil {
		return fmt.Errorf("marshal transfer payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.baseApiURL+"/v1/transfers",
		bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ledger transfer error %d: %s", resp.StatusCode, string(b))
	}

	return nil
}
