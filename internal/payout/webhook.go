package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/nu7hatch/gouuid"
	"go.uber.org/zap"
	"math/big"
	"net/http"
)

// Webhook hands payouts to an external payment gateway. Every payout carries
// an idempotency key that stays the same across the client's retries.
type Webhook struct {
	url    string
	client *retryablehttp.Client
}

type webhookRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func NewWebhook(url string, client *retryablehttp.Client) *Webhook {
	return &Webhook{url, client}
}

func (w *Webhook) Pay(ctx context.Context, to common.Address, amount *big.Int) error {
	body, err := json.Marshal(webhookRequest{To: to.Hex(), Amount: amount.String()})
	if err != nil {
		return err
	}

	key, err := uuid.NewV4()
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key.String())

	resp, err := w.client.Do(req)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("to", to.Hex())).Error("[Payout] Webhook request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().With(zap.Int("status", resp.StatusCode), zap.String("to", to.Hex())).Error("[Payout] Webhook rejected payout")
		return fmt.Errorf("payout gateway responded %s", resp.Status)
	}

	zap.L().With(zap.String("to", to.Hex()), zap.String("amount", amount.String()), zap.String("key", key.String())).Info("[Payout] Webhook accepted payout")
	return nil
}
