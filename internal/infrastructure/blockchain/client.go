// internal/infrastructure/blockchain/client.go
package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ainexus-marketplace/internal/config"
	"github.com/your-org/ainexus-marketplace/internal/domain/notification"
	"github.com/your-org/ainexus-marketplace/internal/domain/purchase"
)

// Client talks to the chain gateway service over HTTP. The gateway holds the
// contract ABIs and signing keys; this client only shapes requests and maps
// responses onto the domain ports.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        config.ChainConfig
	logger     *logrus.Logger
}

// NewClient creates a new chain gateway client
func NewClient(cfg config.ChainConfig, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.GatewayURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

type callRequest struct {
	Contract string        `json:"contract"`
	Method   string        `json:"method"`
	Args     []interface{} `json:"args"`
}

type sendRequest struct {
	Contract string        `json:"contract"`
	Method   string        `json:"method"`
	From     string        `json:"from"`
	Args     []interface{} `json:"args"`
}

type callResponse struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

type sendResponse struct {
	TxHash string `json:"tx_hash"`
	Error  string `json:"error,omitempty"`
}

type statsResponse struct {
	PurchaseCount int64  `json:"purchase_count"`
	SaleCount     int64  `json:"sale_count"`
	TotalSpent    string `json:"total_spent"`
	TotalReceived string `json:"total_received"`
	Error         string `json:"error,omitempty"`
}

// BalanceOf reads the wallet's token balance
func (c *Client) BalanceOf(ctx context.Context, wallet string) (decimal.Decimal, error) {
	var resp callResponse
	req := callRequest{
		Contract: c.cfg.TokenContractAddress,
		Method:   "balanceOf",
		Args:     []interface{}{wallet},
	}
	if err := c.post(ctx, "/call", req, &resp); err != nil {
		return decimal.Zero, err
	}
	if resp.Error != "" {
		return decimal.Zero, fmt.Errorf("balanceOf failed: %s", resp.Error)
	}
	return c.parseAmount(resp.Result, "balance")
}

// Allowance reads how much the spender may move on the wallet's behalf
func (c *Client) Allowance(ctx context.Context, wallet, spender string) (decimal.Decimal, error) {
	var resp callResponse
	req := callRequest{
		Contract: c.cfg.TokenContractAddress,
		Method:   "allowance",
		Args:     []interface{}{wallet, spender},
	}
	if err := c.post(ctx, "/call", req, &resp); err != nil {
		return decimal.Zero, err
	}
	if resp.Error != "" {
		return decimal.Zero, fmt.Errorf("allowance failed: %s", resp.Error)
	}
	return c.parseAmount(resp.Result, "allowance")
}

// Approve raises the spender's allowance for the wallet
func (c *Client) Approve(ctx context.Context, wallet, spender string, amount decimal.Decimal) (purchase.TxHandle, error) {
	return c.send(ctx, sendRequest{
		Contract: c.cfg.TokenContractAddress,
		Method:   "approve",
		From:     wallet,
		Args:     []interface{}{spender, amount.String()},
	})
}

// BuyModelWithToken purchases a contract-tracked model by its on-chain id
func (c *Client) BuyModelWithToken(ctx context.Context, wallet string, contractModelID int64, tokens decimal.Decimal) (purchase.TxHandle, error) {
	return c.send(ctx, sendRequest{
		Contract: c.cfg.MarketplaceAddress,
		Method:   "buyModelWithToken",
		From:     wallet,
		Args:     []interface{}{contractModelID, tokens.String()},
	})
}

// BuyDatabaseModelWithToken purchases an off-chain listing by its catalog id.
// The seller address routes the payment; contractModelID is null for listings
// with no on-chain record.
func (c *Client) BuyDatabaseModelWithToken(ctx context.Context, wallet, modelID, seller string, tokens decimal.Decimal, contractModelID *int64) (purchase.TxHandle, error) {
	return c.send(ctx, sendRequest{
		Contract: c.cfg.MarketplaceAddress,
		Method:   "buyDatabaseModelWithToken",
		From:     wallet,
		Args:     []interface{}{modelID, seller, tokens.String(), contractModelID},
	})
}

// Stats reads the wallet's aggregate marketplace activity from the gateway
func (c *Client) Stats(ctx context.Context, address string) (notification.ChainStats, error) {
	var resp statsResponse
	if err := c.post(ctx, fmt.Sprintf("/stats/%s", address), nil, &resp); err != nil {
		return notification.ChainStats{}, err
	}
	if resp.Error != "" {
		return notification.ChainStats{}, fmt.Errorf("stats failed: %s", resp.Error)
	}

	spent, err := c.parseAmount(resp.TotalSpent, "total_spent")
	if err != nil {
		return notification.ChainStats{}, err
	}
	received, err := c.parseAmount(resp.TotalReceived, "total_received")
	if err != nil {
		return notification.ChainStats{}, err
	}
	return notification.ChainStats{
		PurchaseCount: resp.PurchaseCount,
		SaleCount:     resp.SaleCount,
		TotalSpent:    spent,
		TotalReceived: received,
	}, nil
}

// Health verifies the gateway is reachable and the marketplace contract has
// code deployed at its configured address.
func (c *Client) Health(ctx context.Context) error {
	var resp callResponse
	req := callRequest{
		Contract: c.cfg.MarketplaceAddress,
		Method:   "getCode",
	}
	if err := c.post(ctx, "/code", req, &resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("gateway health check failed: %s", resp.Error)
	}
	if resp.Result == "" || resp.Result == "0x" {
		return fmt.Errorf("no contract code at marketplace address %s", c.cfg.MarketplaceAddress)
	}
	return nil
}

// send submits a state-changing transaction through the gateway
func (c *Client) send(ctx context.Context, req sendRequest) (purchase.TxHandle, error) {
	var resp sendResponse
	if err := c.post(ctx, "/send", req, &resp); err != nil {
		return purchase.TxHandle{}, err
	}
	if resp.Error != "" {
		return purchase.TxHandle{}, fmt.Errorf("%s reverted: %s", req.Method, resp.Error)
	}
	if resp.TxHash == "" {
		return purchase.TxHandle{}, fmt.Errorf("%s returned no transaction hash", req.Method)
	}

	c.logger.WithFields(logrus.Fields{
		"method": req.Method,
		"from":   req.From,
		"tx":     resp.TxHash,
	}).Debug("Chain transaction submitted")
	return purchase.TxHandle{Hash: resp.TxHash}, nil
}

// post makes an HTTP call to the gateway and decodes the JSON response
func (c *Client) post(ctx context.Context, endpoint string, data, dest interface{}) error {
	var reqBody []byte
	var err error
	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway call failed: %w", err)
	}
	defer resp.Body.Close()

	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway call failed with status %d: %s", resp.StatusCode, respBody.String())
	}

	if err := json.Unmarshal(respBody.Bytes(), dest); err != nil {
		return fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return nil
}

func (c *Client) parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("gateway returned malformed %s %q: %w", field, raw, err)
	}
	return amount, nil
}
