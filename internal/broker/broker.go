package broker

import (
	"context"
	"encoding/json"

	"kiwoombot/internal/models"
)

const (
	RecordTypeOrder      = "00"
	RecordTypeFillNotice = "04"
	RecordTypeBalance    = "05"
)

type RealtimeRecord struct {
	Type   string            `json:"type"`
	Name   string            `json:"name"`
	Item   string            `json:"item"`
	Values map[string]string `json:"values"`
	Raw    json.RawMessage   `json:"-"`
}

type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

type Feed interface {
	Connect(ctx context.Context) error
	Disconnect() error
	SubscribeOrderExecution(ctx context.Context) error
	SubscribeBalance(ctx context.Context) error
	Records() <-chan RealtimeRecord
	IsConnected() bool
}

type Client interface {
	GetAccountBalance(ctx context.Context) (models.AccountBalance, error)
	GetHoldings(ctx context.Context) ([]models.Position, error)
	GetSellablePositions(ctx context.Context) ([]models.Position, error)
	GetCurrentPrice(ctx context.Context, stockCode string) (int64, error)
	Buy(ctx context.Context, stockCode string, qty, price int64, orderType models.OrderType) (models.OrderResult, error)
	Sell(ctx context.Context, stockCode string, qty, price int64, orderType models.OrderType) (models.OrderResult, error)
	LiquidateAll(ctx context.Context) ([]models.LiquidationResult, error)
}
