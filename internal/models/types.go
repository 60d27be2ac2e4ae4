package models

import (
	"encoding/json"
	"time"
)

type OrderSide string
type OrderStatus string
type OrderType string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"

	OrderStatusReceived OrderStatus = "RECEIVED"
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusUnknown  OrderStatus = "UNKNOWN"

	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

type OrderEvent struct {
	OrderID       string      `json:"order_id"`
	StockCode     string      `json:"stock_code"`
	StockName     string      `json:"stock_name"`
	Side          OrderSide   `json:"side"`
	Status        OrderStatus `json:"status"`
	OrderedQty    int64       `json:"ordered_qty"`
	ExecutedQty   int64       `json:"executed_qty"`
	ExecutedPrice int64       `json:"executed_price"`
	RemainingQty  int64       `json:"remaining_qty"`
	ReceivedAt    time.Time   `json:"received_at"`
}

type BalanceEvent struct {
	Timestamp       time.Time       `json:"timestamp"`
	AvailableCash   int64           `json:"available_cash"`
	TotalEvaluation int64           `json:"total_evaluation"`
	StockCode       string          `json:"stock_code"`
	HoldingQty      int64           `json:"holding_qty"`
	AvgPrice        int64           `json:"avg_price"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

type TimeoutNotice struct {
	OrderID   string    `json:"order_id"`
	StockCode string    `json:"stock_code"`
	StockName string    `json:"stock_name"`
	Side      OrderSide `json:"side"`
	ArmedAt   time.Time `json:"armed_at"`
}

type Subscription struct {
	GroupNo   string `json:"grp_no"`
	AccountNo string `json:"account_no"`
	TypeCode  string `json:"type"`
	Refresh   bool   `json:"refresh"`
}

type Position struct {
	StockCode string `json:"stock_code"`
	StockName string `json:"stock_name"`
	Quantity  int64  `json:"quantity"`
	Price     int64  `json:"price"`
}

type AccountBalance struct {
	AvailableCash int64 `json:"available_cash"`
	TotalBalance  int64 `json:"total_balance"`
}

type OrderResult struct {
	Success bool   `json:"success"`
	OrderNo string `json:"order_no"`
	Error   string `json:"error,omitempty"`
}

type LiquidationResult struct {
	StockCode string `json:"stock_code"`
	StockName string `json:"stock_name"`
	Quantity  int64  `json:"quantity"`
	Price     int64  `json:"price"`
	OrderNo   string `json:"order_no"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type SentOrder struct {
	StockCode string    `json:"stock_code"`
	StockName string    `json:"stock_name"`
	Side      OrderSide `json:"side"`
	Quantity  int64     `json:"quantity"`
	Price     int64     `json:"price"`
	OrderNo   string    `json:"order_no"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
