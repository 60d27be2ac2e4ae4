package router

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"kiwoombot/internal/broker"
	"kiwoombot/internal/models"
)

// Коды полей записи о заявке.
const (
	fieldOrderNo       = "9203"
	fieldStockCode     = "9001"
	fieldStockName     = "302"
	fieldOrderStatus   = "913"
	fieldOrderSide     = "907"
	fieldOrderedQty    = "900"
	fieldExecutedQty   = "911"
	fieldExecutedPrice = "910"
	fieldRemainingQty  = "902"
)

// Статусы заявки в том виде, в каком их шлёт брокер.
const (
	wireStatusReceived = "접수"
	wireStatusQueued   = "주문"
	wireStatusFilled   = "체결"
)

func decodeOrderEvent(rec broker.RealtimeRecord) models.OrderEvent {
	v := rec.Values
	return models.OrderEvent{
		OrderID:       v[fieldOrderNo],
		StockCode:     v[fieldStockCode],
		StockName:     v[fieldStockName],
		Side:          sideFromWire(v[fieldOrderSide]),
		Status:        statusFromWire(v[fieldOrderStatus]),
		OrderedQty:    intOrZero(v[fieldOrderedQty]),
		ExecutedQty:   intOrZero(v[fieldExecutedQty]),
		ExecutedPrice: intOrZero(v[fieldExecutedPrice]),
		RemainingQty:  intOrZero(v[fieldRemainingQty]),
		ReceivedAt:    time.Now(),
	}
}

func statusFromWire(s string) models.OrderStatus {
	switch s {
	case wireStatusReceived, wireStatusQueued:
		return models.OrderStatusReceived
	case wireStatusFilled:
		return models.OrderStatusFilled
	default:
		return models.OrderStatusUnknown
	}
}

func sideFromWire(s string) models.OrderSide {
	if s == "2" {
		return models.OrderSideBuy
	}
	return models.OrderSideSell
}

type balanceRecord struct {
	AvailableCash   string `json:"ord_psbl_cash"`
	TotalEvaluation string `json:"tot_evlu_amt"`
	StockCode       string `json:"stck_shrn_iscd"`
	HoldingQty      string `json:"hldg_qty"`
	AvgPrice        string `json:"pchs_avg_pric"`
}

// Поля баланса лежат на верхнем уровне записи, а не в карте values.
func decodeBalanceEvent(rec broker.RealtimeRecord) (models.BalanceEvent, error) {
	var raw balanceRecord
	if len(rec.Raw) > 0 {
		if err := json.Unmarshal(rec.Raw, &raw); err != nil {
			return models.BalanceEvent{}, fmt.Errorf("Не удалось разобрать запись баланса: %w", err)
		}
	}

	return models.BalanceEvent{
		Timestamp:       time.Now(),
		AvailableCash:   intOrZero(raw.AvailableCash),
		TotalEvaluation: intOrZero(raw.TotalEvaluation),
		StockCode:       raw.StockCode,
		HoldingQty:      intOrZero(raw.HoldingQty),
		AvgPrice:        intOrZero(raw.AvgPrice),
		Raw:             rec.Raw,
	}, nil
}

func intOrZero(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
