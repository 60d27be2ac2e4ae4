package engine

import (
	"context"

	"kiwoombot/internal/models"

	"github.com/sirupsen/logrus"
)

func (e *Engine) onOrderEvent(evt models.OrderEvent) error {
	e.logEntry().WithFields(logrus.Fields{
		"order_id":   evt.OrderID,
		"stock_code": evt.StockCode,
		"side":       evt.Side,
		"status":     evt.Status,
		"exec_qty":   evt.ExecutedQty,
		"exec_price": evt.ExecutedPrice,
	}).Info("Событие по заявке.")

	if e.sink != nil {
		if err := e.sink.SaveOrderEvent(context.Background(), evt); err != nil {
			e.logEntry().WithError(err).Warn("Не удалось сохранить событие заявки.")
		}
	}

	if e.trader != nil {
		e.trader.OnOrderExecution(evt)
	}
	return nil
}

func (e *Engine) onBalanceEvent(evt models.BalanceEvent) error {
	e.logEntry().WithFields(logrus.Fields{
		"stock_code":     evt.StockCode,
		"holding_qty":    evt.HoldingQty,
		"available_cash": evt.AvailableCash,
	}).Info("Событие по балансу.")

	e.account.ApplyBalance(evt)

	if e.sink != nil {
		if err := e.sink.SaveBalanceEvent(context.Background(), evt); err != nil {
			e.logEntry().WithError(err).Warn("Не удалось сохранить событие баланса.")
		}
	}
	return nil
}

func (e *Engine) onOrderTimeout(n models.TimeoutNotice) {
	e.logEntry().WithFields(logrus.Fields{
		"order_id":   n.OrderID,
		"stock_code": n.StockCode,
		"side":       n.Side,
	}).Warn("Заявка не исполнена в срок, требуется отмена.")
}
