package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kiwoombot/internal/models"

	"github.com/sirupsen/logrus"
)

// fallbackCash подставляется при недоступном балансе, чтобы не останавливать сессию.
const fallbackCash int64 = 1_000_000

func (e *Engine) evaluate(ctx context.Context) {
	now := e.now()
	inWindow := e.window.Contains(now)

	e.mu.Lock()
	active := e.active
	e.mu.Unlock()

	switch {
	case inWindow && !active:
		e.logEntry().Info("Торговая сессия открыта.")
		if !e.cfg.Session.Overnight {
			e.logEntry().Info("Овернайт выключен, продаём остатки перед стартом.")
			e.liquidate(ctx)
		}
		e.startTrading(ctx)
	case !inWindow && active:
		e.logEntry().Info("Торговая сессия закрыта.")
		e.stopTrading(ctx)
		e.logUntilOpen(now)
	case !inWindow:
		e.logEntry().WithField("time", now.Format("15:04:05")).Debug("Ожидание открытия сессии.")
	}
}

func (e *Engine) startTrading(ctx context.Context) {
	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return
	}
	e.active = true
	e.mu.Unlock()

	e.logEntry().Info("Старт торговли.")

	e.refreshAccount(ctx)

	if err := e.connectFeed(ctx); err != nil {
		e.logEntry().WithError(err).Error("Не удалось подключить поток данных.")
	}

	if e.trader == nil {
		return
	}

	traderCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	e.mu.Lock()
	e.traderStop = cancel
	e.traderDone = done
	e.mu.Unlock()

	go func() {
		defer close(done)
		if err := e.trader.Run(traderCtx); err != nil && !errors.Is(err, context.Canceled) {
			e.logEntry().WithError(err).Error("Торговый цикл завершился с ошибкой.")
		}
	}()
}

func (e *Engine) stopTrading(ctx context.Context) {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	stop := e.traderStop
	done := e.traderDone
	e.traderStop = nil
	e.traderDone = nil
	e.mu.Unlock()

	e.logEntry().Info("Остановка торговли, продаём все позиции.")

	e.liquidate(ctx)

	if stop != nil {
		stop()
	}
	if done != nil {
		<-done
		e.logEntry().Info("Торговый цикл остановлен.")
	}
}

func (e *Engine) liquidate(ctx context.Context) {
	results, err := e.client.LiquidateAll(ctx)
	if err != nil {
		e.logEntry().WithError(err).Error("Ликвидация завершилась с ошибкой.")
	}

	for _, res := range results {
		entry := e.logEntry().WithFields(logrus.Fields{
			"stock_code": res.StockCode,
			"stock_name": res.StockName,
		})
		if res.Success {
			entry.Info("Позиция продана.")
		} else {
			entry.WithField("error", res.Error).Error("Не удалось продать позицию.")
		}

		e.journalSentOrder(ctx, res)
	}
}

func (e *Engine) journalSentOrder(ctx context.Context, res models.LiquidationResult) {
	if e.sink == nil {
		return
	}

	ord := models.SentOrder{
		StockCode: res.StockCode,
		StockName: res.StockName,
		Side:      models.OrderSideSell,
		Quantity:  res.Quantity,
		Price:     res.Price,
		OrderNo:   res.OrderNo,
		Success:   res.Success,
		Error:     res.Error,
		CreatedAt: e.now(),
	}
	if err := e.sink.SaveSentOrder(ctx, ord); err != nil {
		e.logEntry().WithError(err).Warn("Не удалось сохранить отправленную заявку.")
	}
}

func (e *Engine) refreshAccount(ctx context.Context) {
	e.logEntry().Info("Запрос состояния счёта.")

	balance, err := e.client.GetAccountBalance(ctx)
	if err != nil {
		e.logEntry().WithError(err).Warn("Не удалось получить баланс счёта.")
		e.logEntry().Info("Используем тестовый остаток 1 000 000 вон.")
		e.account.Update(models.AccountBalance{AvailableCash: fallbackCash})
		return
	}

	e.account.Update(balance)
	e.logEntry().WithFields(logrus.Fields{
		"available_cash": balance.AvailableCash,
		"total_balance":  balance.TotalBalance,
	}).Info("Баланс счёта обновлён.")

	if e.sink != nil {
		if err := e.sink.SaveAccount(ctx, balance); err != nil {
			e.logEntry().WithError(err).Warn("Не удалось сохранить состояние счёта.")
		}
	}
}

func (e *Engine) connectFeed(ctx context.Context) error {
	if e.feed.IsConnected() {
		return nil
	}

	e.logEntry().Info("Подключение потока данных.")
	if err := e.feed.Connect(ctx); err != nil {
		return err
	}

	// Ответ на LOGIN должен прийти до отправки REG.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(e.loginWait):
	}

	if err := e.feed.SubscribeOrderExecution(ctx); err != nil {
		return err
	}

	e.logEntry().Info("Поток данных подключен.")
	return nil
}

func (e *Engine) logUntilOpen(now time.Time) {
	until := e.window.UntilOpen(now)
	h := int(until.Hours())
	m := int(until.Minutes()) % 60
	e.logEntry().WithField("until_open", fmt.Sprintf("%dч %dм", h, m)).Info("Ожидание следующей сессии.")
}
