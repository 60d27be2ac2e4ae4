package router

import (
	"context"

	"kiwoombot/internal/broker"
	"kiwoombot/internal/logger"
	"kiwoombot/internal/models"
	"kiwoombot/internal/watchdog"

	"github.com/sirupsen/logrus"
)

type Router struct {
	watchdog  *watchdog.Watchdog
	onOrder   func(models.OrderEvent) error
	onBalance func(models.BalanceEvent) error
	log       *logger.Logger
}

func New(dog *watchdog.Watchdog, log *logger.Logger) *Router {
	return &Router{watchdog: dog, log: log}
}

// Обработчики задаются до запуска Run.
func (r *Router) OnOrder(fn func(models.OrderEvent) error) {
	r.onOrder = fn
}

func (r *Router) OnBalance(fn func(models.BalanceEvent) error) {
	r.onBalance = fn
}

func (r *Router) Run(ctx context.Context, records <-chan broker.RealtimeRecord) {
	r.logEntry().Debug("Маршрутизатор событий запущен.")
	for {
		select {
		case <-ctx.Done():
			r.logEntry().Debug("Маршрутизатор событий остановлен.")
			return
		case rec := <-records:
			r.Route(rec)
		}
	}
}

func (r *Router) Route(rec broker.RealtimeRecord) {
	switch rec.Type {
	case broker.RecordTypeOrder, broker.RecordTypeFillNotice:
		r.routeOrder(rec)
	case broker.RecordTypeBalance:
		r.routeBalance(rec)
	default:
		r.logEntry().WithField("type", rec.Type).Debug("Запись неизвестного типа пропущена.")
	}
}

// routeOrder сначала обновляет сторожа и лишь потом зовёт обработчик:
// упавший обработчик не должен оставлять исполненную заявку с живым таймером.
func (r *Router) routeOrder(rec broker.RealtimeRecord) {
	evt := decodeOrderEvent(rec)

	if r.watchdog != nil {
		r.watchdog.Observe(evt)
	}

	if r.onOrder == nil {
		return
	}
	if err := r.onOrder(evt); err != nil {
		r.logEntry().WithError(err).WithFields(logrus.Fields{
			"order_id":   evt.OrderID,
			"stock_code": evt.StockCode,
		}).Error("Обработчик заявки завершился с ошибкой.")
	}
}

func (r *Router) routeBalance(rec broker.RealtimeRecord) {
	evt, err := decodeBalanceEvent(rec)
	if err != nil {
		r.logEntry().WithError(err).Warn("Запись баланса пропущена.")
		return
	}

	if r.onBalance == nil {
		return
	}
	if err := r.onBalance(evt); err != nil {
		r.logEntry().WithError(err).WithField("stock_code", evt.StockCode).Error("Обработчик баланса завершился с ошибкой.")
	}
}

func (r *Router) logEntry() *logrus.Entry {
	return r.log.WithComponent("router")
}
