package ws

import (
	"context"
	"fmt"

	"kiwoombot/internal/broker"
	"kiwoombot/internal/models"

	"github.com/sirupsen/logrus"
)

func (w *Client) SubscribeOrderExecution(ctx context.Context) error {
	return w.Subscribe(ctx, models.Subscription{
		GroupNo:   "0001",
		AccountNo: w.accountNo,
		TypeCode:  broker.RecordTypeOrder,
		Refresh:   true,
	})
}

func (w *Client) SubscribeBalance(ctx context.Context) error {
	return w.Subscribe(ctx, models.Subscription{
		GroupNo:   "0002",
		AccountNo: w.accountNo,
		TypeCode:  broker.RecordTypeFillNotice,
		Refresh:   true,
	})
}

func (w *Client) Subscribe(_ context.Context, sub models.Subscription) error {
	if sub.AccountNo == "" {
		w.logEntry().Warn("Номер счёта не задан, подписка пропущена.")
		return nil
	}
	if !w.IsConnected() {
		w.logEntry().Warn("WS не подключен, подписка пропущена.")
		return nil
	}

	payload, err := encodeReg(sub)
	if err != nil {
		return fmt.Errorf("Не удалось подготовить REG кадр: %w", err)
	}
	if err := w.send(payload); err != nil {
		return fmt.Errorf("Не удалось отправить REG: %w", err)
	}

	w.logEntry().WithFields(logrus.Fields{
		"grp_no": sub.GroupNo,
		"type":   sub.TypeCode,
	}).Info("Подписка отправлена.")
	return nil
}
