package ws

import (
	"strings"

	"github.com/sirupsen/logrus"
)

func (w *Client) handleLogin(data []byte) {
	ack, err := decodeAck(data)
	if err != nil {
		w.logEntry().WithError(err).Warn("Не удалось разобрать LOGIN ответ.")
		return
	}

	if ack.ReturnCode != 0 {
		w.logEntry().WithFields(logrus.Fields{
			"code": ack.ReturnCode,
			"msg":  ack.ReturnMsg,
		}).Error("Вход в WS отклонён.")
		_ = w.Disconnect()
		return
	}

	w.setState(StateLoggedIn)
	w.logEntry().Info("Вход в WS выполнен.")
}

// PING возвращается байт в байт: сервер рвёт сессию, если ответ
// отличается от отправленного.
func (w *Client) handlePing(data []byte) {
	if err := w.send(data); err != nil {
		w.logEntry().WithError(err).Warn("Не удалось ответить на PING.")
	}
}

func (w *Client) handleReal(data []byte, done chan struct{}) {
	items, err := decodeRealData(data)
	if err != nil {
		w.logEntry().WithError(err).Warn("Не удалось разобрать REAL кадр.")
		return
	}

	for _, raw := range items {
		rec, err := decodeRecord(raw)
		if err != nil {
			w.logEntry().WithError(err).Warn("Пропущена запись REAL.")
			continue
		}

		select {
		case w.records <- rec:
		case <-done:
			return
		}
	}
}

func (w *Client) handleRegAck(data []byte) {
	ack, err := decodeAck(data)
	if err != nil {
		w.logEntry().WithError(err).Warn("Не удалось разобрать REG ответ.")
		return
	}

	if ack.ReturnCode != 0 {
		w.logEntry().WithFields(logrus.Fields{
			"code": ack.ReturnCode,
			"msg":  ack.ReturnMsg,
		}).Warn("Подписка отклонена.")
		return
	}

	w.setState(StateActive)
	w.logEntry().WithField("msg", ack.ReturnMsg).Info("Подписка подтверждена.")
}

func (w *Client) handleSystem(data []byte) bool {
	sys, err := decodeSystem(data)
	if err != nil {
		w.logEntry().WithError(err).Warn("Не удалось разобрать SYSTEM кадр.")
		return false
	}

	w.logEntry().WithFields(logrus.Fields{
		"code": sys.Code,
		"msg":  sys.Message,
	}).Info("Системное сообщение WS.")

	if strings.Contains(sys.Code, fatalSystemCode) {
		w.logEntry().Error("Сервер требует завершить сессию, соединение закрывается.")
		return true
	}
	return false
}
