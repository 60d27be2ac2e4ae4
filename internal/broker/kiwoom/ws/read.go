package ws

import (
	"github.com/gorilla/websocket"
)

func (w *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	w.logEntry().Debug("Цикл чтения WS запущен.")
	defer w.teardown(conn)

	for {
		select {
		case <-done:
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
			default:
				w.logEntry().WithError(err).Warn("Ошибка чтения WS.")
			}
			return
		}

		kind, err := frameKind(data)
		if err != nil {
			w.logEntry().WithError(err).Warn("Не удалось разобрать WS кадр.")
			continue
		}

		switch kind {
		case frameLogin:
			w.handleLogin(data)
		case framePing:
			w.handlePing(data)
		case frameReal:
			w.handleReal(data, done)
		case frameReg:
			w.handleRegAck(data)
		case frameSystem:
			if w.handleSystem(data) {
				return
			}
		default:
			w.logEntry().WithField("trnm", kind).Debug("Неизвестный тип кадра.")
		}
	}
}
