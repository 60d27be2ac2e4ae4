package ws

import (
	"context"
	"fmt"

	"kiwoombot/internal/broker"
	"kiwoombot/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const wsPath = "/api/dostk/websocket"

func New(url, accountNo string, tokens broker.TokenProvider, log *logger.Logger) *Client {
	return &Client{
		url:       url,
		accountNo: accountNo,
		tokens:    tokens,
		log:       log,
		records:   make(chan broker.RealtimeRecord, 100),
		state:     StateDisconnected,
	}
}

func (w *Client) Connect(ctx context.Context) error {
	w.mu.Lock()
	if w.conn != nil {
		w.mu.Unlock()
		w.logEntry().Debug("WS уже подключен.")
		return nil
	}
	w.state = StateConnecting
	w.mu.Unlock()

	token, err := w.tokens.AccessToken(ctx)
	if err != nil {
		w.setState(StateDisconnected)
		return fmt.Errorf("Не удалось получить токен для входа: %w", err)
	}

	url := w.url + wsPath
	w.logEntry().WithField("url", url).Info("Подключение к WS.")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		w.setState(StateDisconnected)
		return fmt.Errorf("Не удалось подключиться к WS: %w", err)
	}

	conn.SetReadLimit(2 << 20)

	done := make(chan struct{})
	w.mu.Lock()
	w.conn = conn
	w.done = done
	w.mu.Unlock()

	go w.readLoop(conn, done)

	payload, err := encodeLogin(token)
	if err != nil {
		_ = w.Disconnect()
		return fmt.Errorf("Не удалось подготовить LOGIN кадр: %w", err)
	}
	if err := w.send(payload); err != nil {
		_ = w.Disconnect()
		return fmt.Errorf("Не удалось отправить LOGIN: %w", err)
	}

	w.logEntry().Info("WS соединение установлено, LOGIN отправлен.")
	return nil
}

func (w *Client) Disconnect() error {
	w.mu.Lock()
	if w.conn == nil {
		w.state = StateDisconnected
		w.mu.Unlock()
		return nil
	}
	w.state = StateClosing
	conn := w.conn
	done := w.done
	w.conn = nil
	w.done = nil
	w.mu.Unlock()

	close(done)
	err := conn.Close()
	w.setState(StateDisconnected)
	w.logEntry().Info("WS соединение закрыто.")
	if err != nil {
		return fmt.Errorf("Ошибка закрытия WS: %w", err)
	}
	return nil
}

func (w *Client) Records() <-chan broker.RealtimeRecord {
	return w.records
}

func (w *Client) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn != nil
}

func (w *Client) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Client) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

func (w *Client) send(payload []byte) error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("WS не подключен.")
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// teardown освобождает соединение, пока им владеет цикл чтения. После
// того как Disconnect уже подменил соединение, это no-op.
func (w *Client) teardown(conn *websocket.Conn) {
	w.mu.Lock()
	if w.conn == conn {
		w.conn = nil
		w.done = nil
		w.state = StateDisconnected
	}
	w.mu.Unlock()
	_ = conn.Close()
}

func (w *Client) logEntry() *logrus.Entry {
	return w.log.WithComponent("kiwoom_ws")
}
