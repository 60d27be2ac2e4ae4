package ws

import (
	"sync"

	"kiwoombot/internal/broker"
	"kiwoombot/internal/logger"

	"github.com/gorilla/websocket"
)

type State string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateLoggedIn     State = "LOGGED_IN"
	StateActive       State = "ACTIVE"
	StateClosing      State = "CLOSING"
)

type Client struct {
	url       string
	accountNo string
	tokens    broker.TokenProvider
	log       *logger.Logger

	records chan broker.RealtimeRecord

	mu      sync.Mutex
	writeMu sync.Mutex
	conn    *websocket.Conn
	done    chan struct{}
	state   State
}
