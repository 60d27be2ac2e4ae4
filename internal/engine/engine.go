package engine

import (
	"context"
	"sync"
	"time"

	"kiwoombot/internal/broker"
	"kiwoombot/internal/config"
	"kiwoombot/internal/logger"
	"kiwoombot/internal/models"
	"kiwoombot/internal/router"
	"kiwoombot/internal/watchdog"
)

type Sink interface {
	SaveOrderEvent(ctx context.Context, evt models.OrderEvent) error
	SaveBalanceEvent(ctx context.Context, evt models.BalanceEvent) error
	SaveAccount(ctx context.Context, acc models.AccountBalance) error
	SaveSentOrder(ctx context.Context, ord models.SentOrder) error
}

type Trader interface {
	Run(ctx context.Context) error
	OnOrderExecution(evt models.OrderEvent)
}

type Engine struct {
	cfg    *config.Config
	client broker.Client
	feed   broker.Feed
	sink   Sink
	trader Trader
	log    *logger.Logger

	watchdog *watchdog.Watchdog
	router   *router.Router
	window   TradingWindow
	account  *accountState

	sessionID string
	now       func() time.Time
	loginWait time.Duration

	mu         sync.Mutex
	active     bool
	traderStop context.CancelFunc
	traderDone chan struct{}
}

func New(cfg *config.Config, client broker.Client, feed broker.Feed, sink Sink, trader Trader, log *logger.Logger) *Engine {
	e := &Engine{
		cfg:       cfg,
		client:    client,
		feed:      feed,
		sink:      sink,
		trader:    trader,
		log:       log,
		window:    NewTradingWindow(cfg.Session),
		account:   newAccountState(),
		sessionID: newSessionID(),
		now:       time.Now,
		loginWait: 2 * time.Second,
	}

	e.watchdog = watchdog.New(cfg.Bot.OrderTimeout, e.onOrderTimeout, log)
	e.router = router.New(e.watchdog, log)
	e.router.OnOrder(e.onOrderEvent)
	e.router.OnBalance(e.onBalanceEvent)
	return e
}

func (e *Engine) Start(ctx context.Context) error {
	e.logEntry().WithField("poll_interval", e.cfg.Session.PollInterval.String()).Info("Планировщик сессий запущен.")

	go e.router.Run(ctx, e.feed.Records())

	defer e.shutdown()

	now := e.now()
	if !e.window.Contains(now) {
		e.logEntry().Info("Сейчас вне торгового времени, ждём открытия.")
		e.logUntilOpen(now)
	}
	e.evaluate(ctx)

	ticker := time.NewTicker(e.cfg.Session.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.evaluate(ctx)
		}
	}
}

// shutdown выполняется один раз при выходе из Start. Родительский контекст
// здесь уже отменён, ликвидация получает свежий.
func (e *Engine) shutdown() {
	e.logEntry().Info("Остановка движка.")
	e.stopTrading(context.Background())
	if err := e.feed.Disconnect(); err != nil {
		e.logEntry().WithError(err).Warn("Ошибка при закрытии WS.")
	}
	e.watchdog.Stop()
	e.logEntry().Info("Движок остановлен.")
}

func (e *Engine) Account() models.AccountBalance {
	return e.account.Snapshot()
}

func (e *Engine) Positions() map[string]models.Position {
	return e.account.Positions()
}

func (e *Engine) IsTradingActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}
