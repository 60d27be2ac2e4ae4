package watchdog

import (
	"sync"
	"time"

	"kiwoombot/internal/logger"
	"kiwoombot/internal/models"

	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 5 * time.Minute

type orderTimer struct {
	timer  *time.Timer
	notice models.TimeoutNotice
}

type Watchdog struct {
	timeout   time.Duration
	onTimeout func(models.TimeoutNotice)
	log       *logger.Logger

	mu     sync.Mutex
	timers map[string]*orderTimer
}

func New(timeout time.Duration, onTimeout func(models.TimeoutNotice), log *logger.Logger) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Watchdog{
		timeout:   timeout,
		onTimeout: onTimeout,
		log:       log,
		timers:    make(map[string]*orderTimer),
	}
}

func (d *Watchdog) Observe(evt models.OrderEvent) {
	if evt.OrderID == "" {
		return
	}

	switch evt.Status {
	case models.OrderStatusReceived:
		d.arm(evt)
	case models.OrderStatusFilled:
		d.cancel(evt.OrderID)
	default:
		// Неизвестный статус таймер не трогает.
	}
}

func (d *Watchdog) arm(evt models.OrderEvent) {
	notice := models.TimeoutNotice{
		OrderID:   evt.OrderID,
		StockCode: evt.StockCode,
		StockName: evt.StockName,
		Side:      evt.Side,
		ArmedAt:   time.Now(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.timers[evt.OrderID]; ok {
		old.timer.Stop()
	}

	entry := &orderTimer{notice: notice}
	entry.timer = time.AfterFunc(d.timeout, func() {
		d.fire(evt.OrderID, entry)
	})
	d.timers[evt.OrderID] = entry

	d.logEntry(evt.OrderID).WithField("stock_code", evt.StockCode).Debug("Таймер заявки взведён.")
}

func (d *Watchdog) cancel(orderID string) {
	d.mu.Lock()
	entry, ok := d.timers[orderID]
	if ok {
		entry.timer.Stop()
		delete(d.timers, orderID)
	}
	d.mu.Unlock()

	if ok {
		d.logEntry(orderID).Debug("Таймер заявки снят: заявка исполнена.")
	}
}

// fire вызывается из time.AfterFunc. Проверка идентичности записи не даёт
// таймеру, отменённому или заменённому после срабатывания, сообщить об
// устаревшей заявке.
func (d *Watchdog) fire(orderID string, entry *orderTimer) {
	d.mu.Lock()
	current, ok := d.timers[orderID]
	if !ok || current != entry {
		d.mu.Unlock()
		return
	}
	delete(d.timers, orderID)
	d.mu.Unlock()

	d.logEntry(orderID).WithFields(logrus.Fields{
		"stock_code": entry.notice.StockCode,
		"side":       entry.notice.Side,
	}).Warn("Заявка не исполнена за отведённое время.")

	if d.onTimeout != nil {
		d.onTimeout(entry.notice)
	}
}

func (d *Watchdog) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

func (d *Watchdog) Stop() {
	d.mu.Lock()
	for id, entry := range d.timers {
		entry.timer.Stop()
		delete(d.timers, id)
	}
	d.mu.Unlock()
}

func (d *Watchdog) logEntry(orderID string) *logrus.Entry {
	return d.log.WithComponent("watchdog").WithField("order_id", orderID)
}
