package engine

import (
	"sync"
	"time"

	"kiwoombot/internal/models"
)

type accountState struct {
	mu        sync.Mutex
	balance   models.AccountBalance
	positions map[string]models.Position
	updated   time.Time
}

func newAccountState() *accountState {
	return &accountState{positions: make(map[string]models.Position)}
}

func (a *accountState) Update(b models.AccountBalance) {
	a.mu.Lock()
	a.balance = b
	a.updated = time.Now()
	a.mu.Unlock()
}

// ApplyBalance обновляет снимок счёта по событию из потока данных.
// Нулевой остаток убирает позицию из снимка.
func (a *accountState) ApplyBalance(evt models.BalanceEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if evt.AvailableCash > 0 {
		a.balance.AvailableCash = evt.AvailableCash
	}

	if evt.StockCode != "" {
		if evt.HoldingQty > 0 {
			a.positions[evt.StockCode] = models.Position{
				StockCode: evt.StockCode,
				Quantity:  evt.HoldingQty,
				Price:     evt.AvgPrice,
			}
		} else {
			delete(a.positions, evt.StockCode)
		}
	}

	a.updated = time.Now()
}

func (a *accountState) Snapshot() models.AccountBalance {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func (a *accountState) Positions() map[string]models.Position {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]models.Position, len(a.positions))
	for code, pos := range a.positions {
		out[code] = pos
	}
	return out
}
