package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kiwoombot/internal/logger"
	"kiwoombot/internal/models"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02 15:04:05"

func nowString() string {
	return time.Now().Format(timeLayout)
}

type Journal struct {
	db  *sql.DB
	log *logger.Logger
}

func Open(path string, log *logger.Logger) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("Не удалось создать каталог журнала: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("Не удалось открыть журнал: %w", err)
	}

	j := &Journal{db: db, log: log}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("Не удалось подготовить таблицы журнала: %w", err)
	}

	j.log.WithComponent("journal").WithField("path", path).Info("Журнал открыт.")
	return j, nil
}

func (j *Journal) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS trade_order (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_no TEXT NOT NULL,
			stock_code TEXT NOT NULL,
			stock_name TEXT NOT NULL,
			side TEXT NOT NULL,
			status TEXT NOT NULL,
			order_qty INTEGER NOT NULL,
			exec_qty INTEGER NOT NULL,
			exec_price INTEGER NOT NULL,
			remain_qty INTEGER NOT NULL,
			received_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS balance_event (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stock_code TEXT NOT NULL,
			holding_qty INTEGER NOT NULL,
			avg_price INTEGER NOT NULL,
			available_cash INTEGER NOT NULL,
			total_evaluation INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS account_balance (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			available_cash INTEGER NOT NULL,
			total_balance INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS trade_send_order (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stock_code TEXT NOT NULL,
			stock_name TEXT NOT NULL,
			side TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price INTEGER NOT NULL,
			order_no TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := j.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) SaveOrderEvent(ctx context.Context, evt models.OrderEvent) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO trade_order (order_no, stock_code, stock_name, side, status, order_qty, exec_qty, exec_price, remain_qty, received_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.OrderID, evt.StockCode, evt.StockName, string(evt.Side), string(evt.Status),
		evt.OrderedQty, evt.ExecutedQty, evt.ExecutedPrice, evt.RemainingQty,
		evt.ReceivedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("Не удалось записать событие заявки: %w", err)
	}
	return nil
}

func (j *Journal) SaveBalanceEvent(ctx context.Context, evt models.BalanceEvent) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO balance_event (stock_code, holding_qty, avg_price, available_cash, total_evaluation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		evt.StockCode, evt.HoldingQty, evt.AvgPrice, evt.AvailableCash, evt.TotalEvaluation,
		evt.Timestamp.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("Не удалось записать событие баланса: %w", err)
	}
	return nil
}

func (j *Journal) SaveAccount(ctx context.Context, acc models.AccountBalance) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO account_balance (id, available_cash, total_balance, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			available_cash = excluded.available_cash,
			total_balance = excluded.total_balance,
			updated_at = excluded.updated_at`,
		acc.AvailableCash, acc.TotalBalance, nowString(),
	)
	if err != nil {
		return fmt.Errorf("Не удалось записать состояние счёта: %w", err)
	}
	return nil
}

func (j *Journal) SaveSentOrder(ctx context.Context, ord models.SentOrder) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO trade_send_order (stock_code, stock_name, side, quantity, price, order_no, success, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ord.StockCode, ord.StockName, string(ord.Side), ord.Quantity, ord.Price,
		ord.OrderNo, ord.Success, ord.Error, ord.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("Не удалось записать отправленную заявку: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}
