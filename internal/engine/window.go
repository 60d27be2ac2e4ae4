package engine

import (
	"time"

	"kiwoombot/internal/config"
)

type TradingWindow struct {
	startHour   int
	startMinute int
	endHour     int
	endMinute   int
}

func NewTradingWindow(cfg config.SessionConfig) TradingWindow {
	return TradingWindow{
		startHour:   cfg.StartHour,
		startMinute: cfg.StartMinute,
		endHour:     cfg.EndHour,
		endMinute:   cfg.EndMinute,
	}
}

// Contains сравнивает с точностью до секунды, обе границы входят в окно.
func (w TradingWindow) Contains(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	sec := t.Hour()*3600 + t.Minute()*60 + t.Second()
	start := w.startHour*3600 + w.startMinute*60
	end := w.endHour*3600 + w.endMinute*60
	return sec >= start && sec <= end
}

// NextOpen возвращает ближайшее время открытия, выходные не пропускаются.
func (w TradingWindow) NextOpen(t time.Time) time.Time {
	open := time.Date(t.Year(), t.Month(), t.Day(), w.startHour, w.startMinute, 0, 0, t.Location())
	if !t.Before(open) {
		open = open.AddDate(0, 0, 1)
	}
	return open
}

func (w TradingWindow) UntilOpen(t time.Time) time.Duration {
	return w.NextOpen(t).Sub(t)
}
