package router

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"kiwoombot/internal/broker"
	"kiwoombot/internal/logger"
	"kiwoombot/internal/models"
	"kiwoombot/internal/watchdog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func orderRecord(status string) broker.RealtimeRecord {
	return broker.RealtimeRecord{
		Type: broker.RecordTypeOrder,
		Name: "주문체결",
		Values: map[string]string{
			"9203": "0000012345",
			"9001": "005930",
			"302":  "삼성전자",
			"913":  status,
			"907":  "2",
			"900":  "10",
			"911":  "10",
			"910":  "71200",
			"902":  "0",
		},
	}
}

func balanceRecordRaw() broker.RealtimeRecord {
	raw := `{"type":"05","ord_psbl_cash":"500000","tot_evlu_amt":"1500000","stck_shrn_iscd":"005930","hldg_qty":"5","pchs_avg_pric":"71000"}`
	return broker.RealtimeRecord{
		Type: broker.RecordTypeBalance,
		Raw:  json.RawMessage(raw),
	}
}

func TestDecodeOrderEvent(t *testing.T) {
	evt := decodeOrderEvent(orderRecord("접수"))

	assert.Equal(t, "0000012345", evt.OrderID)
	assert.Equal(t, "005930", evt.StockCode)
	assert.Equal(t, "삼성전자", evt.StockName)
	assert.Equal(t, models.OrderSideBuy, evt.Side)
	assert.Equal(t, models.OrderStatusReceived, evt.Status)
	assert.Equal(t, int64(10), evt.OrderedQty)
	assert.Equal(t, int64(10), evt.ExecutedQty)
	assert.Equal(t, int64(71200), evt.ExecutedPrice)
	assert.Equal(t, int64(0), evt.RemainingQty)
	assert.False(t, evt.ReceivedAt.IsZero())

	rec := orderRecord("접수")
	rec.Values["907"] = "1"
	assert.Equal(t, models.OrderSideSell, decodeOrderEvent(rec).Side)
}

func TestDecodeOrderEventNumericTolerance(t *testing.T) {
	rec := orderRecord("접수")
	rec.Values["900"] = ""
	rec.Values["911"] = "  "
	rec.Values["910"] = "abc"
	delete(rec.Values, "902")

	evt := decodeOrderEvent(rec)

	assert.Equal(t, "0000012345", evt.OrderID)
	assert.Equal(t, int64(0), evt.OrderedQty)
	assert.Equal(t, int64(0), evt.ExecutedQty)
	assert.Equal(t, int64(0), evt.ExecutedPrice)
	assert.Equal(t, int64(0), evt.RemainingQty)
}

func TestStatusFromWire(t *testing.T) {
	cases := []struct {
		wire string
		want models.OrderStatus
	}{
		{"접수", models.OrderStatusReceived},
		{"주문", models.OrderStatusReceived},
		{"체결", models.OrderStatusFilled},
		{"확인", models.OrderStatusUnknown},
		{"", models.OrderStatusUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFromWire(tc.wire), "статус %q", tc.wire)
	}
}

func TestIntOrZero(t *testing.T) {
	assert.Equal(t, int64(42), intOrZero("42"))
	assert.Equal(t, int64(42), intOrZero(" 42 "))
	assert.Equal(t, int64(-15), intOrZero("-15"))
	assert.Equal(t, int64(79000), intOrZero("+79000"))
	assert.Equal(t, int64(0), intOrZero(""))
	assert.Equal(t, int64(0), intOrZero("   "))
	assert.Equal(t, int64(0), intOrZero("12.5"))
	assert.Equal(t, int64(0), intOrZero("abc"))
}

func TestDecodeBalanceEvent(t *testing.T) {
	evt, err := decodeBalanceEvent(balanceRecordRaw())
	require.NoError(t, err)

	assert.Equal(t, int64(500000), evt.AvailableCash)
	assert.Equal(t, int64(1500000), evt.TotalEvaluation)
	assert.Equal(t, "005930", evt.StockCode)
	assert.Equal(t, int64(5), evt.HoldingQty)
	assert.Equal(t, int64(71000), evt.AvgPrice)
	assert.NotEmpty(t, evt.Raw)
}

func TestDecodeBalanceEventEmptyFields(t *testing.T) {
	rec := broker.RealtimeRecord{
		Type: broker.RecordTypeBalance,
		Raw:  json.RawMessage(`{"type":"05","ord_psbl_cash":"","stck_shrn_iscd":"035720"}`),
	}

	evt, err := decodeBalanceEvent(rec)
	require.NoError(t, err)

	assert.Equal(t, int64(0), evt.AvailableCash)
	assert.Equal(t, int64(0), evt.HoldingQty)
	assert.Equal(t, "035720", evt.StockCode)
}

func TestRouteArmsWatchdogBeforeHandler(t *testing.T) {
	dog := watchdog.New(time.Minute, nil, testLogger())
	defer dog.Stop()

	r := New(dog, testLogger())
	r.OnOrder(func(models.OrderEvent) error { return errors.New("обработчик упал") })

	r.Route(orderRecord("접수"))

	assert.Equal(t, 1, dog.Pending(), "ошибка обработчика не должна мешать взводу таймера")
}

func TestRouteHandlerErrorDoesNotStopRouting(t *testing.T) {
	r := New(nil, testLogger())

	var mu sync.Mutex
	calls := 0
	r.OnOrder(func(models.OrderEvent) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return errors.New("обработчик упал")
	})

	r.Route(orderRecord("접수"))
	r.Route(orderRecord("체결"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestRouteFillNoticeTypeParsedAsOrder(t *testing.T) {
	r := New(nil, testLogger())

	var got models.OrderEvent
	r.OnOrder(func(evt models.OrderEvent) error {
		got = evt
		return nil
	})

	rec := orderRecord("체결")
	rec.Type = broker.RecordTypeFillNotice
	r.Route(rec)

	assert.Equal(t, "0000012345", got.OrderID)
	assert.Equal(t, models.OrderStatusFilled, got.Status)
}

func TestRouteBalance(t *testing.T) {
	r := New(nil, testLogger())

	var got models.BalanceEvent
	r.OnBalance(func(evt models.BalanceEvent) error {
		got = evt
		return nil
	})

	r.Route(balanceRecordRaw())

	assert.Equal(t, "005930", got.StockCode)
	assert.Equal(t, int64(500000), got.AvailableCash)
}

func TestRouteUnknownTypeSkipped(t *testing.T) {
	r := New(nil, testLogger())

	called := false
	r.OnOrder(func(models.OrderEvent) error { called = true; return nil })
	r.OnBalance(func(models.BalanceEvent) error { called = true; return nil })

	r.Route(broker.RealtimeRecord{Type: "99"})

	assert.False(t, called)
}

func TestRouteWithoutHandlers(t *testing.T) {
	r := New(nil, testLogger())

	r.Route(orderRecord("접수"))
	r.Route(balanceRecordRaw())
}

func TestRunDeliversFromChannel(t *testing.T) {
	r := New(nil, testLogger())

	got := make(chan models.OrderEvent, 1)
	r.OnOrder(func(evt models.OrderEvent) error {
		got <- evt
		return nil
	})

	records := make(chan broker.RealtimeRecord, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go r.Run(ctx, records)
	records <- orderRecord("접수")

	select {
	case evt := <-got:
		assert.Equal(t, "0000012345", evt.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("событие не дошло до обработчика")
	}
}

func TestScenarioFillBeforeTimeout(t *testing.T) {
	var mu sync.Mutex
	timeouts := 0
	dog := watchdog.New(80*time.Millisecond, func(models.TimeoutNotice) {
		mu.Lock()
		timeouts++
		mu.Unlock()
	}, testLogger())
	defer dog.Stop()

	r := New(dog, testLogger())

	handled := 0
	r.OnOrder(func(models.OrderEvent) error {
		handled++
		return nil
	})

	r.Route(orderRecord("접수"))
	time.Sleep(30 * time.Millisecond)
	r.Route(orderRecord("체결"))

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, timeouts)
	assert.Equal(t, 2, handled)
	assert.Equal(t, 0, dog.Pending())
}

func TestScenarioTimeoutWithoutFill(t *testing.T) {
	var mu sync.Mutex
	var notices []models.TimeoutNotice
	dog := watchdog.New(50*time.Millisecond, func(n models.TimeoutNotice) {
		mu.Lock()
		notices = append(notices, n)
		mu.Unlock()
	}, testLogger())
	defer dog.Stop()

	r := New(dog, testLogger())

	r.Route(orderRecord("접수"))
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, notices, 1)
	assert.Equal(t, "0000012345", notices[0].OrderID)
	assert.Equal(t, "005930", notices[0].StockCode)
	assert.Equal(t, 0, dog.Pending())
}
