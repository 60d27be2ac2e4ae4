package kiwoom

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"kiwoombot/internal/models"

	"github.com/sirupsen/logrus"
)

func (c *Client) Buy(ctx context.Context, stockCode string, qty, price int64, orderType models.OrderType) (models.OrderResult, error) {
	result, err := c.placeOrder(ctx, apiBuyOrder, stockCode, qty, price, orderType)
	c.logOrder(models.OrderSideBuy, stockCode, qty, price, orderType, result, err)
	return result, err
}

func (c *Client) Sell(ctx context.Context, stockCode string, qty, price int64, orderType models.OrderType) (models.OrderResult, error) {
	result, err := c.placeOrder(ctx, apiSellOrder, stockCode, qty, price, orderType)
	c.logOrder(models.OrderSideSell, stockCode, qty, price, orderType, result, err)
	return result, err
}

func (c *Client) placeOrder(ctx context.Context, apiID, stockCode string, qty, price int64, orderType models.OrderType) (models.OrderResult, error) {
	body := map[string]string{
		"dmst_stex_tp": "KRX",
		"stk_cd":       stockCode,
		"ord_qty":      strconv.FormatInt(qty, 10),
		"trde_tp":      tradeType(orderType),
	}
	if orderType == models.OrderTypeLimit && price > 0 {
		body["ord_uv"] = strconv.FormatInt(price, 10)
	}

	var resp struct {
		OrdNo  string `json:"ord_no"`
		Output struct {
			OrdNo string `json:"ord_no"`
		} `json:"output"`
	}

	if err := c.doRequest(ctx, apiID, pathOrder, body, &resp); err != nil {
		return models.OrderResult{Error: err.Error()}, fmt.Errorf("Заявка не отправлена: %w", err)
	}

	orderNo := resp.Output.OrdNo
	if orderNo == "" {
		orderNo = resp.OrdNo
	}

	return models.OrderResult{Success: true, OrderNo: orderNo}, nil
}

func tradeType(orderType models.OrderType) string {
	if orderType == models.OrderTypeMarket {
		return "3"
	}
	return "0"
}

func (c *Client) logOrder(side models.OrderSide, stockCode string, qty, price int64, orderType models.OrderType, result models.OrderResult, err error) {
	entry := c.logEntry().WithFields(logrus.Fields{
		"side":       side,
		"stock_code": stockCode,
		"qty":        qty,
		"price":      price,
		"type":       orderType,
	})
	if err != nil {
		entry.WithError(err).Error("Заявка не отправлена.")
		return
	}
	entry.WithField("order_no", result.OrderNo).Info("Заявка отправлена.")
}

func (c *Client) LiquidateAll(ctx context.Context) ([]models.LiquidationResult, error) {
	positions, err := c.GetSellablePositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("Не удалось получить позиции для ликвидации: %w", err)
	}

	if len(positions) == 0 {
		c.logEntry().Info("Ликвидация: позиций нет.")
		return nil, nil
	}

	results := make([]models.LiquidationResult, 0, len(positions))
	for i, pos := range positions {
		result, err := c.Sell(ctx, pos.StockCode, pos.Quantity, pos.Price, models.OrderTypeLimit)

		item := models.LiquidationResult{
			StockCode: pos.StockCode,
			StockName: pos.StockName,
			Quantity:  pos.Quantity,
			Price:     pos.Price,
			OrderNo:   result.OrderNo,
			Success:   result.Success,
		}
		if err != nil {
			item.Error = err.Error()
		}
		results = append(results, item)

		if i < len(positions)-1 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(c.liquidationPause):
			}
		}
	}

	return results, nil
}
