package kiwoom

import (
	"context"
	"fmt"
	"strings"

	"kiwoombot/internal/models"
)

func (c *Client) GetAccountBalance(ctx context.Context) (models.AccountBalance, error) {
	var resp struct {
		Entr       string `json:"entr"`
		TotEvluAmt string `json:"tot_evlu_amt"`
	}

	body := map[string]string{
		"qry_tp": "3",
	}
	if err := c.doRequest(ctx, apiBalance, pathAccount, body, &resp); err != nil {
		return models.AccountBalance{}, err
	}

	balance := models.AccountBalance{
		AvailableCash: parseIntOrZero(resp.Entr),
		TotalBalance:  parseIntOrZero(resp.TotEvluAmt),
	}

	c.logEntry().WithField("available_cash", balance.AvailableCash).Info("Баланс счёта получен.")

	return balance, nil
}

func (c *Client) GetHoldings(ctx context.Context) ([]models.Position, error) {
	var resp struct {
		StkAcntEvltPrst []struct {
			StkCd   string `json:"stk_cd"`
			StkNm   string `json:"stk_nm"`
			RmndQty string `json:"rmnd_qty"`
			CurPrc  string `json:"cur_prc"`
		} `json:"stk_acnt_evlt_prst"`
	}

	body := map[string]string{
		"qry_tp":       "0",
		"dmst_stex_tp": "KRX",
	}
	if err := c.doRequest(ctx, apiHoldings, pathAccount, body, &resp); err != nil {
		return nil, err
	}

	positions := make([]models.Position, 0, len(resp.StkAcntEvltPrst))
	for _, item := range resp.StkAcntEvltPrst {
		positions = append(positions, models.Position{
			StockCode: strings.TrimLeft(item.StkCd, "AJQK"),
			StockName: item.StkNm,
			Quantity:  parseIntOrZero(item.RmndQty),
			Price:     parseIntOrZero(item.CurPrc),
		})
	}

	return positions, nil
}

func (c *Client) GetSellablePositions(ctx context.Context) ([]models.Position, error) {
	holdings, err := c.GetHoldings(ctx)
	if err != nil {
		return nil, err
	}

	sellable := make([]models.Position, 0, len(holdings))
	for _, pos := range holdings {
		if pos.Quantity > 0 && pos.Price > 0 {
			sellable = append(sellable, pos)
		}
	}

	c.logEntry().WithField("count", len(sellable)).Info("Получен список позиций к продаже.")

	return sellable, nil
}

func (c *Client) GetCurrentPrice(ctx context.Context, stockCode string) (int64, error) {
	var resp struct {
		CurPrc string `json:"cur_prc"`
	}

	body := map[string]string{
		"stk_cd": stockCode,
	}
	if err := c.doRequest(ctx, apiCurrentPrice, pathTrade, body, &resp); err != nil {
		return 0, err
	}

	price := parseIntOrZero(resp.CurPrc)
	if price < 0 {
		price = -price
	}
	if price == 0 {
		return 0, fmt.Errorf("Нулевая цена по %s: рынок закрыт или бумага не торгуется.", stockCode)
	}

	return price, nil
}
