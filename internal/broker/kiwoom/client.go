package kiwoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kiwoombot/internal/broker"
	"kiwoombot/internal/logger"

	"github.com/sirupsen/logrus"
)

const (
	apiBalance      = "kt00001"
	apiHoldings     = "kt00004"
	apiCurrentPrice = "ka30012"
	apiBuyOrder     = "kt10000"
	apiSellOrder    = "kt10001"

	pathAccount = "/api/dostk/acnt"
	pathTrade   = "/api/dostk/trade"
	pathOrder   = "/api/dostk/ordr"
)

type Client struct {
	baseURL   string
	accountNo string
	tokens    broker.TokenProvider

	liquidationPause time.Duration

	httpClient *http.Client
	log        *logger.Logger
}

func New(baseURL, accountNo string, tokens broker.TokenProvider, liquidationPause time.Duration, log *logger.Logger) *Client {
	if liquidationPause <= 0 {
		liquidationPause = 500 * time.Millisecond
	}
	return &Client{
		baseURL:          baseURL,
		accountNo:        accountNo,
		tokens:           tokens,
		liquidationPause: liquidationPause,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

func (c *Client) logEntry() *logrus.Entry {
	return c.log.WithComponent("kiwoom_rest")
}

func (c *Client) doRequest(ctx context.Context, apiID, path string, body, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("Не удалось получить токен: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("Не удалось подготовить тело запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("Не удалось создать запрос: %w", err)
	}

	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("api-id", apiID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Ошибка запроса: %w", err)
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("Не удалось прочитать ответ: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Неуспешный статус %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("Не удалось разобрать ответ: %w", err)
	}

	var ret struct {
		ReturnCode int    `json:"return_code"`
		ReturnMsg  string `json:"return_msg"`
	}
	if err := json.Unmarshal(data, &ret); err == nil && ret.ReturnCode != 0 {
		return fmt.Errorf("Ошибка kiwoom: %s (code=%d)", ret.ReturnMsg, ret.ReturnCode)
	}

	return nil
}

func parseIntOrZero(value string) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
