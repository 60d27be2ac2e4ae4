package kiwoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"kiwoombot/internal/logger"
)

type TokenManager struct {
	baseURL    string
	appKey     string
	secret     string
	httpClient *http.Client
	log        *logger.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type tokenResponse struct {
	ReturnCode int    `json:"return_code"`
	ReturnMsg  string `json:"return_msg"`
	Token      string `json:"token"`
	ExpiresDt  string `json:"expires_dt"`
}

func NewTokenManager(baseURL, appKey, secret string, log *logger.Logger) *TokenManager {
	return &TokenManager{
		baseURL: baseURL,
		appKey:  appKey,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

func (t *TokenManager) AccessToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Before(t.expiresAt.Add(-5*time.Minute)) {
		return t.token, nil
	}

	return t.issueToken(ctx)
}

func (t *TokenManager) issueToken(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"grant_type": "client_credentials",
		"appkey":     t.appKey,
		"secretkey":  t.secret,
	})
	if err != nil {
		return "", fmt.Errorf("Не удалось подготовить тело запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/oauth2/token", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("Не удалось создать запрос: %w", err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Не удалось запросить токен: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("Не удалось прочитать ответ: %w", err)
	}

	var out tokenResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("Не удалось разобрать ответ: %w", err)
	}

	if out.ReturnCode != 0 {
		return "", fmt.Errorf("Токен не выдан: %s (code=%d)", out.ReturnMsg, out.ReturnCode)
	}
	if out.Token == "" {
		return "", fmt.Errorf("Пустой токен в ответе.")
	}

	t.token = out.Token
	t.expiresAt = parseExpiry(out.ExpiresDt)

	t.log.WithComponent("kiwoom_token").
		WithField("expires_at", t.expiresAt.Format("2006-01-02 15:04:05")).
		Info("Токен выдан.")

	return t.token, nil
}

func parseExpiry(expiresDt string) time.Time {
	if expiresDt == "" {
		return time.Now().Add(24 * time.Hour)
	}
	parsed, err := time.ParseInLocation("20060102150405", expiresDt, time.Local)
	if err != nil {
		return time.Now().Add(24 * time.Hour)
	}
	return parsed
}
