// Package api - REST транспорт маркетплейса.
//
// Токен передается в каждый вызов явно: клиент не хранит сессию, ею владеет
// session.Store. Ошибки приводятся к таксономии пакета errs.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"marketplace/internal/app/client/metrics"
	"marketplace/internal/errs"
)

const userAgent = "Marketplace-Client/1.0"

type Client struct {
	client    *http.Client
	log       *slog.Logger
	metrics   *metrics.Metrics
	baseURL   string
	userAgent string
}

type Option func(*Client)

// WithHTTPClient подменяет http.Client (тесты, кастомный транспорт).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

func New(baseURL string, timeout time.Duration, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		log:       log,
		baseURL:   baseURL,
		userAgent: userAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// HealthCheck проверяет доступность сервера
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, "", nil, nil)
}

// do выполняет запрос и декодирует ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("Отправка запроса", "method", method, "url", req.URL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, 0)
		return errs.Network(err)
	}
	c.metrics.ObserveRequest(method, resp.StatusCode)

	return c.parseResponse(resp, out)
}

func (c *Client) parseResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Network(fmt.Errorf("ошибка чтения ответа: %w", err))
	}

	c.log.Debug("Получен ответ", "status", resp.StatusCode, "size", len(body))

	if resp.StatusCode >= http.StatusBadRequest {
		se := &errs.ServerError{Status: resp.StatusCode}
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			se.Message = errResp.Message
		}
		return se
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}

// IsAlreadyExists проверяет, что сервер отклонил создание дубликата.
// Часть эндпоинтов отвечает 400 с текстом вместо 409.
func IsAlreadyExists(err error) bool {
	if errors.Is(err, errs.ErrAlreadyExists) {
		return true
	}
	var se *errs.ServerError
	if errors.As(err, &se) {
		msg := strings.ToLower(se.Message)
		return strings.Contains(msg, "already exists") || strings.Contains(msg, "уже существует")
	}
	return false
}
