package api

import (
	"context"
	"net/http"
	"net/url"

	"marketplace/internal/domain/market"
)

func (c *Client) Login(ctx context.Context, req market.LoginRequest) (market.AuthResponse, error) {
	var resp market.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, "", req, &resp)
	return resp, err
}

func (c *Client) Register(ctx context.Context, req market.RegisterRequest) (market.AuthResponse, error) {
	var resp market.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, "", req, &resp)
	return resp, err
}

// Me возвращает профиль владельца токена
func (c *Client) Me(ctx context.Context, token string) (market.User, error) {
	var u market.User
	err := c.do(ctx, http.MethodGet, "/api/users/me", nil, token, nil, &u)
	return u, err
}

// Избранное

func (c *Client) Favorites(ctx context.Context, token string) ([]market.Favorite, error) {
	var items []market.Favorite
	err := c.do(ctx, http.MethodGet, "/api/favorites", nil, token, nil, &items)
	return items, err
}

func (c *Client) AddFavorite(ctx context.Context, token, productID string) (market.Favorite, error) {
	var f market.Favorite
	err := c.do(ctx, http.MethodPost, "/api/favorites", nil, token, market.AddFavoriteRequest{ProductID: productID}, &f)
	return f, err
}

func (c *Client) RemoveFavorite(ctx context.Context, token, productID string) error {
	return c.do(ctx, http.MethodDelete, "/api/favorites/"+url.PathEscape(productID), nil, token, nil, nil)
}

// Баланс

func (c *Client) Balance(ctx context.Context, token string) (market.Balance, error) {
	var b market.Balance
	err := c.do(ctx, http.MethodGet, "/api/balance", nil, token, nil, &b)
	return b, err
}

func (c *Client) RequestRefund(ctx context.Context, token string, req market.RefundRequest) (market.RefundResponse, error) {
	var r market.RefundResponse
	err := c.do(ctx, http.MethodPost, "/api/balance/refund", nil, token, req, &r)
	return r, err
}

// Черный список

func (c *Client) BlockedUsers(ctx context.Context, token string) ([]market.BlockedUser, error) {
	var items []market.BlockedUser
	err := c.do(ctx, http.MethodGet, "/api/users/blocked", nil, token, nil, &items)
	return items, err
}

func (c *Client) BlockUser(ctx context.Context, token, userID string) (market.BlockedUser, error) {
	var b market.BlockedUser
	err := c.do(ctx, http.MethodPost, "/api/users/blocked", nil, token, market.BlockUserRequest{UserID: userID}, &b)
	return b, err
}

func (c *Client) UnblockUser(ctx context.Context, token, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/blocked/"+url.PathEscape(userID), nil, token, nil, nil)
}

// Чаты

func (c *Client) Chats(ctx context.Context, token string) ([]market.Chat, error) {
	var items []market.Chat
	err := c.do(ctx, http.MethodGet, "/api/chats", nil, token, nil, &items)
	return items, err
}

func (c *Client) CreateChat(ctx context.Context, token string, req market.CreateChatRequest) (market.Chat, error) {
	var chat market.Chat
	err := c.do(ctx, http.MethodPost, "/api/chats", nil, token, req, &chat)
	return chat, err
}

func (c *Client) Messages(ctx context.Context, token, chatID string, q market.PageQuery) (market.Page[market.Message], error) {
	var page market.Page[market.Message]
	err := c.do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(chatID)+"/messages", q.Values(), token, nil, &page)
	return page, err
}

func (c *Client) SendMessage(ctx context.Context, token, chatID, text string) (market.Message, error) {
	var msg market.Message
	err := c.do(ctx, http.MethodPost, "/api/chats/"+url.PathEscape(chatID)+"/messages", nil, token,
		market.SendMessageRequest{Text: text}, &msg)
	return msg, err
}

// Объявления

// SearchProducts - публичный поиск, токен не нужен.
func (c *Client) SearchProducts(ctx context.Context, q market.PageQuery) (market.Page[market.Product], error) {
	var page market.Page[market.Product]
	err := c.do(ctx, http.MethodGet, "/api/products", q.Values(), "", nil, &page)
	return page, err
}

func (c *Client) MyProducts(ctx context.Context, token string, q market.PageQuery) (market.Page[market.Product], error) {
	var page market.Page[market.Product]
	err := c.do(ctx, http.MethodGet, "/api/products/my", q.Values(), token, nil, &page)
	return page, err
}

func (c *Client) PendingProducts(ctx context.Context, token string, q market.PageQuery) (market.Page[market.Product], error) {
	var page market.Page[market.Product]
	err := c.do(ctx, http.MethodGet, "/api/admin/products/pending", q.Values(), token, nil, &page)
	return page, err
}

// DeleteProduct удаляет объявление владельца. creatorID передается серверу
// для проверки владения.
func (c *Client) DeleteProduct(ctx context.Context, token, id, creatorID string) error {
	q := url.Values{"creatorId": {creatorID}}
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), q, token, nil, nil)
}

func (c *Client) MarkProductOutdated(ctx context.Context, token, id, creatorID string) (market.Product, error) {
	var p market.Product
	q := url.Values{"creatorId": {creatorID}}
	err := c.do(ctx, http.MethodPost, "/api/products/"+url.PathEscape(id)+"/outdated", q, token, nil, &p)
	return p, err
}

func (c *Client) RestoreProduct(ctx context.Context, token, id, creatorID string) (market.Product, error) {
	var p market.Product
	q := url.Values{"creatorId": {creatorID}}
	err := c.do(ctx, http.MethodPost, "/api/products/"+url.PathEscape(id)+"/restore", q, token, nil, &p)
	return p, err
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, req market.UpdateProductRequest) (market.Product, error) {
	var p market.Product
	err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), nil, token, req, &p)
	return p, err
}

func (c *Client) ApproveProduct(ctx context.Context, token, id string) (market.Product, error) {
	var p market.Product
	err := c.do(ctx, http.MethodPost, "/api/admin/products/"+url.PathEscape(id)+"/approve", nil, token, nil, &p)
	return p, err
}

func (c *Client) RejectProduct(ctx context.Context, token, id string, req market.RejectRequest) (market.Product, error) {
	var p market.Product
	err := c.do(ctx, http.MethodPost, "/api/admin/products/"+url.PathEscape(id)+"/reject", nil, token, req, &p)
	return p, err
}

// Верификация

func (c *Client) SubmitVerification(ctx context.Context, token string, req market.VerificationRequest) (market.VerificationResponse, error) {
	var r market.VerificationResponse
	err := c.do(ctx, http.MethodPost, "/api/verification", nil, token, req, &r)
	return r, err
}
