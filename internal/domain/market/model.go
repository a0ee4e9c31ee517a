// Package market описывает модели REST API маркетплейса, которые кэширует клиент.
package market

import "time"

// User - идентичность пользователя в сессии.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

// IsModerator проверяет, может ли пользователь модерировать объявления.
func (u User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductOutdated ProductStatus = "outdated"
	ProductPending  ProductStatus = "pending"
	ProductRejected ProductStatus = "rejected"
	ProductDeleted  ProductStatus = "deleted"
)

// Product - объявление.
type Product struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Price       float64       `json:"price"`
	Currency    string        `json:"currency,omitempty"`
	CategoryID  string        `json:"categoryId,omitempty"`
	City        string        `json:"city,omitempty"`
	Images      []string      `json:"images,omitempty"`
	Status      ProductStatus `json:"status"`
	CreatorID   string        `json:"creatorId"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Favorite - объявление в избранном.
type Favorite struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Balance - баланс кошелька пользователя.
type Balance struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

// BlockedUser - пользователь в черном списке.
type BlockedUser struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name,omitempty"`
	BlockedAt time.Time `json:"blockedAt"`
}

// Chat - диалог покупателя и продавца по объявлению.
type Chat struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	Participants []string  `json:"participants"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
	UnreadCount  int       `json:"unreadCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasParticipant проверяет, участвует ли пользователь в чате.
func (c Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message - сообщение в чате.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Pagination - метаданные постраничной выдачи.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// HasNext сообщает, есть ли следующая страница.
func (p Pagination) HasNext() bool {
	return p.Page < p.Pages
}

// Page - страница коллекции. Pagination == nil для непостраничных ресурсов.
type Page[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination,omitempty"`
}
