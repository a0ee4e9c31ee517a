package market

import (
	"net/url"
	"strconv"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// AuthResponse - ответ на вход и регистрацию.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type AddFavoriteRequest struct {
	ProductID string `json:"productId"`
}

type RefundRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// RefundResponse - заявка на возврат средств.
type RefundResponse struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type UpdateProductRequest struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	City        string   `json:"city,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// VerificationRequest - заявка на верификацию продавца.
type VerificationRequest struct {
	FullName       string   `json:"fullName"`
	DocumentNumber string   `json:"documentNumber"`
	Documents      []string `json:"documents"`
}

type VerificationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CreateChatRequest struct {
	ParticipantID string `json:"participantId"`
	ProductID     string `json:"productId"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type BlockUserRequest struct {
	UserID string `json:"userId"`
}

// PageQuery - параметры запроса страницы.
type PageQuery struct {
	Page   int
	Limit  int
	Search string
}

// Values кодирует параметры в query string.
func (q PageQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	return v
}
