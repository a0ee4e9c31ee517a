package action

import (
	"context"
	"strings"

	"marketplace/internal/domain/market"
	"marketplace/internal/errs"
)

// API - эндпоинты, которые вызывают действия. Реализуется api.Client.
type API interface {
	DeleteProduct(ctx context.Context, token, id, creatorID string) error
	MarkProductOutdated(ctx context.Context, token, id, creatorID string) (market.Product, error)
	RestoreProduct(ctx context.Context, token, id, creatorID string) (market.Product, error)
	UpdateProduct(ctx context.Context, token, id string, req market.UpdateProductRequest) (market.Product, error)
	ApproveProduct(ctx context.Context, token, id string) (market.Product, error)
	RejectProduct(ctx context.Context, token, id string, req market.RejectRequest) (market.Product, error)
	RequestRefund(ctx context.Context, token string, req market.RefundRequest) (market.RefundResponse, error)
	SubmitVerification(ctx context.Context, token string, req market.VerificationRequest) (market.VerificationResponse, error)
}

// Listings - действия над объявлениями.
type Listings struct {
	Delete       *Action[struct{}, struct{}]
	MarkOutdated *Action[struct{}, market.Product]
	Restore      *Action[struct{}, market.Product]
	Update       *Action[market.UpdateProductRequest, market.Product]
	Approve      *Action[struct{}, market.Product]
	Reject       *Action[market.RejectRequest, market.Product]
}

// Account - действия над аккаунтом.
type Account struct {
	Refund *Action[market.RefundRequest, market.RefundResponse]
	Verify *Action[market.VerificationRequest, market.VerificationResponse]
}

func requireID[P any](id string, _ P) error {
	if strings.TrimSpace(id) == "" {
		return errs.Validation("не указано объявление")
	}
	return nil
}

// NewListings собирает действия над объявлениями. own обновляет список своих
// объявлений, pending - очередь модерации.
func NewListings(s Session, deps Deps, api API, own, pending Refresher) *Listings {
	return &Listings{
		Delete: New(s, deps, Definition[struct{}, struct{}]{
			Name:           "delete_listing",
			RequireCreator: true,
			Validate:       requireID[struct{}],
			Call: func(ctx context.Context, r Request[struct{}]) (struct{}, error) {
				return struct{}{}, api.DeleteProduct(ctx, r.Token, r.ID, r.CreatorID)
			},
			Success: "Объявление удалено",
			Failure: "Не удалось удалить объявление",
			Refresh: refreshers(own),
		}),
		MarkOutdated: New(s, deps, Definition[struct{}, market.Product]{
			Name:           "mark_outdated",
			RequireCreator: true,
			Validate:       requireID[struct{}],
			Call: func(ctx context.Context, r Request[struct{}]) (market.Product, error) {
				return api.MarkProductOutdated(ctx, r.Token, r.ID, r.CreatorID)
			},
			Success: "Объявление снято с публикации",
			Failure: "Не удалось снять объявление",
			Refresh: refreshers(own),
		}),
		Restore: New(s, deps, Definition[struct{}, market.Product]{
			Name:           "restore_listing",
			RequireCreator: true,
			Validate:       requireID[struct{}],
			Call: func(ctx context.Context, r Request[struct{}]) (market.Product, error) {
				return api.RestoreProduct(ctx, r.Token, r.ID, r.CreatorID)
			},
			Success: "Объявление восстановлено",
			Failure: "Не удалось восстановить объявление",
			Refresh: refreshers(own),
		}),
		Update: New(s, deps, Definition[market.UpdateProductRequest, market.Product]{
			Name:           "update_listing",
			RequireCreator: true,
			Validate:       validateUpdate,
			Call: func(ctx context.Context, r Request[market.UpdateProductRequest]) (market.Product, error) {
				return api.UpdateProduct(ctx, r.Token, r.ID, r.Payload)
			},
			Success: "Объявление обновлено",
			Failure: "Не удалось обновить объявление",
			Refresh: refreshers(own),
		}),
		Approve: New(s, deps, Definition[struct{}, market.Product]{
			Name:     "approve_listing",
			Validate: requireID[struct{}],
			Call: func(ctx context.Context, r Request[struct{}]) (market.Product, error) {
				return api.ApproveProduct(ctx, r.Token, r.ID)
			},
			Success: "Объявление одобрено",
			Failure: "Не удалось одобрить объявление",
			Refresh: refreshers(pending),
		}),
		Reject: New(s, deps, Definition[market.RejectRequest, market.Product]{
			Name: "reject_listing",
			Validate: func(id string, p market.RejectRequest) error {
				if err := requireID(id, p); err != nil {
					return err
				}
				if strings.TrimSpace(p.Reason) == "" {
					return errs.Validation("укажите причину отклонения")
				}
				return nil
			},
			Call: func(ctx context.Context, r Request[market.RejectRequest]) (market.Product, error) {
				return api.RejectProduct(ctx, r.Token, r.ID, r.Payload)
			},
			Success: "Объявление отклонено",
			Failure: "Не удалось отклонить объявление",
			Refresh: refreshers(pending),
		}),
	}
}

func validateUpdate(id string, p market.UpdateProductRequest) error {
	if err := requireID(id, p); err != nil {
		return err
	}
	if p.Title == "" && p.Description == "" && p.Price == nil && p.City == "" && len(p.Images) == 0 {
		return errs.Validation("нет изменений")
	}
	if p.Price != nil && *p.Price < 0 {
		return errs.Validation("цена не может быть отрицательной")
	}
	return nil
}

// NewAccount собирает действия над аккаунтом. balance обновляет баланс после
// запроса на возврат.
func NewAccount(s Session, deps Deps, api API, balance Refresher) *Account {
	return &Account{
		Refund: New(s, deps, Definition[market.RefundRequest, market.RefundResponse]{
			Name: "request_refund",
			Validate: func(_ string, p market.RefundRequest) error {
				if p.Amount <= 0 {
					return errs.Validation("сумма должна быть больше нуля")
				}
				return nil
			},
			Call: func(ctx context.Context, r Request[market.RefundRequest]) (market.RefundResponse, error) {
				return api.RequestRefund(ctx, r.Token, r.Payload)
			},
			Success: "Запрос на возврат отправлен",
			Failure: "Не удалось отправить запрос на возврат",
			Refresh: refreshers(balance),
		}),
		Verify: New(s, deps, Definition[market.VerificationRequest, market.VerificationResponse]{
			Name: "submit_verification",
			Validate: func(_ string, p market.VerificationRequest) error {
				if strings.TrimSpace(p.FullName) == "" || strings.TrimSpace(p.DocumentNumber) == "" {
					return errs.Validation("заполните ФИО и номер документа")
				}
				return nil
			},
			Call: func(ctx context.Context, r Request[market.VerificationRequest]) (market.VerificationResponse, error) {
				return api.SubmitVerification(ctx, r.Token, r.Payload)
			},
			Success: "Заявка на верификацию отправлена",
			Failure: "Не удалось отправить заявку",
		}),
	}
}

func refreshers(rs ...Refresher) []Refresher {
	out := make([]Refresher, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
