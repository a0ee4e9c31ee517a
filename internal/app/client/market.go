package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/app/client/api"
	"marketplace/internal/app/client/store"
	"marketplace/internal/domain/market"
	"marketplace/internal/errs"
)

// placeholderID - временный id оптимистичной записи до ответа сервера.
func placeholderID() string {
	return "tmp-" + uuid.NewString()
}

// ==================== Favorites ====================

func (a *App) FetchFavorites(ctx context.Context) ([]market.Favorite, error) {
	return a.favorites.Fetch(ctx, 1)
}

func (a *App) Favorites() store.State[[]market.Favorite] {
	return a.favorites.Snapshot()
}

// IsFavorite проверяет, есть ли объявление в избранном
func (a *App) IsFavorite(productID string) bool {
	_, ok := a.favorites.Find(func(f market.Favorite) bool { return f.ProductID == productID })
	return ok
}

// AddFavorite добавляет объявление в избранное. Запись появляется сразу,
// при ошибке сервера она исчезает.
func (a *App) AddFavorite(ctx context.Context, productID string) (market.Favorite, error) {
	if strings.TrimSpace(productID) == "" {
		return market.Favorite{}, a.reject(errs.Validation("не указано объявление"))
	}
	if f, ok := a.favorites.Find(func(f market.Favorite) bool { return f.ProductID == productID }); ok {
		return f, nil
	}

	placeholder := market.Favorite{ID: placeholderID(), ProductID: productID, CreatedAt: time.Now()}

	return a.favorites.Add(ctx, placeholder, func(ctx context.Context, token string) (market.Favorite, error) {
		return a.api.AddFavorite(ctx, token, productID)
	}, store.Messages{Success: "Добавлено в избранное", Failure: "Не удалось добавить в избранное"})
}

// RemoveFavorite удаляет объявление из избранного.
func (a *App) RemoveFavorite(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return a.reject(errs.Validation("не указано объявление"))
	}

	key := productID
	if f, ok := a.favorites.Find(func(f market.Favorite) bool { return f.ProductID == productID }); ok {
		key = f.ID
	}

	return a.favorites.Remove(ctx, key, func(ctx context.Context, token string) error {
		return a.api.RemoveFavorite(ctx, token, productID)
	}, store.Messages{Success: "Удалено из избранного", Failure: "Не удалось удалить из избранного"})
}

// ==================== Balance ====================

func (a *App) FetchBalance(ctx context.Context) (market.Balance, error) {
	return a.balance.Fetch(ctx)
}

func (a *App) Balance() store.State[market.Balance] {
	return a.balance.Snapshot()
}

// RequestRefund отправляет запрос на возврат и обновляет баланс.
func (a *App) RequestRefund(ctx context.Context, amount float64, reason string) (market.RefundResponse, error) {
	return a.account.Refund.Run(ctx, "", market.RefundRequest{Amount: amount, Reason: reason})
}

func (a *App) SubmitVerification(ctx context.Context, req market.VerificationRequest) (market.VerificationResponse, error) {
	return a.account.Verify.Run(ctx, "", req)
}

// ==================== Blocked users ====================

func (a *App) FetchBlockedUsers(ctx context.Context) ([]market.BlockedUser, error) {
	return a.blocked.Fetch(ctx, 1)
}

func (a *App) BlockedUsers() store.State[[]market.BlockedUser] {
	return a.blocked.Snapshot()
}

func (a *App) BlockUser(ctx context.Context, userID string) (market.BlockedUser, error) {
	if strings.TrimSpace(userID) == "" {
		return market.BlockedUser{}, a.reject(errs.Validation("не указан пользователь"))
	}
	if userID == a.session.Snapshot().UserID() {
		return market.BlockedUser{}, a.reject(errs.Validation("нельзя заблокировать себя"))
	}
	if b, ok := a.blocked.Get(userID); ok {
		return b, nil
	}

	placeholder := market.BlockedUser{UserID: userID, BlockedAt: time.Now()}

	return a.blocked.Add(ctx, placeholder, func(ctx context.Context, token string) (market.BlockedUser, error) {
		return a.api.BlockUser(ctx, token, userID)
	}, store.Messages{Success: "Пользователь заблокирован", Failure: "Не удалось заблокировать пользователя"})
}

func (a *App) UnblockUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return a.reject(errs.Validation("не указан пользователь"))
	}

	return a.blocked.Remove(ctx, userID, func(ctx context.Context, token string) error {
		return a.api.UnblockUser(ctx, token, userID)
	}, store.Messages{Success: "Пользователь разблокирован", Failure: "Не удалось разблокировать пользователя"})
}

// ==================== Chats ====================

func (a *App) FetchChats(ctx context.Context) ([]market.Chat, error) {
	return a.chats.Fetch(ctx, 1)
}

func (a *App) Chats() store.State[[]market.Chat] {
	return a.chats.Snapshot()
}

// OpenChat создает чат с участником по объявлению. Эндпоинт создания не
// идемпотентен: если чат уже есть, список чатов перезагружается и чат
// ищется по участнику и объявлению.
func (a *App) OpenChat(ctx context.Context, participantID, productID string) (market.Chat, error) {
	snap := a.session.Snapshot()
	if snap.Token == "" {
		return market.Chat{}, a.reject(errs.ErrUnauthenticated)
	}
	if strings.TrimSpace(participantID) == "" || strings.TrimSpace(productID) == "" {
		return market.Chat{}, a.reject(errs.Validation("не указан собеседник или объявление"))
	}
	if participantID == snap.UserID() {
		return market.Chat{}, a.reject(errs.Validation("нельзя написать самому себе"))
	}

	chat, err := a.api.CreateChat(ctx, snap.Token, market.CreateChatRequest{
		ParticipantID: participantID,
		ProductID:     productID,
	})
	if err == nil {
		a.chats.Put(chat)
		return chat, nil
	}
	if !api.IsAlreadyExists(err) {
		return market.Chat{}, a.reject(err, "Не удалось создать чат")
	}

	a.log.Debug("Чат уже существует, ищем в списке", "participant_id", participantID, "product_id", productID)

	if _, ferr := a.chats.Fetch(ctx, 1); ferr != nil {
		return market.Chat{}, a.reject(errors.Join(err, ferr), "Не удалось открыть чат")
	}

	existing, ok := a.chats.Find(func(c market.Chat) bool {
		return c.ProductID == productID && c.HasParticipant(participantID)
	})
	if !ok {
		return market.Chat{}, a.reject(err, "Не удалось открыть чат")
	}
	return existing, nil
}

// FetchMessages загружает страницу сообщений чата.
func (a *App) FetchMessages(ctx context.Context, chatID string, page int) ([]market.Message, error) {
	return a.messages.Get(chatID).Fetch(ctx, page)
}

// FetchMoreMessages загружает следующую страницу сообщений чата.
func (a *App) FetchMoreMessages(ctx context.Context, chatID string) ([]market.Message, error) {
	return a.messages.Get(chatID).FetchNext(ctx)
}

// Messages возвращает закэшированные сообщения чата. Чтение не заводит
// коллекцию для чата, который еще не загружали.
func (a *App) Messages(chatID string) store.State[[]market.Message] {
	c, ok := a.messages.Lookup(chatID)
	if !ok {
		return store.State[[]market.Message]{}
	}
	return c.Snapshot()
}

// CachedChats возвращает id чатов, для которых в кэше есть сообщения.
func (a *App) CachedChats() []string {
	return a.messages.Keys()
}

// SendMessage отправляет сообщение. Сообщение появляется в чате сразу и
// заменяется ответом сервера.
func (a *App) SendMessage(ctx context.Context, chatID, text string) (market.Message, error) {
	text = strings.TrimSpace(text)
	if chatID == "" || text == "" {
		return market.Message{}, a.reject(errs.Validation("пустое сообщение"))
	}

	placeholder := market.Message{
		ID:        placeholderID(),
		ChatID:    chatID,
		SenderID:  a.session.Snapshot().UserID(),
		Text:      text,
		CreatedAt: time.Now(),
	}

	return a.messages.Get(chatID).Add(ctx, placeholder, func(ctx context.Context, token string) (market.Message, error) {
		return a.api.SendMessage(ctx, token, chatID, text)
	}, store.Messages{Failure: "Сообщение не отправлено"})
}

// ==================== Listings ====================

func (a *App) FetchMyListings(ctx context.Context, page int) ([]market.Product, error) {
	return a.myList.Fetch(ctx, page)
}

func (a *App) MyListings() store.State[[]market.Product] {
	return a.myList.Snapshot()
}

// FetchPendingListings загружает очередь модерации.
func (a *App) FetchPendingListings(ctx context.Context, page int) ([]market.Product, error) {
	return a.pending.Fetch(ctx, page)
}

func (a *App) PendingListings() store.State[[]market.Product] {
	return a.pending.Snapshot()
}

// SearchListings ищет объявления. Работает без входа.
func (a *App) SearchListings(ctx context.Context, query string, page int) ([]market.Product, error) {
	a.search.SetSearch(strings.TrimSpace(query))
	return a.search.Fetch(ctx, page)
}

func (a *App) SearchResults() store.State[[]market.Product] {
	return a.search.Snapshot()
}

func (a *App) DeleteListing(ctx context.Context, id string) error {
	_, err := a.listings.Delete.Run(ctx, id, struct{}{})
	return err
}

func (a *App) MarkListingOutdated(ctx context.Context, id string) (market.Product, error) {
	return a.listings.MarkOutdated.Run(ctx, id, struct{}{})
}

func (a *App) RestoreListing(ctx context.Context, id string) (market.Product, error) {
	return a.listings.Restore.Run(ctx, id, struct{}{})
}

func (a *App) UpdateListing(ctx context.Context, id string, req market.UpdateProductRequest) (market.Product, error) {
	return a.listings.Update.Run(ctx, id, req)
}

func (a *App) ApproveListing(ctx context.Context, id string) (market.Product, error) {
	return a.listings.Approve.Run(ctx, id, struct{}{})
}

func (a *App) RejectListing(ctx context.Context, id, reason string) (market.Product, error) {
	return a.listings.Reject.Run(ctx, id, market.RejectRequest{Reason: reason})
}
