package client

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/domain/market"
	"marketplace/internal/errs"
)

// Login выполняет вход пользователя
func (a *App) Login(ctx context.Context, email, password string) (market.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return market.User{}, a.reject(errs.Validation("введите email и пароль"))
	}

	resp, err := a.api.Login(ctx, market.LoginRequest{Email: email, Password: password})
	if err != nil {
		a.log.Warn("Ошибка входа", "email", email, "error", err)
		return market.User{}, a.reject(err, "Неверный email или пароль")
	}

	if err := a.establish(ctx, resp); err != nil {
		return market.User{}, err
	}

	a.log.Info("Вход выполнен успешно", "user_id", resp.User.ID)
	a.notifications.Success("Добро пожаловать, " + resp.User.Name)
	return resp.User, nil
}

// Register регистрирует нового пользователя и сразу выполняет вход
func (a *App) Register(ctx context.Context, req market.RegisterRequest) (market.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if err := market.ValidateRegister(req); err != nil {
		return market.User{}, a.reject(err)
	}

	resp, err := a.api.Register(ctx, req)
	if err != nil {
		a.log.Warn("Ошибка регистрации", "email", req.Email, "error", err)
		return market.User{}, a.reject(err, "Не удалось зарегистрироваться")
	}

	if err := a.establish(ctx, resp); err != nil {
		return market.User{}, err
	}

	a.log.Info("Пользователь успешно зарегистрирован", "user_id", resp.User.ID)
	a.notifications.Success("Регистрация завершена")
	return resp.User, nil
}

// Logout удаляет сессию и очищает кэш.
func (a *App) Logout(ctx context.Context) {
	a.session.ClearAuthData(ctx)
	a.log.Info("Выход выполнен")
}

// SkipAuth включает гостевой режим.
func (a *App) SkipAuth(ctx context.Context) {
	a.session.SkipAuth(ctx)
	a.log.Info("Гостевой режим")
}

// Me обновляет профиль текущего пользователя с сервера.
func (a *App) Me(ctx context.Context) (market.User, error) {
	token := a.session.Token()
	if token == "" {
		return market.User{}, a.reject(errs.ErrUnauthenticated)
	}

	user, err := a.api.Me(ctx, token)
	if err != nil {
		return market.User{}, a.reject(err, "Не удалось загрузить профиль")
	}

	// Сессия могла смениться, пока шел запрос
	if a.session.Token() == token {
		if err := a.session.SetAuthData(ctx, token, user); err != nil {
			return market.User{}, err
		}
	}
	return user, nil
}

// establish сохраняет сессию после входа или регистрации. Если хранилище
// не приняло запись, сессия остается анонимной и вход считается неудачным.
func (a *App) establish(ctx context.Context, resp market.AuthResponse) error {
	if err := a.session.SetAuthData(ctx, resp.Token, resp.User); err != nil {
		return a.reject(fmt.Errorf("некорректный ответ сервера: %w", err))
	}
	if !a.session.Snapshot().IsAuthenticated() {
		return a.reject(errs.ErrPersistence)
	}
	return nil
}

// reject показывает одно уведомление об ошибке и возвращает err.
func (a *App) reject(err error, fallback ...string) error {
	msg := ""
	if len(fallback) > 0 {
		msg = fallback[0]
	}
	a.notifications.Error(errs.UserMessage(err, msg))
	return err
}
