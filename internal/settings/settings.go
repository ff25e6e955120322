package settings

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Ключи глобальных настроек
const (
	KeySLATarget     = "sla_target"
	KeyAlertEmails   = "alert_emails"
	KeyNotifications = "notifications_enabled"
	KeyCompactMode   = "compact_mode"
)

const DefaultSLATarget = 95

var (
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Тот же критерий формы адреса, что и в форме настроек
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Store — минимальный контракт хранилища настроек
type Store interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Service — key-value сервис настроек: чтение из хранилища, запись при каждом
// изменении, уведомление подписчиков. Инжектируется вместо глобального состояния.
type Service struct {
	store Store

	mu   sync.Mutex
	subs []func(key, value string)
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, key string) (string, error) {
	return s.store.GetSetting(ctx, key)
}

func (s *Service) GetInt(ctx context.Context, key string, fallback int) int {
	raw, err := s.store.GetSetting(ctx, key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

// Set сохраняет значение и уведомляет подписчиков; при ошибке записи
// уведомления не рассылаются
func (s *Service) Set(ctx context.Context, key, value string) error {
	if err := s.store.SetSetting(ctx, key, value); err != nil {
		return err
	}
	s.mu.Lock()
	subs := make([]func(key, value string), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(key, value)
	}
	return nil
}

func (s *Service) Subscribe(fn func(key, value string)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Service) SLATarget(ctx context.Context) int {
	return s.GetInt(ctx, KeySLATarget, DefaultSLATarget)
}

func (s *Service) SetSLATarget(ctx context.Context, target int) error {
	if target < 0 {
		target = 0
	}
	if target > 100 {
		target = 100
	}
	return s.Set(ctx, KeySLATarget, strconv.Itoa(target))
}

func (s *Service) AlertEmails(ctx context.Context) []string {
	raw, err := s.store.GetSetting(ctx, KeyAlertEmails)
	if err != nil {
		return []string{}
	}
	emails := []string{}
	if err := json.Unmarshal([]byte(raw), &emails); err != nil {
		return []string{}
	}
	return emails
}

// AddAlertEmail нормализует адрес, отклоняет дубликаты и неверную форму
func (s *Service) AddAlertEmail(ctx context.Context, email string) ([]string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	emails := s.AlertEmails(ctx)
	for _, e := range emails {
		if e == email {
			return nil, ErrDuplicateEmail
		}
	}
	emails = append(emails, email)
	if err := s.saveAlertEmails(ctx, emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (s *Service) RemoveAlertEmail(ctx context.Context, email string) ([]string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	emails := s.AlertEmails(ctx)
	kept := []string{}
	for _, e := range emails {
		if e != email {
			kept = append(kept, e)
		}
	}
	if err := s.saveAlertEmails(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *Service) saveAlertEmails(ctx context.Context, emails []string) error {
	raw, err := json.Marshal(emails)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyAlertEmails, string(raw))
}
