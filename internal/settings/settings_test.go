package settings_test

import (
	"context"
	"errors"
	"testing"

	"dvtboard/internal/settings"

	"github.com/stretchr/testify/require"
)

// memStore — хранилище настроек в памяти
type memStore struct {
	values map[string]string
	setErr error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) GetSetting(ctx context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", errors.New("setting not found")
	}
	return v, nil
}

func (m *memStore) SetSetting(ctx context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func TestSLATargetDefaultAndClamp(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := settings.NewService(store)

	require.Equal(t, settings.DefaultSLATarget, svc.SLATarget(ctx))

	require.NoError(t, svc.SetSLATarget(ctx, 80))
	require.Equal(t, 80, svc.SLATarget(ctx))

	require.NoError(t, svc.SetSLATarget(ctx, 150))
	require.Equal(t, 100, svc.SLATarget(ctx))

	require.NoError(t, svc.SetSLATarget(ctx, -5))
	require.Equal(t, 0, svc.SLATarget(ctx))
}

func TestGetIntFallbackOnGarbage(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.values[settings.KeySLATarget] = "not a number"
	svc := settings.NewService(store)

	require.Equal(t, settings.DefaultSLATarget, svc.SLATarget(ctx))
}

func TestAddAlertEmail(t *testing.T) {
	ctx := context.Background()
	svc := settings.NewService(newMemStore())

	emails, err := svc.AddAlertEmail(ctx, "  Ana@Empresa.com.BR ")
	require.NoError(t, err)
	require.Equal(t, []string{"ana@empresa.com.br"}, emails)

	// дубликат после нормализации
	_, err = svc.AddAlertEmail(ctx, "ANA@empresa.com.br")
	require.ErrorIs(t, err, settings.ErrDuplicateEmail)

	_, err = svc.AddAlertEmail(ctx, "not-an-email")
	require.ErrorIs(t, err, settings.ErrInvalidEmail)

	_, err = svc.AddAlertEmail(ctx, "two words@empresa.com")
	require.ErrorIs(t, err, settings.ErrInvalidEmail)
}

func TestRemoveAlertEmail(t *testing.T) {
	ctx := context.Background()
	svc := settings.NewService(newMemStore())

	_, err := svc.AddAlertEmail(ctx, "a@empresa.com")
	require.NoError(t, err)
	_, err = svc.AddAlertEmail(ctx, "b@empresa.com")
	require.NoError(t, err)

	emails, err := svc.RemoveAlertEmail(ctx, "A@empresa.com")
	require.NoError(t, err)
	require.Equal(t, []string{"b@empresa.com"}, emails)

	// удаление отсутствующего адреса не ошибка
	emails, err = svc.RemoveAlertEmail(ctx, "ghost@empresa.com")
	require.NoError(t, err)
	require.Equal(t, []string{"b@empresa.com"}, emails)
}

func TestSubscribeNotifiedOnSet(t *testing.T) {
	ctx := context.Background()
	svc := settings.NewService(newMemStore())

	var gotKey, gotValue string
	svc.Subscribe(func(key, value string) {
		gotKey, gotValue = key, value
	})

	require.NoError(t, svc.Set(ctx, settings.KeyCompactMode, "true"))
	require.Equal(t, settings.KeyCompactMode, gotKey)
	require.Equal(t, "true", gotValue)
}

func TestSetErrorSkipsNotification(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.setErr = errors.New("db down")
	svc := settings.NewService(store)

	called := false
	svc.Subscribe(func(key, value string) { called = true })

	require.Error(t, svc.Set(ctx, settings.KeyCompactMode, "true"))
	require.False(t, called)
}

func TestValidEmail(t *testing.T) {
	require.True(t, settings.ValidEmail("user@empresa.com.br"))
	require.False(t, settings.ValidEmail("user@empresa"))
	require.False(t, settings.ValidEmail("@empresa.com"))
	require.False(t, settings.ValidEmail("user empresa.com"))
}
