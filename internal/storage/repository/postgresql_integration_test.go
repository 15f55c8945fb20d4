package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

func TestStorage_CreateContract(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	advisorUID := factory.CreateUser(t, "advisor", "advisor@example.com", models.RoleAdvisor)
	customerUID := factory.CreateUser(t, "ivan", "ivan@example.com", models.RoleCustomer)
	planID := factory.CreatePlan(t, "Безлимит+", "premium", advisorUID, 990.0, true)

	contract, err := storage.CreateContract(ctx, models.Contract{
		CustomerUID:   customerUID,
		PlanID:        planID,
		Status:        models.StatusPending,
		RequestedAt:   time.Now().UTC(),
		CustomerNotes: "хочу подключить",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, contract.Status)
	assert.Equal(t, "Безлимит+", contract.PlanName)
	assert.Equal(t, "ivan", contract.CustomerName)
	assert.Equal(t, "ivan@example.com", contract.CustomerEmail)
	assert.Nil(t, contract.AdvisorUID)

	// Частичный уникальный индекс: вторая открытая заявка того же клиента
	// отклоняется на уровне базы.
	_, err = storage.CreateContract(ctx, models.Contract{
		CustomerUID: customerUID,
		PlanID:      planID,
		Status:      models.StatusPending,
		RequestedAt: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrActiveContractExists)
}

func TestStorage_ApproveContract(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	advisorUID := factory.CreateUser(t, "advisor", "advisor@example.com", models.RoleAdvisor)
	customerUID := factory.CreateUser(t, "ivan", "ivan@example.com", models.RoleCustomer)
	planID := factory.CreatePlan(t, "Базовый", "basic", advisorUID, 390.0, true)
	contractID := factory.CreateContract(t, customerUID, planID, models.StatusPending, nil, nil)

	now := time.Now().UTC()
	expiresAt := now.Add(10 * time.Minute)

	rows, err := storage.ApproveContract(ctx, contractID, advisorUID, now, expiresAt, 10, "одобрено")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	contract, err := storage.GetContract(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, contract.Status)
	require.NotNil(t, contract.AdvisorUID)
	assert.Equal(t, advisorUID, *contract.AdvisorUID)
	require.NotNil(t, contract.ExpiresAt)
	assert.WithinDuration(t, expiresAt, *contract.ExpiresAt, time.Second)
	require.NotNil(t, contract.DurationMinutes)
	assert.Equal(t, 10, *contract.DurationMinutes)
	assert.Equal(t, "advisor", contract.AdvisorName)

	// Повторное решение по уже решённой заявке не затрагивает строк.
	rows, err = storage.ApproveContract(ctx, contractID, advisorUID, now, expiresAt, 10, "повторно")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = storage.RejectContract(ctx, contractID, advisorUID, now, "поздно")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestStorage_CancelContract(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	advisorUID := factory.CreateUser(t, "advisor", "advisor@example.com", models.RoleAdvisor)
	customerUID := factory.CreateUser(t, "ivan", "ivan@example.com", models.RoleCustomer)
	strangerUID := factory.CreateUser(t, "stranger", "stranger@example.com", models.RoleCustomer)
	planID := factory.CreatePlan(t, "Базовый", "basic", advisorUID, 390.0, true)
	contractID := factory.CreateContract(t, customerUID, planID, models.StatusPending, nil, nil)

	// Чужой клиент не может отменить заявку.
	rows, err := storage.CancelContract(ctx, contractID, strangerUID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = storage.CancelContract(ctx, contractID, customerUID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	contract, err := storage.GetContract(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, contract.Status)
}

func TestStorage_ExpireDueContracts(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	advisorUID := factory.CreateUser(t, "advisor", "advisor@example.com", models.RoleAdvisor)
	customerUID := factory.CreateUser(t, "ivan", "ivan@example.com", models.RoleCustomer)
	otherUID := factory.CreateUser(t, "petr", "petr@example.com", models.RoleCustomer)
	planID := factory.CreatePlan(t, "Безлимит+", "premium", advisorUID, 990.0, true)

	pastExpiry := time.Now().UTC().Add(-time.Minute)
	futureExpiry := time.Now().UTC().Add(time.Hour)
	dueID := factory.CreateContract(t, customerUID, planID, models.StatusApproved, &advisorUID, &pastExpiry)
	activeID := factory.CreateContract(t, otherUID, planID, models.StatusApproved, &advisorUID, &futureExpiry)

	notifications, err := storage.ExpireDueContracts(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, dueID, notifications[0].ContractID)
	assert.Equal(t, "ivan@example.com", notifications[0].CustomerEmail)
	assert.Equal(t, "Безлимит+", notifications[0].PlanName)
	assert.Equal(t, models.StatusExpired, notifications[0].Status)

	expired, err := storage.GetContract(ctx, dueID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, expired.Status)

	active, err := storage.GetContract(ctx, activeID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, active.Status)

	// Повторный проход идемпотентен.
	notifications, err = storage.ExpireDueContracts(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestStorage_CountOpenContracts(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	advisorUID := factory.CreateUser(t, "advisor", "advisor@example.com", models.RoleAdvisor)
	customerUID := factory.CreateUser(t, "ivan", "ivan@example.com", models.RoleCustomer)
	planID := factory.CreatePlan(t, "Базовый", "basic", advisorUID, 390.0, true)

	now := time.Now().UTC()

	count, err := storage.CountOpenContracts(ctx, customerUID, now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Просроченный approved-контракт не занимает слот.
	pastExpiry := now.Add(-time.Minute)
	contractID := factory.CreateContract(t, customerUID, planID, models.StatusApproved, &advisorUID, &pastExpiry)

	count, err = storage.CountOpenContracts(ctx, customerUID, now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Ленивая зачистка освобождает слот физически.
	swept, err := storage.ExpireDueContractsForCustomer(ctx, customerUID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	contract, err := storage.GetContract(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, contract.Status)

	factory.CreateContract(t, customerUID, planID, models.StatusPending, nil, nil)
	count, err = storage.CountOpenContracts(ctx, customerUID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStorage_ContractStatsByAdvisor(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	advisorUID := factory.CreateUser(t, "advisor", "advisor@example.com", models.RoleAdvisor)
	planID := factory.CreatePlan(t, "Базовый", "basic", advisorUID, 390.0, true)

	futureExpiry := time.Now().UTC().Add(time.Hour)
	for i, status := range []string{models.StatusApproved, models.StatusRejected, models.StatusExpired} {
		customerUID := factory.CreateUser(t,
			"customer"+string(rune('a'+i)), "customer"+string(rune('a'+i))+"@example.com", models.RoleCustomer)
		var expires *time.Time
		if status == models.StatusApproved {
			expires = &futureExpiry
		}
		factory.CreateContract(t, customerUID, planID, status, &advisorUID, expires)
	}

	stats, err := storage.ContractStatsByAdvisor(ctx, advisorUID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 0, stats.Pending)
	assert.Equal(t, 0, stats.Cancelled)
}

func TestStorage_GetContract_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.GetContract(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStorage_ListActivePlans(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	advisorUID := factory.CreateUser(t, "advisor", "advisor@example.com", models.RoleAdvisor)
	factory.CreatePlan(t, "Базовый", "basic", advisorUID, 390.0, true)
	factory.CreatePlan(t, "Безлимит+", "premium", advisorUID, 990.0, true)
	factory.CreatePlan(t, "Архивный", "basic", advisorUID, 190.0, false)

	plans, err := storage.ListActivePlans(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	// Сортировка по цене по возрастанию.
	assert.Equal(t, "Базовый", plans[0].Name)
	assert.Equal(t, "Безлимит+", plans[1].Name)

	plans, err = storage.ListActivePlans(ctx, "безлимит", "")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Безлимит+", plans[0].Name)

	plans, err = storage.ListActivePlans(ctx, "", "basic")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Базовый", plans[0].Name)
}

func TestStorage_Messages(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	advisorUID := factory.CreateUser(t, "advisor", "advisor@example.com", models.RoleAdvisor)
	customerUID := factory.CreateUser(t, "ivan", "ivan@example.com", models.RoleCustomer)
	planID := factory.CreatePlan(t, "Базовый", "basic", advisorUID, 390.0, true)
	futureExpiry := time.Now().UTC().Add(time.Hour)
	contractID := factory.CreateContract(t, customerUID, planID, models.StatusApproved, &advisorUID, &futureExpiry)

	base := time.Now().UTC().Add(-time.Hour)
	factory.CreateMessage(t, contractID, customerUID, "первое", base)
	factory.CreateMessage(t, contractID, advisorUID, "второе", base.Add(time.Minute))
	lastID := factory.CreateMessage(t, contractID, customerUID, "третье", base.Add(2*time.Minute))

	// Последние limit сообщений, новые первыми.
	messages, err := storage.ListRecentMessages(ctx, contractID, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "третье", messages[0].Content)
	assert.Equal(t, "второе", messages[1].Content)
	assert.Equal(t, "ivan", messages[0].AuthorName)
	assert.Equal(t, models.RoleCustomer, messages[0].AuthorRole)

	// Удалять может только автор.
	rows, err := storage.DeleteMessage(ctx, lastID, advisorUID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = storage.DeleteMessage(ctx, lastID, customerUID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	messages, err = storage.ListRecentMessages(ctx, contractID, 10)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestStorage_RegisterAndGetUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	uid, err := storage.RegisterUser(ctx, models.User{
		Email:        "ivan@example.com",
		Username:     "ivan",
		PasswordHash: "hashedpassword",
		Role:         models.RoleCustomer,
		Active:       true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	user, err := storage.GetUserByUsername(ctx, "ivan")
	require.NoError(t, err)
	assert.Equal(t, uid, user.UID)
	assert.Equal(t, "ivan@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)

	_, err = storage.GetUserByUsername(ctx, "nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
