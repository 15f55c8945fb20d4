package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// uniqueViolation — код ошибки PostgreSQL для нарушения уникальности.
const uniqueViolation = "23505"

const contractColumns = `c.id, c.customer_uid, c.plan_id, c.advisor_uid, c.status,
			      c.requested_at, c.decided_at, c.expires_at, c.duration_minutes,
			      c.customer_notes, c.advisor_notes,
			      p.name, p.price, u.username, u.email, COALESCE(a.username, '')`

const contractJoins = `FROM contracts c
			  JOIN plans p ON p.id = c.plan_id
			  JOIN users u ON u.uid = c.customer_uid
			  LEFT JOIN users a ON a.uid = c.advisor_uid`

func scanContract(row interface{ Scan(...any) error }) (*models.Contract, error) {
	c := &models.Contract{}
	var advisorUID, customerNotes, advisorNotes sql.NullString
	var decidedAt, expiresAt sql.NullTime
	var durationMinutes sql.NullInt64
	if err := row.Scan(&c.ID, &c.CustomerUID, &c.PlanID, &advisorUID, &c.Status,
		&c.RequestedAt, &decidedAt, &expiresAt, &durationMinutes,
		&customerNotes, &advisorNotes,
		&c.PlanName, &c.PlanPrice, &c.CustomerName, &c.CustomerEmail, &c.AdvisorName); err != nil {
		return nil, err
	}
	if advisorUID.Valid {
		c.AdvisorUID = &advisorUID.String
	}
	if decidedAt.Valid {
		c.DecidedAt = &decidedAt.Time
	}
	if expiresAt.Valid {
		c.ExpiresAt = &expiresAt.Time
	}
	if durationMinutes.Valid {
		minutes := int(durationMinutes.Int64)
		c.DurationMinutes = &minutes
	}
	c.CustomerNotes = customerNotes.String
	c.AdvisorNotes = advisorNotes.String
	return c, nil
}

// CountOpenContracts возвращает количество контрактов клиента, занимающих
// активный слот: pending либо approved с ненаступившим сроком истечения.
func (s *Storage) CountOpenContracts(ctx context.Context, customerUID string, now time.Time) (int, error) {
	const op = "storage.CountOpenContracts"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM contracts
			  WHERE customer_uid = $1
			      AND (status = 'pending'
			           OR (status = 'approved' AND (expires_at IS NULL OR expires_at > $2)))`
	if err := s.DB.QueryRowContext(ctx, query, customerUID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CreateContract вставляет новую заявку со статусом pending и возвращает её
// с заполненными полями join. Частичный уникальный индекс по открытым
// контрактам превращает гонку двух одновременных заявок в ошибку уникальности,
// которая транслируется в apperr.ErrActiveContractExists.
func (s *Storage) CreateContract(ctx context.Context, contract models.Contract) (*models.Contract, error) {
	const op = "storage.CreateContract"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO contracts (customer_uid, plan_id, status, requested_at, customer_notes)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		contract.CustomerUID, contract.PlanID, contract.Status,
		contract.RequestedAt, contract.CustomerNotes).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrActiveContractExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetContract(ctx, newID)
}

// GetContract возвращает контракт по ID с данными плана, клиента и консультанта.
func (s *Storage) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	const op = "storage.GetContract"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + contractColumns + ` ` + contractJoins + ` WHERE c.id = $1`
	contract, err := scanContract(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return contract, nil
}

func (s *Storage) listContracts(ctx context.Context, op, where, order string, args ...any) ([]*models.Contract, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + contractColumns + ` ` + contractJoins + ` WHERE ` + where + ` ORDER BY ` + order
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, contract)
	}
	return result, rows.Err()
}

// ListContractsByCustomer возвращает контракты клиента, сначала новые.
func (s *Storage) ListContractsByCustomer(ctx context.Context, customerUID string) ([]*models.Contract, error) {
	return s.listContracts(ctx, "storage.ListContractsByCustomer",
		"c.customer_uid = $1", "c.requested_at DESC", customerUID)
}

// ListPendingContracts возвращает все ожидающие решения заявки,
// сначала старые (порядок живой очереди для консультантов).
func (s *Storage) ListPendingContracts(ctx context.Context) ([]*models.Contract, error) {
	return s.listContracts(ctx, "storage.ListPendingContracts",
		"c.status = 'pending'", "c.requested_at ASC")
}

// ListContractsByAdvisor возвращает контракты, решённые консультантом, сначала новые.
func (s *Storage) ListContractsByAdvisor(ctx context.Context, advisorUID string) ([]*models.Contract, error) {
	return s.listContracts(ctx, "storage.ListContractsByAdvisor",
		"c.advisor_uid = $1", "c.requested_at DESC", advisorUID)
}

// ApproveContract атомарно переводит контракт из pending в approved,
// назначая консультанта и срок истечения. Возвращает количество обновлённых
// строк: 0 означает, что контракт не в статусе pending.
func (s *Storage) ApproveContract(ctx context.Context, id, advisorUID string,
	decidedAt, expiresAt time.Time, durationMinutes int, notes string) (int64, error) {
	const op = "storage.ApproveContract"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE contracts
			  SET status = 'approved', advisor_uid = $2, decided_at = $3,
			      expires_at = $4, duration_minutes = $5, advisor_notes = $6
			  WHERE id = $1 AND status = 'pending'`
	result, err := s.DB.ExecContext(ctx, query, id, advisorUID, decidedAt, expiresAt, durationMinutes, notes)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// RejectContract атомарно переводит контракт из pending в rejected.
func (s *Storage) RejectContract(ctx context.Context, id, advisorUID string,
	decidedAt time.Time, notes string) (int64, error) {
	const op = "storage.RejectContract"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE contracts
			  SET status = 'rejected', advisor_uid = $2, decided_at = $3, advisor_notes = $4
			  WHERE id = $1 AND status = 'pending'`
	result, err := s.DB.ExecContext(ctx, query, id, advisorUID, decidedAt, notes)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// CancelContract атомарно переводит контракт из pending в cancelled.
// Операция ограничена владельцем-клиентом.
func (s *Storage) CancelContract(ctx context.Context, id, customerUID string) (int64, error) {
	const op = "storage.CancelContract"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE contracts
			  SET status = 'cancelled'
			  WHERE id = $1 AND customer_uid = $2 AND status = 'pending'`
	result, err := s.DB.ExecContext(ctx, query, id, customerUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ExpireDueContracts атомарно переводит все просроченные approved-контракты
// в expired и возвращает данные для уведомлений. Операция идемпотентна
// и безопасна при конкурентном запуске: уже истёкшие контракты повторно
// не затрагиваются.
func (s *Storage) ExpireDueContracts(ctx context.Context, now time.Time) ([]models.ContractNotification, error) {
	const op = "storage.ExpireDueContracts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `WITH expired AS (
			      UPDATE contracts
			      SET status = 'expired'
			      WHERE status = 'approved' AND expires_at IS NOT NULL AND expires_at < $1
			      RETURNING id, customer_uid, plan_id, expires_at
			  )
			  SELECT e.id, u.email, u.username, p.name, e.expires_at
			  FROM expired e
			  JOIN users u ON u.uid = e.customer_uid
			  JOIN plans p ON p.id = e.plan_id`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.ContractNotification
	for rows.Next() {
		n := models.ContractNotification{Status: models.StatusExpired}
		if err := rows.Scan(&n.ContractID, &n.CustomerEmail, &n.CustomerName,
			&n.PlanName, &n.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// ExpireDueContractsForCustomer — вариант ленивой зачистки для одного клиента,
// выполняется перед чтением его списка контрактов и перед созданием новой заявки.
func (s *Storage) ExpireDueContractsForCustomer(ctx context.Context, customerUID string, now time.Time) (int64, error) {
	const op = "storage.ExpireDueContractsForCustomer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE contracts
			  SET status = 'expired'
			  WHERE customer_uid = $1 AND status = 'approved'
			      AND expires_at IS NOT NULL AND expires_at < $2`
	result, err := s.DB.ExecContext(ctx, query, customerUID, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ContractStatsByAdvisor подсчитывает контракты консультанта по статусам.
func (s *Storage) ContractStatsByAdvisor(ctx context.Context, advisorUID string) (*models.ContractStats, error) {
	const op = "storage.ContractStatsByAdvisor"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      COUNT(*),
			      COUNT(*) FILTER (WHERE status = 'approved'),
			      COUNT(*) FILTER (WHERE status = 'rejected'),
			      COUNT(*) FILTER (WHERE status = 'pending'),
			      COUNT(*) FILTER (WHERE status = 'cancelled'),
			      COUNT(*) FILTER (WHERE status = 'expired')
			  FROM contracts
			  WHERE advisor_uid = $1`
	stats := &models.ContractStats{}
	if err := s.DB.QueryRowContext(ctx, query, advisorUID).Scan(&stats.Total,
		&stats.Approved, &stats.Rejected, &stats.Pending,
		&stats.Cancelled, &stats.Expired); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
