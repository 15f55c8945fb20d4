package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

const messageColumns = `m.id, m.content, m.author_uid, m.contract_id, m.created_at,
			      u.username, u.role`

// CreateMessage вставляет сообщение чата и возвращает его ID.
// Временная метка задаётся сервером базы данных: она определяет общий
// порядок сообщений внутри канала контракта независимо от часов клиентов.
func (s *Storage) CreateMessage(ctx context.Context, msg models.Message) (string, error) {
	const op = "storage.CreateMessage"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO messages (content, author_uid, contract_id)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		msg.Content, msg.AuthorUID, msg.ContractID).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetMessage возвращает одно сообщение с данными автора.
func (s *Storage) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	const op = "storage.GetMessage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + messageColumns + `
			  FROM messages m
			  JOIN users u ON u.uid = m.author_uid
			  WHERE m.id = $1`
	m := &models.Message{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&m.ID, &m.Content, &m.AuthorUID, &m.ContractID,
		&m.CreatedAt, &m.AuthorName, &m.AuthorRole); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// ListRecentMessages возвращает последние limit сообщений контракта
// в порядке от новых к старым. Вызывающая сторона разворачивает срез,
// чтобы отдать хронологический порядок: окно всегда прижато к "сейчас",
// а не к началу истории.
func (s *Storage) ListRecentMessages(ctx context.Context, contractID string, limit int) ([]*models.Message, error) {
	const op = "storage.ListRecentMessages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + messageColumns + `
			  FROM messages m
			  JOIN users u ON u.uid = m.author_uid
			  WHERE m.contract_id = $1
			  ORDER BY m.created_at DESC, m.id DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, contractID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.Content, &m.AuthorUID, &m.ContractID,
			&m.CreatedAt, &m.AuthorName, &m.AuthorRole); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// DeleteMessage удаляет сообщение, если актор является его автором.
// Возвращает количество удалённых строк: 0 означает, что сообщения нет
// либо актор не автор.
func (s *Storage) DeleteMessage(ctx context.Context, id, authorUID string) (int64, error) {
	const op = "storage.DeleteMessage"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM messages WHERE id = $1 AND author_uid = $2`, id, authorUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}
