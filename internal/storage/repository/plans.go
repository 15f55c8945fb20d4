package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

const planColumns = `id, name, description, price, data_allowance, minutes, sms,
			  speed_4g, speed_5g, free_messaging, free_social, international,
			  roaming, segment, active, advisor_uid, image_url, image_path,
			  created_at, updated_at`

func scanPlan(row interface{ Scan(...any) error }) (*models.Plan, error) {
	p := &models.Plan{}
	var speed5g, freeSocial, international, roaming, imageURL, imagePath sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DataAllowance,
		&p.Minutes, &p.SMS, &p.Speed4G, &speed5g, &p.FreeMessaging, &freeSocial,
		&international, &roaming, &p.Segment, &p.Active, &p.AdvisorUID,
		&imageURL, &imagePath, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Speed5G = speed5g.String
	p.FreeSocial = freeSocial.String
	p.International = international.String
	p.Roaming = roaming.String
	p.ImageURL = imageURL.String
	p.ImagePath = imagePath.String
	return p, nil
}

// CreatePlan вставляет новый тарифный план и возвращает сохранённую запись.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO plans (name, description, price, data_allowance, minutes,
			      sms, speed_4g, speed_5g, free_messaging, free_social,
			      international, roaming, segment, active, advisor_uid)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			  RETURNING ` + planColumns
	row := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Description, plan.Price, plan.DataAllowance, plan.Minutes,
		plan.SMS, plan.Speed4G, plan.Speed5G, plan.FreeMessaging, plan.FreeSocial,
		plan.International, plan.Roaming, plan.Segment, plan.Active, plan.AdvisorUID)
	created, err := scanPlan(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetPlan возвращает план по ID, включая неактивные.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	plan, err := scanPlan(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// ListActivePlans возвращает активные планы, отсортированные по цене по возрастанию.
// Необязательные фильтры: подстрока названия (регистронезависимо) и сегмент.
func (s *Storage) ListActivePlans(ctx context.Context, nameQuery, segment string) ([]*models.Plan, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
			  FROM plans
			  WHERE active = TRUE
			      AND ($1 = '' OR name ILIKE '%' || $1 || '%')
			      AND ($2 = '' OR segment = $2)
			  ORDER BY price ASC`
	rows, err := s.DB.QueryContext(ctx, query, nameQuery, segment)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, plan)
	}
	return result, rows.Err()
}

// ListPlansByAdvisor возвращает все планы консультанта, включая неактивные,
// сначала новые.
func (s *Storage) ListPlansByAdvisor(ctx context.Context, advisorUID string) ([]*models.Plan, error) {
	const op = "storage.ListPlansByAdvisor"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
			  FROM plans
			  WHERE advisor_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, advisorUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, plan)
	}
	return result, rows.Err()
}

// UpdatePlan обновляет поля плана и возвращает обновлённую запись.
// Обновление ограничено планами владельца-консультанта.
func (s *Storage) UpdatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE plans
			  SET name = $3, description = $4, price = $5, data_allowance = $6,
			      minutes = $7, sms = $8, speed_4g = $9, speed_5g = $10,
			      free_messaging = $11, free_social = $12, international = $13,
			      roaming = $14, segment = $15, updated_at = NOW()
			  WHERE id = $1 AND advisor_uid = $2
			  RETURNING ` + planColumns
	row := s.DB.QueryRowContext(ctx, query, plan.ID, plan.AdvisorUID,
		plan.Name, plan.Description, plan.Price, plan.DataAllowance, plan.Minutes,
		plan.SMS, plan.Speed4G, plan.Speed5G, plan.FreeMessaging, plan.FreeSocial,
		plan.International, plan.Roaming, plan.Segment)
	updated, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeactivatePlan переводит план в неактивное состояние (мягкое удаление).
// Операция идемпотентна: повторная деактивация не считается ошибкой.
func (s *Storage) DeactivatePlan(ctx context.Context, id, advisorUID string) error {
	const op = "storage.DeactivatePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE plans SET active = FALSE, updated_at = NOW()
		 WHERE id = $1 AND advisor_uid = $2`, id, advisorUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}

// SetPlanImage сохраняет ссылку на промо-изображение плана.
func (s *Storage) SetPlanImage(ctx context.Context, id, advisorUID, imageURL, imagePath string) error {
	const op = "storage.SetPlanImage"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE plans SET image_url = $3, image_path = $4, updated_at = NOW()
		 WHERE id = $1 AND advisor_uid = $2`, id, advisorUID, imageURL, imagePath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}
