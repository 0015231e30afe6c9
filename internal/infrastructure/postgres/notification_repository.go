package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// CreateMany queues every insert in one batch inside a transaction and fills in
// the generated ids and timestamps.
func (r *NotificationRepository) CreateMany(ctx context.Context, ns []entity.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, n := range ns {
		batch.Queue(`
			INSERT INTO notifications (recipient_id, title, message, type, is_read)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, n.RecipientID, n.Title, n.Message, string(n.Type), n.IsRead)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range ns {
		if err := br.QueryRow().Scan(&ns[i].ID, &ns[i].CreatedAt); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert notification %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const notificationColumns = `id, recipient_id, title, message, type, is_read, created_at`

func scanNotification(row pgx.Row) (entity.Notification, error) {
	var (
		n   entity.Notification
		typ string
	)
	err := row.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &typ, &n.IsRead, &n.CreatedAt)
	n.Type = entity.NotificationType(typ)
	return n, err
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]entity.Notification, error) {
	sql, args, err := psql.Select(notificationColumns).
		From("notifications").
		Where("recipient_id = ?", recipientID).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(max(limit, 1))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list notifications query: %w", err)
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Notification, error) {
		return scanNotification(row)
	})
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true WHERE recipient_id = $1 AND NOT is_read`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.RowsAffected(), nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return notFound(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE recipient_id = $1`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("clear notifications: %w", err)
	}
	return res.RowsAffected(), nil
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
