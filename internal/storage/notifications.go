package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
)

// AddNotification records an operator-visible alert. An identical message
// that is still unread is not duplicated; the partial unique index on
// unread messages enforces this, and the conflict is ignored here.
func (s *SQLiteStorage) AddNotification(ctx context.Context, message string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(message, "message"); err != nil {
		return err
	}
	return s.addNotificationTx(ctx, s.db, message)
}

func (s *SQLiteStorage) addNotificationTx(ctx context.Context, q executor, message string) error {
	res, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO notifications (message, read) VALUES (?, 0)`, message)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		slog.Debug("notification already pending", "message", message)
	}
	return nil
}

// ListNotifications returns notifications, newest first.
func (s *SQLiteStorage) ListNotifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listNotificationsTx(ctx, s.db, unreadOnly)
}

func (s *SQLiteStorage) listNotificationsTx(ctx context.Context, q executor, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT id, message, read, created_at FROM notifications`
	if unreadOnly {
		query += ` WHERE read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead marks one notification as read.
func (s *SQLiteStorage) MarkNotificationRead(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	return s.markNotificationReadTx(ctx, s.db, id)
}

func (s *SQLiteStorage) markNotificationReadTx(ctx context.Context, q executor, id int64) error {
	res, err := q.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %d: %w", id, common.ErrNotFound)
	}
	return nil
}
