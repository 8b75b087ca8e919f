package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// DedupRepository is the dedup ledger, a durable set of (task, source item) pairs already emitted
type DedupRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewDedupRepository creates a new dedup ledger repository
func NewDedupRepository(db *sqlx.DB) *DedupRepository {
	return &DedupRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Reserve records the item for the task if it was never seen before.
// Returns true only for the caller whose insert created the record, so competing
// producers can't both publish the same item.
func (r *DedupRepository) Reserve(ctx context.Context, taskID int64, sourceItemID string) (bool, error) {
	query := `INSERT OR IGNORE INTO dedup_records (task_id, source_item_id, first_seen_at) VALUES (?, ?, ?)`
	var inserted bool
	err := withLockRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx, query, taskID, sourceItemID, r.now())
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get affected rows: %w", err)
		}
		inserted = n == 1
		return nil
	})
	if err != nil {
		return false, storeErr(fmt.Sprintf("reserve item %q of task %d", sourceItemID, taskID), err)
	}
	return inserted, nil
}

// Release removes a reservation whose publish failed, the item is picked up again on the next tick
func (r *DedupRepository) Release(ctx context.Context, taskID int64, sourceItemID string) error {
	err := withLockRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM dedup_records WHERE task_id = ? AND source_item_id = ?`, taskID, sourceItemID)
		return err
	})
	if err != nil {
		return storeErr(fmt.Sprintf("release item %q of task %d", sourceItemID, taskID), err)
	}
	return nil
}

// Count returns the number of recorded items for the task
func (r *DedupRepository) Count(ctx context.Context, taskID int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM dedup_records WHERE task_id = ?`, taskID); err != nil {
		return 0, storeErr("count dedup records", err)
	}
	return count, nil
}

// PurgeTask drops all records of a deleted task
func (r *DedupRepository) PurgeTask(ctx context.Context, taskID int64) (int64, error) {
	var purged int64
	err := withLockRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx, `DELETE FROM dedup_records WHERE task_id = ?`, taskID)
		if err != nil {
			return err
		}
		purged, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, storeErr(fmt.Sprintf("purge dedup records of task %d", taskID), err)
	}
	return purged, nil
}
