// Package review implements the human-in-the-loop correction workflow:
// the pending/approved/rejected change queue, correction suggestions and
// validation, quality scoring, and per-tag version history.
package review

import (
	"log/slog"
	"sort"
	"time"

	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/id"
)

// Journal receives every change record transition for durable storage.
// The queue works purely in memory when journal is nil.
type Journal interface {
	AppendChange(change *domain.TagChange) error
}

// Queue is the review queue for proposed vocabulary changes.
//
// State machine per change: PENDING -> APPROVED | REJECTED. Approving or
// rejecting moves the record from the pending set into history; history
// is append-only and never shrinks. Rolling back an approved change adds
// a new pending change with old/new swapped. It never rewrites history.
//
// No internal locking: a single writer is assumed, and concurrent
// approve/reject calls for the same id must be serialized by the caller.
type Queue struct {
	pending map[string]*domain.TagChange
	history []*domain.TagChange
	byID    map[string]*domain.TagChange // history records by id

	journal Journal
	logger  *slog.Logger
}

// NewQueue creates an empty review queue. journal may be nil.
func NewQueue(journal Journal, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Queue{
		pending: make(map[string]*domain.TagChange),
		byID:    make(map[string]*domain.TagChange),
		journal: journal,
		logger:  logger,
	}
}

// Restore primes the queue from journaled change records, expected in
// creation order. Pending records return to the pending set; resolved
// records land in history. Nothing is re-journaled.
func (q *Queue) Restore(changes []*domain.TagChange) {
	for _, change := range changes {
		if change.IsPending() {
			q.pending[change.ID] = change
			continue
		}
		q.history = append(q.history, change)
		q.byID[change.ID] = change
	}
}

// AddChange records a new pending change and returns its id.
func (q *Queue) AddChange(changeType domain.ChangeType, oldValue, newValue, notes string) (string, error) {
	changeID, err := id.Generate("chg")
	if err != nil {
		return "", err
	}

	change := &domain.TagChange{
		ID:        changeID,
		Type:      changeType,
		OldValue:  oldValue,
		NewValue:  newValue,
		Status:    domain.ChangePending,
		Notes:     notes,
		CreatedAt: time.Now(),
	}
	q.pending[changeID] = change
	q.journalAppend(change)

	q.logger.Debug("change queued", "id", changeID, "type", changeType, "old", oldValue, "new", newValue)
	return changeID, nil
}

// ApproveChange transitions a pending change to approved. Returns false
// if the id is not pending, an expected contention outcome rather than an
// error.
func (q *Queue) ApproveChange(changeID, reviewer, notes string) bool {
	return q.resolve(changeID, reviewer, notes, domain.ChangeApproved)
}

// RejectChange transitions a pending change to rejected. Returns false
// if the id is not pending.
func (q *Queue) RejectChange(changeID, reviewer, notes string) bool {
	return q.resolve(changeID, reviewer, notes, domain.ChangeRejected)
}

func (q *Queue) resolve(changeID, reviewer, notes string, status domain.ChangeStatus) bool {
	change, ok := q.pending[changeID]
	if !ok {
		return false
	}

	now := time.Now()
	change.Status = status
	change.Reviewer = reviewer
	if notes != "" {
		change.Notes = notes
	}
	change.ReviewedAt = &now

	delete(q.pending, changeID)
	q.history = append(q.history, change)
	q.byID[changeID] = change
	q.journalAppend(change)

	q.logger.Debug("change resolved", "id", changeID, "status", status, "reviewer", reviewer)
	return true
}

// RollbackChange compensates an approved change by queueing a new pending
// change with old and new values swapped. Returns false unless the
// referenced change is in history with approved status. History length is
// unaffected.
func (q *Queue) RollbackChange(changeID string) bool {
	original, ok := q.byID[changeID]
	if !ok || original.Status != domain.ChangeApproved {
		return false
	}

	inverseID, err := id.Generate("chg")
	if err != nil {
		q.logger.Error("rollback id generation failed", "error", err)
		return false
	}

	inverse := original.Inverse(inverseID)
	q.pending[inverseID] = inverse
	q.journalAppend(inverse)

	q.logger.Debug("change rolled back", "id", changeID, "inverse_id", inverseID)
	return true
}

// PendingChanges returns a point-in-time snapshot of the pending set,
// ordered by creation time (id as tie-break).
func (q *Queue) PendingChanges() []*domain.TagChange {
	out := make([]*domain.TagChange, 0, len(q.pending))
	for _, change := range q.pending {
		copied := *change
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ChangeHistory returns a point-in-time snapshot of the resolved history
// in resolution order.
func (q *Queue) ChangeHistory() []*domain.TagChange {
	out := make([]*domain.TagChange, 0, len(q.history))
	for _, change := range q.history {
		copied := *change
		out = append(out, &copied)
	}
	return out
}

// HistoryFor returns resolved changes whose old value matches the tag.
func (q *Queue) HistoryFor(tag string) []*domain.TagChange {
	var out []*domain.TagChange
	for _, change := range q.history {
		if change.OldValue == tag {
			copied := *change
			out = append(out, &copied)
		}
	}
	return out
}

func (q *Queue) journalAppend(change *domain.TagChange) {
	if q.journal == nil {
		return
	}
	if err := q.journal.AppendChange(change); err != nil {
		// The in-memory queue stays authoritative; durable log failures
		// are reported, not fatal.
		q.logger.Error("journal append failed", "change_id", change.ID, "error", err)
	}
}
