package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/albumatlas/albumatlas-server/internal/domain"
	domainerrors "github.com/albumatlas/albumatlas-server/internal/errors"
	"github.com/albumatlas/albumatlas-server/internal/review"
	"github.com/albumatlas/albumatlas-server/internal/search"
	"github.com/albumatlas/albumatlas-server/internal/store"
	"github.com/albumatlas/albumatlas-server/internal/validation"
)

// ReviewService orchestrates the human-in-the-loop correction workflow:
// suggesting and validating corrections, moving proposed changes through
// the review queue, applying approved changes back to the vocabulary,
// and scoring tag quality.
type ReviewService struct {
	vocab      *VocabularyService
	journal    *store.Store
	queue      *review.Queue
	versions   *review.Versions
	wfCfg      review.WorkflowConfig
	metricsCfg review.MetricsConfig
	logger     *slog.Logger
	validator  *validation.Validator
}

// NewReviewService creates a review service, replaying any journaled
// change and version history from the store.
func NewReviewService(
	ctx context.Context,
	vocab *VocabularyService,
	journal *store.Store,
	wfCfg review.WorkflowConfig,
	metricsCfg review.MetricsConfig,
	logger *slog.Logger,
) (*ReviewService, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	queue := review.NewQueue(journal, logger)
	versions := review.NewVersions(journal, logger)

	changes, err := journal.ListChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay change journal: %w", err)
	}
	queue.Restore(changes)

	history, err := journal.ListAllVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay version journal: %w", err)
	}
	versions.Restore(history)

	if len(changes) > 0 || len(history) > 0 {
		logger.Info("review journal replayed", "changes", len(changes), "versions", len(history))
	}

	return &ReviewService{
		vocab:      vocab,
		journal:    journal,
		queue:      queue,
		versions:   versions,
		wfCfg:      wfCfg,
		metricsCfg: metricsCfg,
		logger:     logger,
		validator:  validation.New(),
	}, nil
}

// workflow builds a correction workflow over the current analysis view.
// Construction is cheap; building per call means suggestions always see
// the latest rebuild.
func (s *ReviewService) workflow() *review.Workflow {
	normalizer, analyzer, similarity := s.vocab.components()
	return review.NewWorkflow(
		normalizer, analyzer, similarity,
		s.vocab.hierarchy, s.queue, s.vocab.index,
		s.wfCfg, s.logger,
	)
}

// metrics builds a quality scorer over the current analysis view.
func (s *ReviewService) metrics() *review.Metrics {
	normalizer, analyzer, similarity := s.vocab.components()
	return review.NewMetrics(normalizer, analyzer, similarity, s.queue, s.metricsCfg)
}

// SuggestRequest contains fields for requesting correction suggestions.
type SuggestRequest struct {
	Tag string `json:"tag" validate:"required,min=1"`
}

// SuggestCorrections proposes canonical replacements for a tag, ranked
// by confidence.
func (s *ReviewService) SuggestCorrections(req SuggestRequest) ([]domain.CorrectionSuggestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.workflow().SuggestCorrections(req.Tag), nil
}

// ValidateRequest contains fields for validating a proposed correction.
type ValidateRequest struct {
	Original  string `json:"original" validate:"required"`
	Corrected string `json:"corrected" validate:"required"`
}

// ValidateCorrection checks a proposed correction for red flags. An
// empty result means no objection, not an endorsement.
func (s *ReviewService) ValidateCorrection(req ValidateRequest) ([]domain.ValidationIssue, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.workflow().ValidateCorrection(req.Original, req.Corrected), nil
}

// CorrectionRequest contains fields for proposing a correction.
type CorrectionRequest struct {
	Original  string `json:"original" validate:"required"`
	Corrected string `json:"corrected" validate:"required"`
	Reviewer  string `json:"reviewer" validate:"required"`
	Notes     string `json:"notes"`
}

// ApplyCorrection queues a rename for review and returns the change id.
// Nothing touches the vocabulary until the change is approved.
func (s *ReviewService) ApplyCorrection(req CorrectionRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}

	notes := req.Notes
	if notes == "" {
		notes = "proposed by " + req.Reviewer
	}
	changeID, err := s.workflow().ApplyCorrection(req.Original, req.Corrected, req.Reviewer, notes)
	if err != nil {
		return "", err
	}

	s.logger.Info("correction queued",
		"id", changeID, "original", req.Original, "corrected", req.Corrected, "reviewer", req.Reviewer)
	return changeID, nil
}

// ResolveRequest contains fields for approving or rejecting a change.
type ResolveRequest struct {
	ChangeID string `json:"change_id" validate:"required"`
	Reviewer string `json:"reviewer" validate:"required"`
	Notes    string `json:"notes"`
}

// ApproveChange approves a pending change, applies it to the vocabulary,
// and records a new version for the affected tag.
func (s *ReviewService) ApproveChange(ctx context.Context, req ResolveRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	change := s.pendingChange(req.ChangeID)
	if change == nil {
		return domainerrors.NotFoundf("no pending change %q", req.ChangeID)
	}
	if !s.queue.ApproveChange(req.ChangeID, req.Reviewer, req.Notes) {
		return domainerrors.Statef("change %q is not pending", req.ChangeID)
	}

	if err := s.applyApproved(ctx, change); err != nil {
		return err
	}

	if _, err := s.versions.AddTagVersion(change.NewValue,
		fmt.Sprintf("%s from %q (change %s)", change.Type, change.OldValue, change.ID)); err != nil {
		return err
	}

	s.logger.Info("change approved",
		"id", req.ChangeID, "type", change.Type,
		"old", change.OldValue, "new", change.NewValue, "reviewer", req.Reviewer)
	return nil
}

// RejectChange rejects a pending change. The vocabulary is untouched.
func (s *ReviewService) RejectChange(req ResolveRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if !s.queue.RejectChange(req.ChangeID, req.Reviewer, req.Notes) {
		return domainerrors.Statef("change %q is not pending", req.ChangeID)
	}

	s.logger.Info("change rejected", "id", req.ChangeID, "reviewer", req.Reviewer)
	return nil
}

// RollbackRequest contains fields for rolling back an approved change.
type RollbackRequest struct {
	ChangeID string `json:"change_id" validate:"required"`
}

// RollbackChange queues the compensating change for an approved change.
// The inverse goes through review like any other proposal.
func (s *ReviewService) RollbackChange(req RollbackRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if !s.queue.RollbackChange(req.ChangeID) {
		return domainerrors.Statef("change %q is not approved", req.ChangeID)
	}

	s.logger.Info("rollback queued", "id", req.ChangeID)
	return nil
}

// pendingChange finds a pending change by id.
func (s *ReviewService) pendingChange(changeID string) *domain.TagChange {
	for _, change := range s.queue.PendingChanges() {
		if change.ID == changeID {
			return change
		}
	}
	return nil
}

// applyApproved writes an approved change through to the vocabulary.
// Renames and merges fold the old tag into the new one: the new tag
// absorbs the old tag's aliases and frequency, the old tag is excluded,
// and any matching unmapped record is resolved. Deletes exclude the tag.
func (s *ReviewService) applyApproved(ctx context.Context, change *domain.TagChange) error {
	switch change.Type {
	case domain.ChangeRename, domain.ChangeMerge:
		return s.foldTag(ctx, change.OldValue, change.NewValue)
	case domain.ChangeDelete:
		old, err := s.vocab.vocab.GetTagByName(ctx, s.vocab.NormalizeTag(change.OldValue))
		if err != nil {
			if errors.Is(err, store.ErrTagNotFound) {
				return nil
			}
			return err
		}
		return s.vocab.ExcludeTag(ctx, ExcludeTagRequest{TagID: old.ID})
	case domain.ChangeAdd:
		_, _, err := s.vocab.ingestTag(ctx, change.NewValue)
		return err
	default:
		return domainerrors.Validationf("unknown change type %q", change.Type)
	}
}

// foldTag merges the old vocabulary entry into the corrected one.
func (s *ReviewService) foldTag(ctx context.Context, oldValue, newValue string) error {
	vocabStore := s.vocab.vocab

	normalized := s.vocab.NormalizeTag(newValue)
	if normalized == "" {
		normalized = newValue
	}
	target, _, err := vocabStore.FindOrCreateTag(ctx, normalized, titleCaser.String(normalized))
	if err != nil {
		return err
	}
	target.AddAlias(oldValue)

	oldNormalized := s.vocab.NormalizeTag(oldValue)
	if oldNormalized == "" {
		oldNormalized = oldValue
	}
	if oldNormalized != normalized {
		old, err := vocabStore.GetTagByName(ctx, oldNormalized)
		switch {
		case err == nil && old.ID != target.ID:
			target.Frequency += old.Frequency
			for _, alias := range old.Aliases {
				target.AddAlias(alias)
			}
			if err := vocabStore.ExcludeTag(ctx, old.ID); err != nil {
				return err
			}
			if err := s.vocab.index.DeleteTag(old.ID); err != nil {
				return err
			}
		case err != nil && !errors.Is(err, store.ErrTagNotFound):
			return err
		}
	}

	if err := vocabStore.UpdateTag(ctx, target); err != nil {
		return err
	}
	if err := vocabStore.ResolveUnmappedTag(ctx, oldValue); err != nil {
		return err
	}
	return s.vocab.index.IndexTag(search.FromTag(target))
}

// PendingChanges lists changes awaiting review, oldest first.
func (s *ReviewService) PendingChanges() []*domain.TagChange {
	return s.queue.PendingChanges()
}

// ChangeHistory lists resolved changes in resolution order.
func (s *ReviewService) ChangeHistory() []*domain.TagChange {
	return s.queue.ChangeHistory()
}

// CorrectionHistory lists resolved changes touching the given tag.
func (s *ReviewService) CorrectionHistory(tag string) []*domain.TagChange {
	return s.queue.HistoryFor(tag)
}

// TagVersions returns a tag's version history, oldest first.
func (s *ReviewService) TagVersions(tag string) []*domain.TagVersion {
	return s.versions.TagVersions(tag)
}

// LatestTagVersion returns a tag's newest version, or nil.
func (s *ReviewService) LatestTagVersion(tag string) *domain.TagVersion {
	return s.versions.LatestTagVersion(tag)
}

// TagQuality scores a single tag across all quality dimensions.
func (s *ReviewService) TagQuality(tag string) domain.TagQualityScore {
	return s.metrics().OverallScore(tag)
}

// QualityReport lists tags scoring below the threshold, worst first.
// A non-positive threshold uses the configured default.
func (s *ReviewService) QualityReport(threshold float64) []domain.TagQualityScore {
	return s.metrics().LowQualityTags(threshold)
}
