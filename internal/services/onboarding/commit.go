package onboarding

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/metrics"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles"
)

// CommitConfig holds the commit protocol's collaborators
type CommitConfig struct {
	Repository profiles.Repository // Required
	// IncludeInterests adds the selected interests to the payload
	IncludeInterests bool
	Metrics          *metrics.Metrics
	Logger           *zap.Logger
}

// CommitProtocol turns a finished draft into the single merge that marks a
// profile complete
type CommitProtocol struct {
	repository       profiles.Repository
	includeInterests bool
	metrics          *metrics.Metrics
	logger           *zap.Logger
}

// NewCommitProtocol creates a commit protocol
func NewCommitProtocol(cfg *CommitConfig) *CommitProtocol {
	if cfg.Repository == nil {
		panic("profile repository is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommitProtocol{
		repository:       cfg.Repository,
		includeInterests: cfg.IncludeInterests,
		metrics:          cfg.Metrics,
		logger:           logger,
	}
}

// BuildUpdate maps a draft onto the stored record's attributes. The
// completion flag rides in the same update so the two can never be split.
func (c *CommitProtocol) BuildUpdate(draft *profile.Draft) *profile.Update {
	update := &profile.Update{
		ProfileCompleted: profile.Ptr(true),
		Name:             profile.Ptr(draft.DisplayName()),
		Gender:           profile.Ptr(draft.Gender()),
		Bio:              profile.Ptr(draft.Bio()),
		HighlightColor:   profile.Ptr(draft.HighlightColor()),
		Availability:     draft.Availability().Cells(),
	}
	if draft.HasPicture() {
		update.ProfilePicture = profile.Ptr(draft.Picture())
	}
	if c.includeInterests {
		update.Interests = draft.Interests().Strings()
		if update.Interests == nil {
			update.Interests = []string{}
		}
	}
	return update
}

// Commit issues one merge for the principal. Failures are reported once and
// never retried here.
func (c *CommitProtocol) Commit(ctx context.Context, principalID string, draft *profile.Draft) error {
	if principalID == "" {
		c.metrics.ObserveCommit(string(apperr.CodeUnauthenticated), 0)
		return apperr.Unauthenticated("no signed-in user to commit for")
	}
	if draft == nil {
		return apperr.InvalidArgument("draft cannot be nil")
	}

	start := time.Now()
	err := c.repository.Merge(ctx, principalID, c.BuildUpdate(draft))
	elapsed := time.Since(start)

	if err != nil {
		err = classifyStoreError(err, "failed to commit profile")
		c.metrics.ObserveCommit(string(apperr.GetCode(err)), elapsed)
		c.logger.Warn("profile commit failed",
			zap.String("profile_id", principalID),
			zap.String("code", string(apperr.GetCode(err))),
			zap.Error(err),
		)
		return apperr.Wrap(err, "failed to commit profile").WithMeta("profile_id", principalID)
	}

	c.metrics.ObserveCommit("ok", elapsed)
	c.logger.Info("profile committed",
		zap.String("profile_id", principalID),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

// classifyStoreError keeps coded store errors and treats anything uncoded
// as the backend being unavailable
func classifyStoreError(err error, message string) error {
	switch apperr.GetCode(err) {
	case apperr.CodeUnknown, apperr.CodeInternal:
		return apperr.Unavailable(err, message)
	default:
		return err
	}
}
