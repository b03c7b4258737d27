package repository

import (
	"context"

	"proxyshare/internal/models"

	"gorm.io/gorm"
)

// ReportRepository is the append-only ledger of validity votes.
// There is no update or withdraw operation and no read-side aggregation;
// the single insert pushes the one-vote-per-user invariant down to the
// unique (proxy_id, user_id) index.
type ReportRepository interface {
	Create(ctx context.Context, report *models.ValidityReport) error
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository returns a new ReportRepository implementation.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.ValidityReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateVoteError()
		}
		return models.NewInternalError(err)
	}
	return nil
}
