package preference

import (
	"context"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/repository"
	"github.com/mybbstuff/alerts-engine/pkg/errors"
)

// Service manages the per-user disabled alert type list. The list is display
// scoped: it hides alerts from the user's listings but never stops creation,
// which is gated only by the global enable flag.
type Service interface {
	Get(ctx context.Context, uid int64) (*model.UserPreference, error)
	Update(ctx context.Context, uid int64, disabled []string) error
}

type service struct {
	repo repository.UserPreferenceRepository
}

func NewService(repo repository.UserPreferenceRepository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, uid int64) (*model.UserPreference, error) {
	if uid <= 0 {
		return nil, errors.NewValidation("uid must be positive")
	}
	return s.repo.Get(ctx, uid)
}

// Update replaces the list wholesale. Codes are not validated against the
// catalog; a code that no longer exists is simply inert.
func (s *service) Update(ctx context.Context, uid int64, disabled []string) error {
	if uid <= 0 {
		return errors.NewValidation("uid must be positive")
	}

	codes := make(model.DisabledCodes, 0, len(disabled))
	seen := make(map[string]struct{}, len(disabled))
	for _, code := range disabled {
		if code == "" {
			return errors.NewValidation("alert type code must not be empty")
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	return s.repo.Set(ctx, uid, codes)
}
