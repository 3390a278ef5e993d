package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
)

var discountCodePattern = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

type discountCodeStore interface {
	Create(ctx context.Context, input repository.CreateDiscountCodeInput) (*models.DiscountCode, error)
	GetByID(ctx context.Context, id int64) (*models.DiscountCode, error)
	GetByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	List(ctx context.Context) ([]models.DiscountCode, error)
	Update(ctx context.Context, id int64, percent, maxUses int, expireDate time.Time, active bool) (*models.DiscountCode, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type DiscountService struct {
	discountRepo discountCodeStore
	now          func() time.Time
}

func NewDiscountService(discountRepo *repository.DiscountCodeRepository) *DiscountService {
	return &DiscountService{discountRepo: discountRepo, now: time.Now}
}

type CreateDiscountCodeInput struct {
	Code       string
	Percent    int
	Usage      string
	MaxUses    int
	ExpireDate time.Time
	LocationID *int64
}

// ValidateDiscountInput enforces the creation rules: code format, percent
// range, future expiry, and a positive use limit for multi-use codes.
func ValidateDiscountInput(input CreateDiscountCodeInput, now time.Time) error {
	if !discountCodePattern.MatchString(input.Code) {
		return ErrInvalidInput
	}
	if input.Percent < 1 || input.Percent > 100 {
		return ErrInvalidInput
	}
	if input.Usage != models.DiscountUsageSingle && input.Usage != models.DiscountUsageMultiple {
		return ErrInvalidInput
	}
	if input.Usage == models.DiscountUsageMultiple && input.MaxUses < 1 {
		return ErrInvalidInput
	}
	if !input.ExpireDate.After(now) {
		return ErrInvalidInput
	}
	return nil
}

func (s *DiscountService) Create(ctx context.Context, input CreateDiscountCodeInput) (*models.DiscountCode, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if err := ValidateDiscountInput(input, s.now()); err != nil {
		return nil, err
	}

	maxUses := input.MaxUses
	if input.Usage == models.DiscountUsageSingle {
		maxUses = 1
	}

	return s.discountRepo.Create(ctx, repository.CreateDiscountCodeInput{
		Code:       input.Code,
		Percent:    input.Percent,
		Usage:      input.Usage,
		MaxUses:    maxUses,
		ExpireDate: input.ExpireDate,
		LocationID: input.LocationID,
	})
}

func (s *DiscountService) List(ctx context.Context) ([]models.DiscountCode, error) {
	return s.discountRepo.List(ctx)
}

func (s *DiscountService) Get(ctx context.Context, id int64) (*models.DiscountCode, error) {
	code, err := s.discountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return code, nil
}

func (s *DiscountService) Update(
	ctx context.Context,
	id int64,
	percent, maxUses int,
	expireDate time.Time,
	active bool,
) (*models.DiscountCode, error) {
	if percent < 1 || percent > 100 || maxUses < 1 || !expireDate.After(s.now()) {
		return nil, ErrInvalidInput
	}
	code, err := s.discountRepo.Update(ctx, id, percent, maxUses, expireDate, active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return code, nil
}

func (s *DiscountService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.discountRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// CheckCode resolves a code to its discount when it is currently redeemable.
func (s *DiscountService) CheckCode(ctx context.Context, code string, locationID int64) (*models.DiscountCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !discountCodePattern.MatchString(code) {
		return nil, ErrInvalidInput
	}

	discount, err := s.discountRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !discount.Usable(s.now()) {
		return nil, ErrDiscountNotUsable
	}
	if discount.LocationID != nil && locationID > 0 && *discount.LocationID != locationID {
		return nil, ErrDiscountNotUsable
	}
	return discount, nil
}
