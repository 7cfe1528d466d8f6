package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"printstore-api/internal/core/cache"
	"printstore-api/internal/core/logger"
	"printstore-api/internal/features/pincode/domain"
	"printstore-api/internal/features/pincode/ports"
)

// ErrInvalidPincode is returned when the pincode fails shape validation.
var ErrInvalidPincode = errors.New("pincode must be 3 to 6 digits")

// serviceabilityTTL bounds how long a cached verdict is served. Courier
// coverage changes rarely; five minutes keeps the table off the hot path.
const serviceabilityTTL = 5 * time.Minute

var pincodePattern = regexp.MustCompile(`^\d{3,6}$`)

// PincodeService answers deliverability checks against the aggregated
// courier coverage table, with a shared cache in front.
type PincodeService struct {
	repo  ports.PincodeRepository
	cache cache.Cache // optional, may be nil
}

// NewPincodeService creates a new PincodeService. cache may be nil.
func NewPincodeService(repo ports.PincodeRepository, cache cache.Cache) *PincodeService {
	return &PincodeService{
		repo:  repo,
		cache: cache,
	}
}

// Check validates the pincode shape and returns its serviceability.
func (s *PincodeService) Check(ctx context.Context, pincode string) (*domain.Serviceability, error) {
	if !pincodePattern.MatchString(pincode) {
		return nil, ErrInvalidPincode
	}

	if cached := s.fromCache(ctx, pincode); cached != nil {
		return cached, nil
	}

	serviceability, err := s.repo.Lookup(ctx, pincode)
	if err != nil {
		if errors.Is(err, domain.ErrPincodeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("serviceability lookup failed: %w", err)
	}

	s.toCache(ctx, pincode, serviceability)
	return serviceability, nil
}

func cacheKey(pincode string) string {
	return "pincode:" + pincode
}

func (s *PincodeService) fromCache(ctx context.Context, pincode string) *domain.Serviceability {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, cacheKey(pincode))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Get().Warn("Pincode cache read failed", zap.Error(err))
		}
		return nil
	}

	var serviceability domain.Serviceability
	if err := json.Unmarshal(data, &serviceability); err != nil {
		return nil
	}
	return &serviceability
}

func (s *PincodeService) toCache(ctx context.Context, pincode string, serviceability *domain.Serviceability) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(serviceability)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(pincode), data, serviceabilityTTL); err != nil {
		logger.Get().Warn("Pincode cache write failed", zap.Error(err))
	}
}
