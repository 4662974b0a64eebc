package services

import (
	"context"
	"log/slog"
	"time"

	"article-api/models"
	"article-api/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageService uploads article images to the asset store and returns their public URL.
type ImageService interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig opens the breaker after 60% failures over at least 5 calls.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

type imageService struct {
	store    storage.System
	baseURL  string
	maxBytes int64
	cb       *gobreaker.CircuitBreaker
	logger   *slog.Logger
}

func NewImageService(store storage.System, baseURL string, maxBytes int64, breaker BreakerConfig, logger *slog.Logger) ImageService {
	logger = logger.With("service", "image")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "asset-store",
		MaxRequests: breaker.MaxRequests,
		Interval:    breaker.Interval,
		Timeout:     breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breaker.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= breaker.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &imageService{
		store:    store,
		baseURL:  baseURL,
		maxBytes: maxBytes,
		cb:       cb,
		logger:   logger,
	}
}

func (s *imageService) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", models.NewInvalidArgument("image is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", models.NewInvalidArgument("image exceeds %d bytes", s.maxBytes)
	}

	mtype := mimetype.Detect(data)
	if !allowedImageTypes[mtype.String()] {
		return "", models.NewInvalidArgument("image type %s is not supported", mtype.String())
	}

	key := "articles/" + uuid.NewString() + mtype.Extension()
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.store.Store(ctx, key, data)
	})
	if err != nil {
		s.logger.Error("image upload failed", "key", key, "error", err)
		return "", models.NewUpstream("upload image", err)
	}

	return s.baseURL + "/uploads/" + key, nil
}
