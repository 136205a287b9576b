package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

var ErrUsernameRequired = errors.New("username required")

// InvalidServiceError reports a service outside the supported set; its
// message enumerates the valid choices.
type InvalidServiceError struct {
	Service string
}

func (e *InvalidServiceError) Error() string {
	return fmt.Sprintf("invalid service %q, allowed services: %s", e.Service, strings.Join(allowedServices, ", "))
}

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// Upsert validates and stores a gaming-service link. Validation failures
// occur before any store mutation; the connection timestamp is refreshed on
// every replace.
func (s *Service) Upsert(ctx context.Context, service, username string) (*Integration, error) {
	service = strings.ToLower(strings.TrimSpace(service))
	username = strings.TrimSpace(username)

	if !validService(service) {
		return nil, &InvalidServiceError{Service: service}
	}
	if username == "" {
		return nil, ErrUsernameRequired
	}

	rec := &Integration{
		Service:     service,
		Username:    username,
		ConnectedAt: time.Now(),
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record for one service, or nil when nothing is stored.
func (s *Service) Get(ctx context.Context, service string) (*Integration, error) {
	service = strings.ToLower(strings.TrimSpace(service))
	rec, err := s.repo.GetByService(ctx, service)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context) ([]Integration, error) {
	return s.repo.List(ctx)
}

// Remove deletes the record for one service; unknown services fail
// validation and absent records report not-found.
func (s *Service) Remove(ctx context.Context, service string) error {
	service = strings.ToLower(strings.TrimSpace(service))
	if !validService(service) {
		return &InvalidServiceError{Service: service}
	}
	return s.repo.DeleteByService(ctx, service)
}
