package service

import (
	"context"
	"net"
	"strings"

	"analytics/internal/geo"
	"analytics/internal/models"
	"analytics/internal/observability"
	"analytics/internal/repository"
)

// GeoLocator resolves an IP to an approximate location. Implementations
// must not fail; an unknown location is an empty geo.Location.
type GeoLocator interface {
	Lookup(ctx context.Context, ip string) geo.Location
}

type ViewService struct {
	store *repository.Store
	geo   GeoLocator
}

type RecordViewInput struct {
	ProfileOwnerID uint
	ViewerName     string
	IPAddress      string
}

func NewViewService(store *repository.Store, locator GeoLocator) *ViewService {
	return &ViewService{store: store, geo: locator}
}

// RecordView stores a visit to a profile, enriched with the visitor's
// location when it can be resolved. The lookup runs before the write
// transaction opens so no connection is held during the network call.
func (s *ViewService) RecordView(ctx context.Context, in RecordViewInput) (*models.ProfileView, error) {
	if in.ProfileOwnerID == 0 {
		return nil, models.NewValidationError("profile_owner_id must be a positive integer")
	}
	if _, err := s.store.Users.GetByID(ctx, in.ProfileOwnerID); err != nil {
		return nil, err
	}

	ip := strings.TrimSpace(in.IPAddress)
	if net.ParseIP(ip) == nil {
		ip = ""
	}
	var loc geo.Location
	if s.geo != nil {
		loc = s.geo.Lookup(ctx, ip)
	}

	var view *models.ProfileView
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		viewer, err := tx.Users.GetOrCreate(ctx, in.ViewerName)
		if err != nil {
			return err
		}
		v := &models.ProfileView{
			ProfileOwnerID: in.ProfileOwnerID,
			ViewerID:       &viewer.ID,
			ViewerName:     viewer.Name,
			IPAddress:      ip,
			City:           loc.City,
			Region:         loc.Region,
			Country:        loc.Country,
			Latitude:       loc.Latitude,
			Longitude:      loc.Longitude,
		}
		if err := tx.Views.Create(ctx, v); err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ProfileViewsRecorded.Inc()
	return view, nil
}

// RecentViews returns the newest views of ownerID's profile.
func (s *ViewService) RecentViews(ctx context.Context, ownerID uint, limit int) ([]*models.ProfileView, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	return s.store.Views.RecentByOwner(ctx, ownerID, limit)
}
