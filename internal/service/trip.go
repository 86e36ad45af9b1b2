// Package service contains the business logic for the Trip Atlas API.
// The trip service is the mutation engine: every mutating call runs
// validate → acquire lock → check invariants → write → release lock →
// post-process. Location validation and response resolution both involve
// slow external lookups, so they are kept strictly outside the locked
// critical section; the lock only ever spans row writes.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
	"github.com/mwhitfield/tripatlas/backend/internal/rowstore"
)

// LocationResolver is the resolution surface the trip service depends on.
// Defined here (in the consumer package) so tests can inject a mock without
// touching the directory or geocoder.
type LocationResolver interface {
	Resolve(ctx context.Context, location string, mode domain.Mode) (domain.ResolvedLocation, error)
}

// TripService implements trip reads and the mutation engine.
type TripService struct {
	store    rowstore.Store
	lock     rowstore.Lock
	resolver LocationResolver
}

// NewTripService constructs a TripService.
func NewTripService(store rowstore.Store, lock rowstore.Lock, resolver LocationResolver) *TripService {
	return &TripService{store: store, lock: lock, resolver: resolver}
}

// List returns every trip with its legs sorted by order ascending and both
// endpoints re-resolved. No lock is taken: a mutation in flight may be
// observed as a torn read (a trip row without its legs), which is accepted
// because reads are idempotent and re-run on each request.
func (s *TripService) List(ctx context.Context) ([]domain.TripDetail, error) {
	tripRows, err := s.store.GetRows(ctx, rowstore.SheetTrips)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	legRows, err := s.store.GetRows(ctx, rowstore.SheetLegs)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}

	legsByTrip := make(map[string][]domain.Leg)
	for i := 1; i < len(legRows); i++ {
		leg, err := parseLegRow(legRows[i])
		if err != nil {
			continue // tolerate a malformed row instead of failing the read
		}
		legsByTrip[leg.TripID] = append(legsByTrip[leg.TripID], leg)
	}

	trips := make([]domain.TripDetail, 0, len(tripRows))
	for i := 1; i < len(tripRows); i++ {
		trip, err := parseTripRow(tripRows[i])
		if err != nil {
			continue
		}
		legs := legsByTrip[trip.ID]
		// Order values may have gaps or duplicates; sorting is the only
		// guarantee consumers get.
		sort.SliceStable(legs, func(a, b int) bool { return legs[a].Order < legs[b].Order })

		detail := domain.TripDetail{Trip: trip, Legs: make([]domain.ResolvedLeg, 0, len(legs))}
		for _, leg := range legs {
			detail.Legs = append(detail.Legs, s.resolveLeg(ctx, leg))
		}
		trips = append(trips, detail)
	}
	return trips, nil
}

// Create validates and persists a new trip with its legs.
// Uniqueness of the id is checked authoritatively inside the lock; the
// pre-lock validation only covers fields and location resolution.
func (s *TripService) Create(ctx context.Context, in domain.TripInput) (domain.TripDetail, error) {
	if in.ID == "" && in.Name != "" && !in.StartDate.IsZero() {
		in.ID = deriveTripID(in.Name, in.StartDate.Year())
	}
	if err := s.validateInput(ctx, in); err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	if err := s.lock.Acquire(ctx); err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	// Authoritative uniqueness check. Re-done under the lock because the
	// validation above ran outside it.
	if _, err := s.findTrip(ctx, in.ID); err == nil {
		s.lock.Release(ctx)
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Create: %w: trip id %q already exists", domain.ErrConflict, in.ID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.lock.Release(ctx)
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	tripCells := []string{in.ID, in.Name, domain.FormatDate(in.StartDate), domain.FormatDate(in.EndDate)}
	if err := s.store.AppendRow(ctx, rowstore.SheetTrips, tripCells); err != nil {
		s.lock.Release(ctx)
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	legs, err := s.appendLegs(ctx, in.ID, in.Legs)
	if err != nil {
		// Best-effort compensating rollback: remove the trip row and any
		// legs already appended, so a mid-loop failure does not leave a
		// half-written aggregate behind.
		s.removeTripRows(ctx, in.ID)
		s.lock.Release(ctx)
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	// Release before building the response: resolving the payload may call
	// the geocoder again and must not extend the critical section.
	s.lock.Release(ctx)

	return s.buildDetail(ctx, domain.Trip{ID: in.ID, Name: in.Name, StartDate: in.StartDate, EndDate: in.EndDate}, legs), nil
}

// Update performs a full replace: the trip's mutable fields are updated in
// place, all existing legs are deleted, and the new leg set is appended.
// The trip id is immutable.
func (s *TripService) Update(ctx context.Context, id string, in domain.TripInput) (domain.TripDetail, error) {
	in.ID = id
	if err := s.validateInput(ctx, in); err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	if err := s.lock.Acquire(ctx); err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	pos, err := s.findTrip(ctx, id)
	if err != nil {
		s.lock.Release(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TripDetail{}, fmt.Errorf("service.TripService.Update: %w: trip %q not found", domain.ErrNotFound, id)
		}
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	for col, value := range map[int]string{
		rowstore.TripColName:      in.Name,
		rowstore.TripColStartDate: domain.FormatDate(in.StartDate),
		rowstore.TripColEndDate:   domain.FormatDate(in.EndDate),
	} {
		if err := s.store.UpdateCell(ctx, rowstore.SheetTrips, pos, col, value); err != nil {
			s.lock.Release(ctx)
			return domain.TripDetail{}, fmt.Errorf("service.TripService.Update: %w", err)
		}
	}

	if err := s.deleteLegs(ctx, id); err != nil {
		s.lock.Release(ctx)
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	legs, err := s.appendLegs(ctx, id, in.Legs)
	if err != nil {
		s.lock.Release(ctx)
		return domain.TripDetail{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	s.lock.Release(ctx)

	return s.buildDetail(ctx, domain.Trip{ID: id, Name: in.Name, StartDate: in.StartDate, EndDate: in.EndDate}, legs), nil
}

// Delete removes a trip and all of its legs. No post-lock resolution step
// is needed, so the lock spans the whole operation.
func (s *TripService) Delete(ctx context.Context, id string) error {
	if err := s.lock.Acquire(ctx); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	defer s.lock.Release(ctx)

	pos, err := s.findTrip(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("service.TripService.Delete: %w: trip %q not found", domain.ErrNotFound, id)
		}
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}

	if err := s.deleteLegs(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.store.DeleteRow(ctx, rowstore.SheetTrips, pos); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// --- validation -------------------------------------------------------------

// validateInput checks required fields and that every leg's endpoints
// resolve under its mode. Runs entirely before the lock; the first failing
// leg short-circuits with a leg-indexed, mode-aware message.
func (s *TripService) validateInput(ctx context.Context, in domain.TripInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: trip name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("%w: trip id is required", domain.ErrValidation)
	}
	if in.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", domain.ErrValidation)
	}
	if in.EndDate.IsZero() {
		return fmt.Errorf("%w: end date is required", domain.ErrValidation)
	}

	for i, leg := range in.Legs {
		n := i + 1
		if leg.DepartureDate.IsZero() {
			return fmt.Errorf("%w: leg %d: departure date is required", domain.ErrValidation, n)
		}
		if err := s.validateEndpoint(ctx, leg.Origin, leg.Mode, n, "origin"); err != nil {
			return err
		}
		if err := s.validateEndpoint(ctx, leg.Destination, leg.Mode, n, "destination"); err != nil {
			return err
		}
	}
	return nil
}

func (s *TripService) validateEndpoint(ctx context.Context, location string, mode domain.Mode, n int, field string) error {
	if _, err := s.resolver.Resolve(ctx, location, mode); err != nil {
		if mode.IsFlight() {
			return fmt.Errorf("%w: leg %d: %s airport code %q not found", domain.ErrValidation, n, field, strings.ToUpper(strings.TrimSpace(location)))
		}
		return fmt.Errorf("%w: leg %d: %s location %q could not be resolved", domain.ErrValidation, n, field, strings.TrimSpace(location))
	}
	return nil
}

// --- row helpers ------------------------------------------------------------

// findTrip locates a trip row by exact, case-sensitive id match.
func (s *TripService) findTrip(ctx context.Context, id string) (int, error) {
	return s.store.FindExactMatch(ctx, rowstore.SheetTrips, id, rowstore.TripColID)
}

// appendLegs writes one row per input leg. Order is assigned from slice
// position (1-indexed); any caller-provided order is discarded. Flight
// endpoints are uppercased before storage, other modes keep their casing.
func (s *TripService) appendLegs(ctx context.Context, tripID string, inputs []domain.LegInput) ([]domain.Leg, error) {
	legs := make([]domain.Leg, 0, len(inputs))
	for i, in := range inputs {
		leg := domain.Leg{
			TripID:        tripID,
			Order:         i + 1,
			Origin:        strings.TrimSpace(in.Origin),
			Destination:   strings.TrimSpace(in.Destination),
			DepartureDate: in.DepartureDate,
			ArrivalDate:   in.ArrivalDate,
			Mode:          in.Mode,
		}
		if leg.Mode.IsFlight() {
			leg.Origin = strings.ToUpper(leg.Origin)
			leg.Destination = strings.ToUpper(leg.Destination)
		}

		arrival := ""
		if leg.ArrivalDate != nil {
			arrival = domain.FormatDate(*leg.ArrivalDate)
		}
		cells := []string{
			leg.TripID,
			strconv.Itoa(leg.Order),
			leg.Origin,
			leg.Destination,
			domain.FormatDate(leg.DepartureDate),
			arrival,
			leg.Mode.String(),
		}
		if err := s.store.AppendRow(ctx, rowstore.SheetLegs, cells); err != nil {
			return nil, fmt.Errorf("append leg %d: %w", i+1, err)
		}
		legs = append(legs, leg)
	}
	return legs, nil
}

// deleteLegs removes every leg row for the trip, deleting from the highest
// position to the lowest so earlier deletions do not shift rows not yet
// deleted.
func (s *TripService) deleteLegs(ctx context.Context, tripID string) error {
	rows, err := s.store.GetRows(ctx, rowstore.SheetLegs)
	if err != nil {
		return err
	}
	var positions []int
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) > 0 && rows[i][rowstore.LegColTripID-1] == tripID {
			positions = append(positions, i+1)
		}
	}
	for i := len(positions) - 1; i >= 0; i-- {
		if err := s.store.DeleteRow(ctx, rowstore.SheetLegs, positions[i]); err != nil {
			return err
		}
	}
	return nil
}

// removeTripRows is the compensating rollback for a partial create: it
// deletes the trip's legs and then its trip row, ignoring errors — the
// original failure is what gets reported.
func (s *TripService) removeTripRows(ctx context.Context, id string) {
	_ = s.deleteLegs(ctx, id)
	if pos, err := s.findTrip(ctx, id); err == nil {
		_ = s.store.DeleteRow(ctx, rowstore.SheetTrips, pos)
	}
}

// --- read model -------------------------------------------------------------

// resolveLeg re-resolves both endpoints of a stored leg. Resolution
// failures leave the corresponding pointer nil rather than failing the leg.
func (s *TripService) resolveLeg(ctx context.Context, leg domain.Leg) domain.ResolvedLeg {
	out := domain.ResolvedLeg{Leg: leg}
	if loc, err := s.resolver.Resolve(ctx, leg.Origin, leg.Mode); err == nil {
		out.OriginResolved = &loc
	}
	if loc, err := s.resolver.Resolve(ctx, leg.Destination, leg.Mode); err == nil {
		out.DestinationResolved = &loc
	}
	return out
}

// buildDetail assembles the response payload for a mutation, re-running the
// resolver over the just-written legs. Runs after the lock is released.
func (s *TripService) buildDetail(ctx context.Context, trip domain.Trip, legs []domain.Leg) domain.TripDetail {
	detail := domain.TripDetail{Trip: trip, Legs: make([]domain.ResolvedLeg, 0, len(legs))}
	for _, leg := range legs {
		detail.Legs = append(detail.Legs, s.resolveLeg(ctx, leg))
	}
	return detail
}

// --- parsing ----------------------------------------------------------------

func parseTripRow(row []string) (domain.Trip, error) {
	if len(row) < 4 {
		return domain.Trip{}, fmt.Errorf("trip row has %d cells, want 4", len(row))
	}
	start, err := domain.ParseDate(row[rowstore.TripColStartDate-1])
	if err != nil {
		return domain.Trip{}, err
	}
	var end = start
	if s := row[rowstore.TripColEndDate-1]; s != "" {
		end, err = domain.ParseDate(s)
		if err != nil {
			return domain.Trip{}, err
		}
	}
	return domain.Trip{
		ID:        row[rowstore.TripColID-1],
		Name:      row[rowstore.TripColName-1],
		StartDate: start,
		EndDate:   end,
	}, nil
}

func parseLegRow(row []string) (domain.Leg, error) {
	if len(row) < 7 {
		return domain.Leg{}, fmt.Errorf("leg row has %d cells, want 7", len(row))
	}
	order, err := strconv.Atoi(row[rowstore.LegColOrder-1])
	if err != nil {
		return domain.Leg{}, fmt.Errorf("leg row: bad order %q", row[rowstore.LegColOrder-1])
	}
	departure, err := domain.ParseDate(row[rowstore.LegColDepartureDate-1])
	if err != nil {
		return domain.Leg{}, err
	}
	var arrival *time.Time
	if s := row[rowstore.LegColArrivalDate-1]; s != "" {
		t, err := domain.ParseDate(s)
		if err != nil {
			return domain.Leg{}, err
		}
		arrival = &t
	}
	mode, err := domain.ParseMode(row[rowstore.LegColMode-1])
	if err != nil {
		return domain.Leg{}, err
	}
	return domain.Leg{
		TripID:        row[rowstore.LegColTripID-1],
		Order:         order,
		Origin:        row[rowstore.LegColOrigin-1],
		Destination:   row[rowstore.LegColDestination-1],
		DepartureDate: departure,
		ArrivalDate:   arrival,
		Mode:          mode,
	}, nil
}
