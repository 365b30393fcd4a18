package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/labops/labops-api/internal/models"
	appErrors "github.com/labops/labops-api/pkg/errors"
)

type scheduleRepoStub struct {
	schedules []models.Schedule
	byID      map[string]*models.Schedule
	created   *models.Schedule
	updated   *models.Schedule
	deleted   string
	rangeErr  error
}

func (s *scheduleRepoStub) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	return s.schedules, len(s.schedules), nil
}

func (s *scheduleRepoStub) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if sched, ok := s.byID[id]; ok {
		return sched, nil
	}
	return nil, sql.ErrNoRows
}

func (s *scheduleRepoStub) ListForResourceRange(ctx context.Context, resourceID string, start, end time.Time) ([]models.Schedule, error) {
	if s.rangeErr != nil {
		return nil, s.rangeErr
	}
	var out []models.Schedule
	for _, sched := range s.schedules {
		if sched.ResourceID == resourceID {
			out = append(out, sched)
		}
	}
	return out, nil
}

func (s *scheduleRepoStub) Create(ctx context.Context, schedule *models.Schedule) error {
	schedule.ID = "created-id"
	s.created = schedule
	return nil
}

func (s *scheduleRepoStub) Update(ctx context.Context, schedule *models.Schedule) error {
	s.updated = schedule
	return nil
}

func (s *scheduleRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = id
	return nil
}

type resourceFinderStub struct {
	resources map[string]*models.Resource
}

func (s *resourceFinderStub) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	if r, ok := s.resources[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

type workOrderFinderStub struct {
	orders map[string]*models.WorkOrder
}

func (s *workOrderFinderStub) FindByID(ctx context.Context, id string) (*models.WorkOrder, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, sql.ErrNoRows
}

type cacheInvalidatorStub struct {
	prefixes []string
}

func (s *cacheInvalidatorStub) InvalidatePrefix(ctx context.Context, prefix string) error {
	s.prefixes = append(s.prefixes, prefix)
	return nil
}

func day(hours int) time.Time {
	return time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC).Add(time.Duration(hours) * time.Hour)
}

func newScheduleService(repo *scheduleRepoStub) (*ScheduleService, *cacheInvalidatorStub) {
	resources := &resourceFinderStub{resources: map[string]*models.Resource{
		"res-1": {ID: "res-1", Name: "Sequencer A", Active: true},
		"res-2": {ID: "res-2", Name: "Centrifuge", Active: true},
		"res-x": {ID: "res-x", Name: "Retired", Active: false},
	}}
	orders := &workOrderFinderStub{orders: map[string]*models.WorkOrder{
		"wo-1": {ID: "wo-1", Code: "WO-100"},
	}}
	cache := &cacheInvalidatorStub{}
	return NewScheduleService(repo, resources, orders, cache, nil, zap.NewNop()), cache
}

func TestScheduleServiceCreate(t *testing.T) {
	repo := &scheduleRepoStub{}
	svc, cache := newScheduleService(repo)

	created, err := svc.Create(context.Background(), CreateScheduleRequest{
		ResourceID:    "res-1",
		StartTime:     day(10),
		EndTime:       day(12),
		Title:         "Calibration run",
		PriorityLevel: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "created-id", created.ID)
	assert.Equal(t, "scheduled", created.Status)
	assert.Equal(t, 2, created.PriorityLevel)
	require.NotNil(t, repo.created)
	assert.Equal(t, []string{GanttCachePrefix}, cache.prefixes)
}

func TestScheduleServiceCreateRejectsOverlap(t *testing.T) {
	repo := &scheduleRepoStub{schedules: []models.Schedule{
		{ID: "s1", ResourceID: "res-1", StartTime: day(10), EndTime: day(12), Title: "Existing"},
	}}
	svc, cache := newScheduleService(repo)

	_, err := svc.Create(context.Background(), CreateScheduleRequest{
		ResourceID: "res-1",
		StartTime:  day(11),
		EndTime:    day(13),
		Title:      "Clashing",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	var conflictErr *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, "s1", conflictErr.Conflicts[0].ScheduleID)
	assert.Nil(t, repo.created)
	assert.Empty(t, cache.prefixes)
}

func TestScheduleServiceCreateAllowsTouchingEndpoints(t *testing.T) {
	repo := &scheduleRepoStub{schedules: []models.Schedule{
		{ID: "s1", ResourceID: "res-1", StartTime: day(10), EndTime: day(12)},
	}}
	svc, _ := newScheduleService(repo)

	_, err := svc.Create(context.Background(), CreateScheduleRequest{
		ResourceID: "res-1",
		StartTime:  day(12),
		EndTime:    day(14),
		Title:      "Back to back",
	})
	assert.NoError(t, err)
}

func TestScheduleServiceCreateIgnoresOtherResources(t *testing.T) {
	repo := &scheduleRepoStub{schedules: []models.Schedule{
		{ID: "s1", ResourceID: "res-2", StartTime: day(10), EndTime: day(12)},
	}}
	svc, _ := newScheduleService(repo)

	_, err := svc.Create(context.Background(), CreateScheduleRequest{
		ResourceID: "res-1",
		StartTime:  day(10),
		EndTime:    day(12),
		Title:      "Parallel booking",
	})
	assert.NoError(t, err)
}

func TestScheduleServiceCreateValidation(t *testing.T) {
	repo := &scheduleRepoStub{}
	svc, _ := newScheduleService(repo)

	_, err := svc.Create(context.Background(), CreateScheduleRequest{
		ResourceID: "res-1",
		StartTime:  day(12),
		EndTime:    day(10),
		Title:      "Inverted",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateScheduleRequest{
		ResourceID: "res-x",
		StartTime:  day(10),
		EndTime:    day(12),
		Title:      "On retired resource",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateScheduleRequest{
		ResourceID: "missing",
		StartTime:  day(10),
		EndTime:    day(12),
		Title:      "On unknown resource",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceCreateNormalizesPriority(t *testing.T) {
	repo := &scheduleRepoStub{}
	svc, _ := newScheduleService(repo)

	created, err := svc.Create(context.Background(), CreateScheduleRequest{
		ResourceID:    "res-1",
		StartTime:     day(10),
		EndTime:       day(12),
		Title:         "Weird priority",
		PriorityLevel: 42,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, created.PriorityLevel)
}

func TestScheduleServiceUpdateExcludesSelf(t *testing.T) {
	existing := &models.Schedule{
		ID: "s1", ResourceID: "res-1",
		StartTime: day(10), EndTime: day(12), Title: "Original",
		PriorityLevel: 3, Status: "scheduled",
	}
	repo := &scheduleRepoStub{
		schedules: []models.Schedule{*existing},
		byID:      map[string]*models.Schedule{"s1": existing},
	}
	svc, _ := newScheduleService(repo)

	// Extending the booking overlaps only with itself, which must not count.
	updated, err := svc.Update(context.Background(), "s1", UpdateScheduleRequest{
		ResourceID: "res-1",
		StartTime:  day(10),
		EndTime:    day(14),
		Title:      "Extended",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", updated.ID)
	assert.Equal(t, day(14), updated.EndTime)
	require.NotNil(t, repo.updated)
}

func TestScheduleServiceDelete(t *testing.T) {
	existing := &models.Schedule{ID: "s1", ResourceID: "res-1", StartTime: day(10), EndTime: day(12)}
	repo := &scheduleRepoStub{byID: map[string]*models.Schedule{"s1": existing}}
	svc, cache := newScheduleService(repo)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.Equal(t, "s1", repo.deleted)
	assert.Equal(t, []string{GanttCachePrefix}, cache.prefixes)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
