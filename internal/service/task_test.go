package service

import (
	"context"
	"errors"
	"testing"

	"taskhub/internal/domain"
	"taskhub/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	tasks map[uuid.UUID]*domain.Task

	findAllCalls int
	createErr    error
	findAllErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (r *fakeRepo) Create(ctx context.Context, t *domain.Task) error {
	if r.createErr != nil {
		return r.createErr
	}
	t.ID = uuid.New()
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeRepo) FindAll(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	r.findAllCalls++
	if r.findAllErr != nil {
		return nil, r.findAllErr
	}
	res := []domain.Task{}
	for _, t := range r.tasks {
		if t.UserID == userID {
			res = append(res, *t)
		}
	}
	return res, nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) Update(ctx context.Context, t *domain.Task) error {
	if _, ok := r.tasks[t.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeCache struct {
	entries map[uuid.UUID][]domain.Task

	sets        int
	invalidates int
	getErr      error
	setErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[uuid.UUID][]domain.Task)}
}

func (c *fakeCache) Get(ctx context.Context, userID uuid.UUID) ([]domain.Task, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	tasks, ok := c.entries[userID]
	return tasks, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, userID uuid.UUID, tasks []domain.Task) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.entries[userID] = tasks
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	c.invalidates++
	delete(c.entries, userID)
	return nil
}

type published struct {
	userID uuid.UUID
	event  string
	task   *domain.Task
}

type fakeBroadcaster struct {
	events []published
}

func (b *fakeBroadcaster) Publish(userID uuid.UUID, event string, task *domain.Task) {
	b.events = append(b.events, published{userID: userID, event: event, task: task})
}

func newTestService() (*TaskService, *fakeRepo, *fakeCache, *fakeBroadcaster) {
	repo := newFakeRepo()
	cache := newFakeCache()
	bc := &fakeBroadcaster{}
	return NewTaskService(repo, cache, bc), repo, cache, bc
}

func TestNewTaskServicePanicsOnNilDeps(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	assert.Panics(t, func() { NewTaskService(repo, cache, nil) })
	assert.Panics(t, func() { NewTaskService(nil, cache, &fakeBroadcaster{}) })
}

func TestCreate(t *testing.T) {
	svc, _, cache, bc := newTestService()
	owner := uuid.New()

	task, err := svc.Create(context.Background(), owner, domain.CreateTaskInput{Title: "A"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, owner, task.UserID)
	assert.Equal(t, "A", task.Title)

	// cache refreshed with the owner's full list
	cached, ok := cache.entries[owner]
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, task.ID, cached[0].ID)

	// exactly one created event, to the owner
	require.Len(t, bc.events, 1)
	assert.Equal(t, owner, bc.events[0].userID)
	assert.Equal(t, domain.EventTaskCreated, bc.events[0].event)
	assert.Equal(t, task.ID, bc.events[0].task.ID)
}

func TestCreateValidation(t *testing.T) {
	svc, _, cache, bc := newTestService()

	_, err := svc.Create(context.Background(), uuid.New(), domain.CreateTaskInput{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), uuid.Nil, domain.CreateTaskInput{Title: "A"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, cache.sets)
	assert.Empty(t, bc.events)
}

func TestCreateStoreFailureHasNoSideEffects(t *testing.T) {
	svc, repo, cache, bc := newTestService()
	repo.createErr = errors.New("db down")

	_, err := svc.Create(context.Background(), uuid.New(), domain.CreateTaskInput{Title: "A"})
	require.Error(t, err)
	assert.Zero(t, cache.sets)
	assert.Empty(t, bc.events)
}

func TestGetAllCacheHitSkipsStore(t *testing.T) {
	svc, repo, cache, _ := newTestService()
	owner := uuid.New()
	cached := []domain.Task{{ID: uuid.New(), UserID: owner, Title: "cached"}}
	cache.entries[owner] = cached

	got, err := svc.GetAll(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	assert.Zero(t, repo.findAllCalls)
}

func TestGetAllCacheMissReadsStoreOnceAndRepopulates(t *testing.T) {
	svc, repo, cache, _ := newTestService()
	owner := uuid.New()
	id := uuid.New()
	repo.tasks[id] = &domain.Task{ID: id, UserID: owner, Title: "stored"}

	got, err := svc.GetAll(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, repo.findAllCalls)

	// the miss repopulated the cache with the store's list
	assert.Equal(t, 1, cache.sets)
	entry, ok := cache.entries[owner]
	require.True(t, ok)
	require.Len(t, entry, 1)
	assert.Equal(t, id, entry[0].ID)

	// second read serves the entry without touching the store
	_, err = svc.GetAll(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findAllCalls)
}

func TestGetAllEmptyStoreReturnsEmptyList(t *testing.T) {
	svc, _, _, _ := newTestService()

	got, err := svc.GetAll(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetAllCacheErrorFallsThrough(t *testing.T) {
	svc, repo, cache, _ := newTestService()
	cache.getErr = errors.New("redis down")
	owner := uuid.New()

	_, err := svc.GetAll(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findAllCalls)
}

func TestGetByIDOwnership(t *testing.T) {
	svc, repo, _, _ := newTestService()
	owner := uuid.New()
	id := uuid.New()
	repo.tasks[id] = &domain.Task{ID: id, UserID: owner, Title: "mine"}

	got, err := svc.GetByID(context.Background(), owner, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = svc.GetByID(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.GetByID(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdate(t *testing.T) {
	svc, repo, cache, bc := newTestService()
	owner := uuid.New()
	id := uuid.New()
	repo.tasks[id] = &domain.Task{ID: id, UserID: owner, Title: "A"}

	title := "B"
	updated, err := svc.Update(context.Background(), owner, id, domain.UpdateTaskInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, "B", repo.tasks[id].Title)

	// cache reflects the update, updated event to the owner only
	require.Len(t, cache.entries[owner], 1)
	assert.Equal(t, "B", cache.entries[owner][0].Title)
	require.Len(t, bc.events, 1)
	assert.Equal(t, owner, bc.events[0].userID)
	assert.Equal(t, domain.EventTaskUpdated, bc.events[0].event)

	// subsequent read serves the refreshed entry
	got, err := svc.GetAll(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Title)
}

func TestUpdateValidation(t *testing.T) {
	svc, repo, _, bc := newTestService()
	owner := uuid.New()
	id := uuid.New()
	repo.tasks[id] = &domain.Task{ID: id, UserID: owner, Title: "A"}

	_, err := svc.Update(context.Background(), owner, id, domain.UpdateTaskInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	blank := "  "
	_, err = svc.Update(context.Background(), owner, id, domain.UpdateTaskInput{Title: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, bc.events)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, cache, bc := newTestService()
	title := "B"

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), domain.UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Zero(t, cache.sets)
	assert.Empty(t, bc.events)
}

func TestUpdateByNonOwnerRejected(t *testing.T) {
	svc, repo, _, bc := newTestService()
	owner := uuid.New()
	id := uuid.New()
	repo.tasks[id] = &domain.Task{ID: id, UserID: owner, Title: "A"}

	title := "B"
	_, err := svc.Update(context.Background(), uuid.New(), id, domain.UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, "A", repo.tasks[id].Title)
	assert.Empty(t, bc.events)
}

func TestDelete(t *testing.T) {
	svc, repo, cache, bc := newTestService()
	owner := uuid.New()
	id := uuid.New()
	repo.tasks[id] = &domain.Task{ID: id, UserID: owner, Title: "A"}
	cache.entries[owner] = []domain.Task{{ID: id, UserID: owner, Title: "A"}}

	err := svc.Delete(context.Background(), owner, id)
	require.NoError(t, err)

	_, stillThere := repo.tasks[id]
	assert.False(t, stillThere)

	// invalidation is keyed by the owner's user id
	_, cached := cache.entries[owner]
	assert.False(t, cached)
	assert.Equal(t, 1, cache.invalidates)

	require.Len(t, bc.events, 1)
	assert.Equal(t, owner, bc.events[0].userID)
	assert.Equal(t, domain.EventTaskDeleted, bc.events[0].event)
	assert.Equal(t, id, bc.events[0].task.ID)
}

func TestDeleteNotFoundHasNoSideEffects(t *testing.T) {
	svc, _, cache, bc := newTestService()

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Zero(t, cache.invalidates)
	assert.Empty(t, bc.events)
}
