package service

import (
	"context"
	"testing"

	"docrag-be/internal/apperr"
	"docrag-be/internal/constant"
	"docrag-be/internal/dto"
	"docrag-be/internal/entity"
	"docrag-be/internal/repository/memory"
	"docrag-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInsightFixture(t *testing.T) (IInsightService, unitofwork.RepositoryFactory) {
	t.Helper()
	uowFactory := memory.NewFactory(memory.NewStore())
	return NewInsightService(uowFactory, nopLogger{}), uowFactory
}

func seedSession(t *testing.T, uowFactory unitofwork.RepositoryFactory, ownerId uuid.UUID) uuid.UUID {
	t.Helper()
	sessionId := uuid.New()
	uow := uowFactory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.SessionRepository().Create(context.Background(), &entity.Session{
		Id:      sessionId,
		OwnerId: ownerId,
		Status:  constant.SessionStatusReady,
	}))
	return sessionId
}

func TestInsightCreateAndList(t *testing.T) {
	svc, uowFactory := newInsightFixture(t)
	ownerId := uuid.New()
	ctx := context.Background()
	sessionId := seedSession(t, uowFactory, ownerId)

	first, err := svc.Create(ctx, ownerId, &dto.CreateInsightRequest{
		SessionId: sessionId,
		Content:   "deadline moved to Q3",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.Id)

	_, err = svc.Create(ctx, ownerId, &dto.CreateInsightRequest{
		SessionId: sessionId,
		Content:   "budget is capped",
	})
	require.NoError(t, err)

	insights, err := svc.List(ctx, ownerId, sessionId)
	require.NoError(t, err)
	require.Len(t, insights, 2)
	assert.Equal(t, "deadline moved to Q3", insights[0].Content)
	assert.Equal(t, "budget is capped", insights[1].Content)
}

func TestInsightCreateRejectsForeignSession(t *testing.T) {
	svc, uowFactory := newInsightFixture(t)
	sessionId := seedSession(t, uowFactory, uuid.New())

	_, err := svc.Create(context.Background(), uuid.New(), &dto.CreateInsightRequest{
		SessionId: sessionId,
		Content:   "should not land",
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestInsightDelete(t *testing.T) {
	svc, uowFactory := newInsightFixture(t)
	ownerId := uuid.New()
	ctx := context.Background()
	sessionId := seedSession(t, uowFactory, ownerId)

	created, err := svc.Create(ctx, ownerId, &dto.CreateInsightRequest{
		SessionId: sessionId,
		Content:   "temp note",
	})
	require.NoError(t, err)

	// Only the session owner may delete.
	err = svc.Delete(ctx, uuid.New(), created.Id)
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, ownerId, created.Id))

	insights, err := svc.List(ctx, ownerId, sessionId)
	require.NoError(t, err)
	assert.Empty(t, insights)

	err = svc.Delete(ctx, ownerId, created.Id)
	assert.True(t, apperr.IsNotFound(err))
}
