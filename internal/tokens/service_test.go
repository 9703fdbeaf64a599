package tokens

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/FandaPeterka/ListManagementApp/internal/apperr"
	"github.com/FandaPeterka/ListManagementApp/internal/models"
)

type memRefreshStore struct {
	mu        sync.Mutex
	records   map[string]models.RefreshToken
	insertErr error
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{records: map[string]models.RefreshToken{}}
}

func (m *memRefreshStore) Insert(_ context.Context, token models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.records[token.JTI]; ok {
		return ErrDuplicate
	}
	m.records[token.JTI] = token
	return nil
}

func (m *memRefreshStore) Delete(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[jti]; !ok {
		return false, nil
	}
	delete(m.records, jti)
	return true, nil
}

func (m *memRefreshStore) Find(_ context.Context, jti string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[jti]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memRefreshStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type memBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{entries: map[string]time.Time{}}
}

func (m *memBlacklist) Add(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[jti]; ok {
		return ErrDuplicate
	}
	m.entries[jti] = expiresAt
	return nil
}

func (m *memBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[jti]
	return ok, nil
}

func newTestService(refresh *memRefreshStore, blacklist *memBlacklist) *Service {
	return NewService(refresh, blacklist, "access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestIssueTokensShareJTIAndPersistRecord(t *testing.T) {
	refresh := newMemRefreshStore()
	svc := newTestService(refresh, newMemBlacklist())
	userID := primitive.NewObjectID()

	pair, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)

	accessClaims, err := svc.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	refreshClaims, err := svc.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, accessClaims.ID, refreshClaims.ID)
	assert.Equal(t, userID.Hex(), accessClaims.Subject)

	record, err := refresh.Find(context.Background(), accessClaims.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, userID, record.UserID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), record.ExpiresAt, time.Minute)
}

func TestIssueDuplicateJTIFailsWithConflict(t *testing.T) {
	refresh := newMemRefreshStore()
	refresh.insertErr = ErrDuplicate
	svc := newTestService(refresh, newMemBlacklist())

	pair, err := svc.Issue(context.Background(), primitive.NewObjectID())
	require.ErrorIs(t, err, ErrTokenConflict)
	assert.Nil(t, pair)
}

func TestIssueStoreFailureIsInternal(t *testing.T) {
	refresh := newMemRefreshStore()
	refresh.insertErr = context.DeadlineExceeded
	svc := newTestService(refresh, newMemBlacklist())

	_, err := svc.Issue(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, 500, apperr.StatusOf(err))
}

func TestRotateUnknownJTIFailsAndIssuesNothing(t *testing.T) {
	refresh := newMemRefreshStore()
	svc := newTestService(refresh, newMemBlacklist())

	pair, err := svc.Rotate(context.Background(), "never-issued", primitive.NewObjectID())
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.Nil(t, pair)
	assert.Zero(t, refresh.count())
}

func TestRotateReplacesRecordWithFreshJTI(t *testing.T) {
	refresh := newMemRefreshStore()
	svc := newTestService(refresh, newMemBlacklist())
	userID := primitive.NewObjectID()

	pair, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)
	oldClaims, err := svc.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)

	newPair, err := svc.Rotate(context.Background(), oldClaims.ID, userID)
	require.NoError(t, err)
	newClaims, err := svc.ParseRefresh(newPair.RefreshToken)
	require.NoError(t, err)

	assert.NotEqual(t, oldClaims.ID, newClaims.ID)
	assert.Equal(t, 1, refresh.count())

	old, err := refresh.Find(context.Background(), oldClaims.ID)
	require.NoError(t, err)
	assert.Nil(t, old)
}

func TestRotateRaceSecondCallerLoses(t *testing.T) {
	refresh := newMemRefreshStore()
	svc := newTestService(refresh, newMemBlacklist())
	userID := primitive.NewObjectID()

	pair, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)
	claims, err := svc.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Rotate(context.Background(), claims.ID, userID)
	require.NoError(t, err)

	_, err = svc.Rotate(context.Background(), claims.ID, userID)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestOldRefreshTokenNoLongerValidatesAfterRotation(t *testing.T) {
	refresh := newMemRefreshStore()
	svc := newTestService(refresh, newMemBlacklist())
	userID := primitive.NewObjectID()

	pair, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)

	claims, err := svc.ValidateRefresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	newPair, err := svc.Rotate(context.Background(), claims.ID, userID)
	require.NoError(t, err)

	_, err = svc.ValidateRefresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.ValidateRefresh(context.Background(), newPair.RefreshToken)
	assert.NoError(t, err)
}

func TestBlacklistIsIdempotent(t *testing.T) {
	blacklist := newMemBlacklist()
	svc := newTestService(newMemRefreshStore(), blacklist)
	expiresAt := time.Now().Add(time.Hour)

	require.NoError(t, svc.Blacklist(context.Background(), "some-jti", expiresAt))
	require.NoError(t, svc.Blacklist(context.Background(), "some-jti", expiresAt))

	assert.Len(t, blacklist.entries, 1)

	blacklisted, err := svc.IsBlacklisted(context.Background(), "some-jti")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestValidateRefreshRejectsBlacklistedJTI(t *testing.T) {
	refresh := newMemRefreshStore()
	svc := newTestService(refresh, newMemBlacklist())
	userID := primitive.NewObjectID()

	pair, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)
	claims, err := svc.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, svc.Blacklist(context.Background(), claims.ID, claims.ExpiresAt.Time))

	_, err = svc.ValidateRefresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestValidateRefreshRejectsStaleStoreRecord(t *testing.T) {
	refresh := newMemRefreshStore()
	svc := newTestService(refresh, newMemBlacklist())
	userID := primitive.NewObjectID()

	pair, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)
	claims, err := svc.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)

	refresh.mu.Lock()
	rec := refresh.records[claims.ID]
	rec.ExpiresAt = time.Now().Add(-time.Minute)
	refresh.records[claims.ID] = rec
	refresh.mu.Unlock()

	_, err = svc.ValidateRefresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestValidateRefreshRejectsGarbage(t *testing.T) {
	svc := newTestService(newMemRefreshStore(), newMemBlacklist())

	_, err := svc.ValidateRefresh(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	svc := newTestService(newMemRefreshStore(), newMemBlacklist())

	pair, err := svc.Issue(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)

	_, err = svc.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)
	_, err = svc.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
}
