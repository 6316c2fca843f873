package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/training-service/internal/auth"
	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/training-service/internal/testutil"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	auth.Cost = bcrypt.MinCost
}

type testEnv struct {
	db        *gorm.DB
	services  ServiceManager
	publisher *events.MockEventPublisher
	cache     *memoryCache
	admin     Principal
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(logger)
	memCache := newMemoryCache()

	sm := NewServiceManager(
		postgres.NewRepository(db),
		memCache,
		publisher,
		logger,
		validator.New(),
		ServiceOptions{DefaultUserPassword: "123456", ReportCacheTTL: time.Minute},
	)

	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin, nil)

	return &testEnv{
		db:        db,
		services:  sm,
		publisher: publisher,
		cache:     memCache,
		admin:     PrincipalFromUser(admin),
	}
}

func (e *testEnv) staff(t *testing.T, email string, departmentID *uint) Principal {
	t.Helper()
	return PrincipalFromUser(testutil.SeedUser(t, e.db, email, models.RoleStaff, departmentID))
}

func (e *testEnv) assignment(t *testing.T, userID, trainingID uint) *models.UserTraining {
	t.Helper()
	var ut models.UserTraining
	if err := e.db.Where("user_id = ? AND training_id = ?", userID, trainingID).First(&ut).Error; err != nil {
		t.Fatalf("assignment not found: %v", err)
	}
	return &ut
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func uintPtr(v uint) *uint { return &v }

// memoryCache is an in-process cache.CacheService for tests.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	raw, ok := m.items[key]
	m.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}
