// Package session configures cookie sessions for signed-in users.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"
)

// KeyUserID is the session key holding the signed-in user's id.
const KeyUserID = "user_id"

type Options struct {
	Lifetime time.Duration
	Secure   bool
	// Redis, when set, backs sessions; otherwise sessions live in memory.
	Redis *redis.Client
}

// New creates a session manager.
func New(opts Options) *scs.SessionManager {
	sm := scs.New()

	if opts.Redis != nil {
		sm.Store = NewRedisStore(opts.Redis)
	} else {
		sm.Store = memstore.New()
	}

	sm.Lifetime = opts.Lifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 24 * time.Hour
	}
	sm.Cookie.Name = "training_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = opts.Secure

	return sm
}

// Login renews the session token and records the user id.
func Login(ctx context.Context, sm *scs.SessionManager, userID uint) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyUserID, int64(userID))
	return nil
}

// Logout destroys the session.
func Logout(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// UserID returns the signed-in user's id, or 0 when anonymous.
func UserID(ctx context.Context, sm *scs.SessionManager) uint {
	id := sm.GetInt64(ctx, KeyUserID)
	if id <= 0 {
		return 0
	}
	return uint(id)
}
