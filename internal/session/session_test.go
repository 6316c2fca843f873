package session

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLogout_MemoryStore(t *testing.T) {
	sm := New(Options{Lifetime: time.Hour})

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, Login(r.Context(), sm, 42))
	})
	mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strconv.FormatUint(uint64(UserID(r.Context(), sm)), 10)))
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, Logout(r.Context(), sm))
	})
	handler := sm.LoadAndSave(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "training_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	whoami := func() string {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(cookies[0])
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Body.String()
	}
	assert.Equal(t, "42", whoami())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookies[0])
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "0", whoami())
}

// Runs against a live server when REDIS_TEST_URL is set.
func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	store := NewRedisStoreWithPrefix(client, "test:session:")

	require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(time.Minute)))
	b, found, err := store.Find("tok")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("data"), b)

	require.NoError(t, store.Delete("tok"))
	_, found, err = store.Find("tok")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Commit("expired", []byte("data"), time.Now().Add(-time.Minute)))
	_, found, err = store.Find("expired")
	require.NoError(t, err)
	assert.False(t, found)
}
