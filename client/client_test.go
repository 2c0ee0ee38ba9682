package client

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/sstcp-ops/maintops-go/errors"
	"github.com/sstcp-ops/maintops-go/session"
	"github.com/sstcp-ops/maintops-go/storage"
	"github.com/sstcp-ops/maintops-go/types"
)

func writeEnvelope(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	raw, _ := json.Marshal(map[string]interface{}{
		"code":    code,
		"message": message,
		"data":    data,
	})
	_, _ = w.Write(raw)
}

type testRig struct {
	server  *httptest.Server
	session *session.Store
	client  *Client

	mu      sync.Mutex
	expired int
}

func newTestRig(t *testing.T, handler http.Handler) *testRig {
	t.Helper()

	rig := &testRig{}
	rig.server = httptest.NewServer(handler)
	t.Cleanup(rig.server.Close)

	rig.session = session.NewStore(session.Config{Storage: storage.NewMemory()})
	t.Cleanup(rig.session.Close)

	rig.client = NewClient(&Config{
		BaseURL: rig.server.URL,
		Session: rig.session,
		Timeout: 5 * time.Second,
		Logger:  log.New(io.Discard, "", 0),
		OnSessionExpired: func() {
			rig.mu.Lock()
			defer rig.mu.Unlock()
			rig.expired++
		},
	})
	return rig
}

func (r *testRig) expiredCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expired
}

func TestHeaderInjection(t *testing.T) {
	var mu sync.Mutex
	var seen []http.Header

	rig := newTestRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Clone())
		mu.Unlock()
		writeEnvelope(w, 200, "ok", nil)
	}))
	rig.session.SetUser(types.User{ID: 7, Name: "张三", Role: "department_manager"})
	rig.session.SetToken("T1")

	require.NoError(t, rig.client.Get(context.Background(), "/ping", nil))
	require.NoError(t, rig.client.Get(context.Background(), "/ping", nil))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)

	first := seen[0]
	assert.Equal(t, "Bearer T1", first.Get("Authorization"))
	assert.Equal(t, url.QueryEscape("张三"), first.Get("X-User-Name"))
	assert.Equal(t, "department_manager", first.Get("X-User-Role"))

	// Every request carries its own correlation id.
	assert.NotEmpty(t, first.Get("X-Request-ID"))
	assert.NotEmpty(t, seen[1].Get("X-Request-ID"))
	assert.NotEqual(t, first.Get("X-Request-ID"), seen[1].Get("X-Request-ID"))
}

func TestAnonymousRequestPassesThrough(t *testing.T) {
	rig := newTestRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("X-User-Name"))
		assert.Empty(t, r.Header.Get("X-User-Role"))
		writeEnvelope(w, 200, "ok", nil)
	}))

	require.NoError(t, rig.client.Get(context.Background(), "/ping", nil))
}

func TestEnvelopeSuccessDecodesPayload(t *testing.T) {
	rig := newTestRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, "ok", map[string]interface{}{
			"id": 3, "name": "李四", "role": "employee",
		})
	}))

	var user types.User
	require.NoError(t, rig.client.Get(context.Background(), "/auth/me", &user))
	assert.Equal(t, 3, user.ID)
	assert.Equal(t, "李四", user.Name)
}

func TestEnvelopeFailureIsNormalized(t *testing.T) {
	// Transport 200 with a non-200 envelope code is still a failure.
	rig := newTestRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 400, "名称重复", nil)
	}))

	err := rig.client.Get(context.Background(), "/things", nil)
	require.Error(t, err)
	require.True(t, apierrors.IsAPIError(err))
	apiErr := err.(*apierrors.APIError)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "名称重复", apiErr.Message)
}

func TestHTTPErrorMessages(t *testing.T) {
	t.Run("empty body falls back to the generic status message", func(t *testing.T) {
		rig := newTestRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		err := rig.client.Get(context.Background(), "/missing", nil)
		require.Error(t, err)
		apiErr := err.(*apierrors.APIError)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
		assert.Equal(t, "资源不存在", apiErr.Message)
	})

	t.Run("server detail field wins over the fallback", func(t *testing.T) {
		rig := newTestRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":"字段缺失"}`))
		}))

		err := rig.client.Post(context.Background(), "/things", map[string]string{}, nil)
		require.Error(t, err)
		apiErr := err.(*apierrors.APIError)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
		assert.Equal(t, "字段缺失", apiErr.Message)
	})
}

func TestNetworkFailure(t *testing.T) {
	rig := newTestRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rig.server.Close()

	err := rig.client.Get(context.Background(), "/ping", nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsNetwork(err))
	assert.Equal(t, apierrors.StatusNetwork, err.(*apierrors.APIError).Status)
}

func TestSingleFlightRefresh(t *testing.T) {
	const concurrency = 5

	var mu sync.Mutex
	firstWave := make(chan struct{})
	staleHits, freshHits, refreshCalls := 0, 0, 0

	mux := http.NewServeMux()
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer T1":
			mu.Lock()
			staleHits++
			if staleHits == concurrency {
				close(firstWave)
			}
			mu.Unlock()
			w.WriteHeader(http.StatusUnauthorized)
		case "Bearer T2":
			mu.Lock()
			freshHits++
			mu.Unlock()
			writeEnvelope(w, 200, "ok", nil)
		default:
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		// Hold the refresh until every first-wave request has seen its 401,
		// then give stragglers time to join the waiter queue.
		<-firstWave
		time.Sleep(100 * time.Millisecond)
		mu.Lock()
		refreshCalls++
		mu.Unlock()
		writeEnvelope(w, 200, "ok", map[string]string{"access_token": "T2"})
	})

	rig := newTestRig(t, mux)
	rig.session.SetToken("T1")

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = rig.client.Get(context.Background(), "/protected", nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, refreshCalls, "exactly one refresh call for the whole burst")
	assert.Equal(t, concurrency, staleHits)
	assert.Equal(t, concurrency, freshHits, "every request retried exactly once with the new token")
	assert.Equal(t, "T2", rig.session.Token())
	assert.Zero(t, rig.expiredCount())
}

func TestNoSecondRetryAfterRefresh(t *testing.T) {
	var mu sync.Mutex
	protectedHits, refreshCalls := 0, 0

	mux := http.NewServeMux()
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		protectedHits++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		refreshCalls++
		mu.Unlock()
		writeEnvelope(w, 200, "ok", map[string]string{"access_token": "T2"})
	})

	rig := newTestRig(t, mux)
	rig.session.SetToken("T1")

	// The retry with the fresh token gets another 401. That is terminal; the
	// client must not refresh again.
	err := rig.client.Get(context.Background(), "/protected", nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsSessionExpired(err))
	assert.Equal(t, apierrors.MsgSessionExpired, err.(*apierrors.APIError).Message)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, protectedHits)
	assert.Equal(t, 1, refreshCalls)
	assert.False(t, rig.session.IsLoggedIn())
	assert.Equal(t, 1, rig.expiredCount())
}

func TestRefreshEnvelopeFailureExpiresSession(t *testing.T) {
	var mu sync.Mutex
	protectedHits := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		protectedHits++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		// Transport 200, application failure.
		writeEnvelope(w, 500, "internal error", nil)
	})

	rig := newTestRig(t, mux)
	rig.session.SetUser(types.User{ID: 7, Name: "张三", Role: "employee"})
	rig.session.SetToken("T1")

	err := rig.client.Get(context.Background(), "/protected", nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsSessionExpired(err))
	assert.Equal(t, apierrors.MsgSessionExpired, err.(*apierrors.APIError).Message)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, protectedHits, "no retry after a failed refresh")
	assert.False(t, rig.session.IsLoggedIn())
	assert.Nil(t, rig.session.User())
	assert.Equal(t, 1, rig.expiredCount())
}

func TestRefreshRejectedStatusExpiresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	rig := newTestRig(t, mux)
	rig.session.SetToken("T1")

	err := rig.client.Get(context.Background(), "/protected", nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsSessionExpired(err))
	assert.False(t, rig.session.IsLoggedIn())
	assert.Equal(t, 1, rig.expiredCount())
}

func TestRefreshWithoutTokenIsTerminal(t *testing.T) {
	var mu sync.Mutex
	refreshCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		refreshCalls++
		mu.Unlock()
		writeEnvelope(w, 200, "ok", map[string]string{"access_token": "T2"})
	})

	rig := newTestRig(t, mux)

	// No token to present as credential: the refresh endpoint must not even
	// be called.
	err := rig.client.Get(context.Background(), "/protected", nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsSessionExpired(err))

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, refreshCalls)
	assert.Equal(t, 1, rig.expiredCount())
}

func TestRefreshSendsRefreshTokenBody(t *testing.T) {
	var mu sync.Mutex
	var gotBody map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer T1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEnvelope(w, 200, "ok", nil)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		mu.Unlock()
		writeEnvelope(w, 200, "ok", map[string]string{"access_token": "T2"})
	})

	rig := newTestRig(t, mux)
	rig.session.SetToken("T1")
	rig.session.SetRefreshToken("R1")

	require.NoError(t, rig.client.Get(context.Background(), "/protected", nil))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]string{"refresh_token": "R1"}, gotBody)
}

func TestLoginStoresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login-json", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "zhangsan", req.Username)
		assert.Equal(t, "secret", req.Password)
		writeEnvelope(w, 200, "ok", map[string]interface{}{
			"access_token":  "T1",
			"refresh_token": "R1",
			"token_type":    "bearer",
			"user": map[string]interface{}{
				"id": 7, "name": "张三", "role": "employee",
			},
		})
	})

	rig := newTestRig(t, mux)

	result, err := rig.client.Auth.Login(context.Background(), "zhangsan", "secret")
	require.NoError(t, err)
	assert.Equal(t, "T1", result.AccessToken)

	user := rig.session.User()
	require.NotNil(t, user)
	assert.Equal(t, "张三", user.Name)
	assert.Equal(t, "T1", rig.session.Token())
	assert.Equal(t, "R1", rig.session.RefreshToken())

	rig.client.Auth.Logout()
	assert.False(t, rig.session.IsLoggedIn())
	assert.Nil(t, rig.session.User())
}

func TestLoginFailureLeavesSessionEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login-json", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 401, "用户名或密码错误", nil)
	})

	rig := newTestRig(t, mux)

	_, err := rig.client.Auth.Login(context.Background(), "zhangsan", "wrong")
	require.Error(t, err)
	assert.True(t, apierrors.IsUnauthorized(err))
	assert.Equal(t, "用户名或密码错误", err.(*apierrors.APIError).Message)
	assert.False(t, rig.session.IsLoggedIn())
	assert.Nil(t, rig.session.User())
}
