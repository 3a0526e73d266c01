package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/geocode"
	http "github.com/tazhibayda/bootcamp-service/internal/http"
	"github.com/tazhibayda/bootcamp-service/internal/mail"
	"github.com/tazhibayda/bootcamp-service/internal/queue"
	"github.com/tazhibayda/bootcamp-service/internal/ratelimit"
	"github.com/tazhibayda/bootcamp-service/internal/repo"
	"github.com/tazhibayda/bootcamp-service/internal/security"
	"github.com/tazhibayda/bootcamp-service/internal/service"
)

const bostonAddr = "233 Bay State Rd Boston MA 02215"

var places = geocode.Static{
	bostonAddr: {
		Type:             "Point",
		Coordinates:      []float64{-71.104028, 42.350846},
		FormattedAddress: "233 Bay State Rd, Boston, MA 02215-1405, US",
		City:             "Boston",
		State:            "MA",
		Zipcode:          "02215",
		Country:          "US",
	},
	"02118": {Type: "Point", Coordinates: []float64{-71.0707, 42.3388}, Zipcode: "02118"},
}

// outbox captures every message the handler sends.
type outbox struct {
	mu   sync.Mutex
	msgs []mail.Message
	err  error
}

func (o *outbox) Send(_ context.Context, m mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.msgs = append(o.msgs, m)
	return nil
}

func (o *outbox) last() mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.msgs) == 0 {
		return mail.Message{}
	}
	return o.msgs[len(o.msgs)-1]
}

type testEnv struct {
	T       *testing.T
	Ctx     context.Context
	Mongo   *mongodb.MongoDBContainer
	Store   *repo.Store
	Events  *queue.Recorder
	Mail    *outbox
	Uploads string
	Clock   *clock.Mock
	Router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test, needs docker")
	}
	ctx := context.Background()

	mc, err := mongodb.RunContainer(ctx, testcontainers.WithImage("mongo:6"))
	require.NoError(t, err, "mongo container")
	uri, err := mc.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := repo.NewStore(ctx, uri, "bootcamps_test")
	require.NoError(t, err)
	require.NoError(t, store.EnsureIndexes(ctx))

	logger := zap.NewNop()
	events := &queue.Recorder{}
	box := &outbox{}
	svc := service.New(store, places, events, logger)
	clk := clock.NewMock()
	clk.Set(time.Now())
	tokens := security.NewTokens("test-secret", time.Hour, clk)
	uploads := t.TempDir()

	h := http.NewHandler(store, svc, tokens, places, box, events, ratelimit.NewMemory(nil), logger, http.Options{
		CookieExpireDays: 30,
		UploadPath:       uploads,
		MaxUpload:        1 << 20,
	})

	gin.SetMode(gin.TestMode)
	return &testEnv{T: t, Ctx: ctx, Mongo: mc, Store: store, Events: events, Mail: box, Uploads: uploads, Clock: clk, Router: http.NewRouter(h)}
}

func (e *testEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close(e.Ctx)
	}
	if e.Mongo != nil {
		_ = e.Mongo.Terminate(e.Ctx)
	}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.T.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(e.T, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its token.
func (e *testEnv) register(name, email string, role domain.Role) string {
	e.T.Helper()
	w := e.do("POST", "/api/v1/auth/register", "", map[string]any{
		"name": name, "email": email, "password": "123456", "role": role,
	})
	require.Equal(e.T, 200, w.Code, w.Body.String())
	return decode[struct{ Token string }](e.T, w).Token
}

// admin inserts an admin directly, since the API never grants that role.
func (e *testEnv) admin() string {
	e.T.Helper()
	hash, err := security.HashPassword("123456")
	require.NoError(e.T, err)
	require.NoError(e.T, e.Store.CreateUser(e.Ctx, &domain.User{
		Name: "Admin", Email: "admin@gmail.com", Password: hash, Role: domain.RoleAdmin,
	}))
	w := e.do("POST", "/api/v1/auth/login", "", `{"email":"admin@gmail.com","password":"123456"}`)
	require.Equal(e.T, 200, w.Code, w.Body.String())
	return decode[struct{ Token string }](e.T, w).Token
}

func (e *testEnv) bootcamp(token, name string) string {
	e.T.Helper()
	w := e.do("POST", "/api/v1/bootcamps", token, map[string]any{
		"name":        name,
		"description": "Full stack web development",
		"website":     "https://devworks.com",
		"email":       "enroll@devworks.com",
		"address":     bostonAddr,
		"careers":     []string{"Web Development", "UI/UX"},
	})
	require.Equal(e.T, 201, w.Code, w.Body.String())
	return decode[struct{ Data struct{ ID string `json:"_id"` } }](e.T, w).Data.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
