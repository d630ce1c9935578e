package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-property-booking/internal/api"
	"github.com/sanosuguru/go-property-booking/internal/api/handler"
	apimiddleware "github.com/sanosuguru/go-property-booking/internal/api/middleware"
	"github.com/sanosuguru/go-property-booking/internal/application"
	"github.com/sanosuguru/go-property-booking/internal/config"
	"github.com/sanosuguru/go-property-booking/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-property-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-property-booking/internal/pkg/token"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo    *echo.Echo
	Cleanup func()
}

// NewTestServer はテスト用サーバーを作成
// DBまたはRedisに接続できない環境ではテストをスキップする
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	cfg := config.Load()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}

	if err := postgres.RunMigrations(db.DB, "../migrations"); err != nil {
		db.Close()
		t.Fatalf("マイグレーションに失敗: %v", err)
	}

	redisClient := redisinfra.NewClient(&cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
		db.Close()
		t.Skipf("Redis接続エラー: %v", err)
	}

	db.MustExec("TRUNCATE bookings, properties, users CASCADE")

	userRepo := postgres.NewUserRepository(db)
	propertyRepo := postgres.NewPropertyRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	txManager := postgres.NewTxManager(db)

	lockManager := redisinfra.NewLockManager(redisClient)
	availCache := redisinfra.NewAvailabilityCache(redisClient)
	tokenManager := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userService := application.NewUserService(userRepo, tokenManager)
	propertyService := application.NewPropertyService(propertyRepo, bookingRepo, userRepo)
	bookingService := application.NewBookingService(txManager, bookingRepo, propertyRepo, userRepo, lockManager, availCache, nil)

	userHandler := handler.NewUserHandler(userService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	healthHandler := handler.NewHealthHandler()

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	apimiddleware.SetupMiddleware(e)

	auth := apimiddleware.RequireAuth(tokenManager)

	e.GET("/health", healthHandler.Check)

	v1 := e.Group("/api/v1")
	v1.POST("/users/signup", userHandler.Signup)
	v1.POST("/users/login", userHandler.Login)
	v1.GET("/users/me", userHandler.Me, auth)

	v1.GET("/properties", propertyHandler.List)
	v1.POST("/properties", propertyHandler.Create, auth)
	v1.GET("/properties/mine", propertyHandler.Mine, auth)
	v1.GET("/properties/:id", propertyHandler.GetByID)
	v1.DELETE("/properties/:id", propertyHandler.Delete, auth)
	v1.GET("/properties/:id/bookings", bookingHandler.ListForProperty, auth)
	v1.GET("/properties/:id/availability", bookingHandler.Availability)

	v1.POST("/bookings", bookingHandler.Create, auth)
	v1.GET("/bookings/my-bookings", bookingHandler.MyBookings, auth)

	cleanup := func() {
		db.MustExec("TRUNCATE bookings, properties, users CASCADE")
		redisClient.FlushDB(context.Background())
		redisClient.Close()
		db.Close()
	}

	return &TestServer{Echo: e, Cleanup: cleanup}
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// signupAndLogin はユーザーを登録してアクセストークンを取得する
func signupAndLogin(t *testing.T, server *TestServer, name, email, role string) string {
	t.Helper()

	rec := server.Request("POST", "/api/v1/users/signup", map[string]interface{}{
		"name": name, "email": email, "password": "password123", "role": role,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("ユーザー登録に失敗: %d %s", rec.Code, rec.Body.String())
	}

	rec = server.Request("POST", "/api/v1/users/login", map[string]interface{}{
		"email": email, "password": "password123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ログインに失敗: %d %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスの解析に失敗: %v", err)
	}
	return resp["access_token"].(string)
}

func bearer(accessToken string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + accessToken}
}
