package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := NewTestServer(t)
	defer server.Cleanup()

	rec := server.Request("GET", "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

// TestE2E_CompleteBookingJourney は登録から予約照会までの完全なジャーニーをテスト
func TestE2E_CompleteBookingJourney(t *testing.T) {
	server := NewTestServer(t)
	defer server.Cleanup()

	hostToken := signupAndLogin(t, server, "山田花子", "host@example.com", "host")
	guestToken := signupAndLogin(t, server, "田中太郎", "guest@example.com", "guest")

	var propertyID, bookingID string

	// 1. ホストが物件を登録
	t.Run("物件登録", func(t *testing.T) {
		body := map[string]interface{}{
			"title":        "海辺のコテージ",
			"address":      "1-2-3 Beach Road",
			"city":         "Kamakura",
			"state":        "Kanagawa",
			"picture_urls": []string{"https://example.com/1.jpg"},
		}
		rec := server.Request("POST", "/api/v1/properties", body, bearer(hostToken))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		propertyID = resp["id"].(string)
		assert.NotEmpty(t, propertyID)
	})

	// 2. 空き状況を照会
	t.Run("空き状況照会", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/properties/%s/availability?date_in=2026-03-10&date_out=2026-03-12", propertyID)
		rec := server.Request("GET", path, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, true, resp["available"])
	})

	// 3. ゲストが予約
	t.Run("予約作成", func(t *testing.T) {
		body := map[string]interface{}{
			"property_id": propertyID,
			"date_in":     "2026-03-10",
			"date_out":    "2026-03-12",
		}
		rec := server.Request("POST", "/api/v1/bookings", body, bearer(guestToken))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		bookingID = resp["id"].(string)
		assert.NotEmpty(t, bookingID)
		assert.Equal(t, "2026-03-10", resp["date_in"])
		assert.Equal(t, "2026-03-12", resp["date_out"])
	})

	// 4. 予約後は空きがない
	t.Run("予約後の空き状況", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/properties/%s/availability?date_in=2026-03-11&date_out=2026-03-13", propertyID)
		rec := server.Request("GET", path, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, false, resp["available"])
	})

	// 5. ゲストの予約一覧に物件情報が含まれる
	t.Run("自分の予約一覧", func(t *testing.T) {
		rec := server.Request("GET", "/api/v1/bookings/my-bookings", nil, bearer(guestToken))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		require.Len(t, resp, 1)
		assert.Equal(t, bookingID, resp[0]["id"])

		prop := resp[0]["property"].(map[string]interface{})
		assert.Equal(t, "海辺のコテージ", prop["title"])
		assert.Equal(t, "山田花子", prop["host_name"])
	})

	// 6. ホストは物件の予約一覧を参照できる
	t.Run("物件の予約一覧", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/properties/%s/bookings", propertyID)
		rec := server.Request("GET", path, nil, bearer(hostToken))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		require.Len(t, resp, 1)
		assert.Equal(t, bookingID, resp[0]["id"])
	})

	// 7. 予約が存在する物件は削除できない
	t.Run("予約済み物件の削除拒否", func(t *testing.T) {
		rec := server.Request("DELETE", "/api/v1/properties/"+propertyID, nil, bearer(hostToken))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

// TestE2E_BookingConflict は期間重複の拒否をテスト
func TestE2E_BookingConflict(t *testing.T) {
	server := NewTestServer(t)
	defer server.Cleanup()

	hostToken := signupAndLogin(t, server, "山田花子", "host@example.com", "host")
	guestToken := signupAndLogin(t, server, "田中太郎", "guest@example.com", "guest")
	otherToken := signupAndLogin(t, server, "佐藤次郎", "guest2@example.com", "guest")

	rec := server.Request("POST", "/api/v1/properties", map[string]interface{}{
		"title": "山小屋", "address": "4-5-6 Mountain Rd", "city": "Hakuba", "state": "Nagano",
	}, bearer(hostToken))
	require.Equal(t, http.StatusCreated, rec.Code)
	var prop map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &prop)
	propertyID := prop["id"].(string)

	book := func(accessToken, dateIn, dateOut string) int {
		rec := server.Request("POST", "/api/v1/bookings", map[string]interface{}{
			"property_id": propertyID, "date_in": dateIn, "date_out": dateOut,
		}, bearer(accessToken))
		return rec.Code
	}

	t.Run("最初の予約は成功", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, book(guestToken, "2026-03-10", "2026-03-15"))
	})

	t.Run("重なる期間は409", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, book(otherToken, "2026-03-12", "2026-03-17"))
	})

	t.Run("チェックアウト日と同日のチェックインは成功", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, book(otherToken, "2026-03-15", "2026-03-18"))
	})

	t.Run("ホストによる予約は403", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, book(hostToken, "2026-04-01", "2026-04-03"))
	})

	t.Run("不正な期間は400", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, book(guestToken, "2026-04-03", "2026-04-01"))
	})
}

// TestE2E_ConcurrentBooking は同一期間への同時予約で1件だけ成功することをテスト
func TestE2E_ConcurrentBooking(t *testing.T) {
	server := NewTestServer(t)
	defer server.Cleanup()

	hostToken := signupAndLogin(t, server, "山田花子", "host@example.com", "host")
	guestToken := signupAndLogin(t, server, "田中太郎", "guest@example.com", "guest")

	rec := server.Request("POST", "/api/v1/properties", map[string]interface{}{
		"title": "湖畔の家", "address": "7-8-9 Lake St", "city": "Hakone", "state": "Kanagawa",
	}, bearer(hostToken))
	require.Equal(t, http.StatusCreated, rec.Code)
	var prop map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &prop)
	propertyID := prop["id"].(string)

	const goroutines = 8
	codes := make(chan int, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := server.Request("POST", "/api/v1/bookings", map[string]interface{}{
				"property_id": propertyID, "date_in": "2026-03-10", "date_out": "2026-03-12",
			}, bearer(guestToken))
			codes <- rec.Code
		}()
	}
	wg.Wait()
	close(codes)

	var created, rejected int
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict, http.StatusServiceUnavailable:
			rejected++
		default:
			t.Fatalf("予期しないステータスコード: %d", code)
		}
	}
	assert.Equal(t, 1, created, "成功はちょうど1件")
	assert.Equal(t, goroutines-1, rejected)

	rec = server.Request("GET", "/api/v1/bookings/my-bookings", nil, bearer(guestToken))
	require.Equal(t, http.StatusOK, rec.Code)
	var bookings []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &bookings)
	assert.Len(t, bookings, 1)
}

// TestE2E_SignupValidation はユーザー登録まわりの異常系をテスト
func TestE2E_SignupValidation(t *testing.T) {
	server := NewTestServer(t)
	defer server.Cleanup()

	t.Run("登録済みメールアドレスは409", func(t *testing.T) {
		body := map[string]interface{}{
			"name": "田中太郎", "email": "dup@example.com",
			"password": "password123", "role": "guest",
		}
		rec := server.Request("POST", "/api/v1/users/signup", body, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = server.Request("POST", "/api/v1/users/signup", body, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("不正なロールは400", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/users/signup", map[string]interface{}{
			"name": "管理者", "email": "admin@example.com",
			"password": "password123", "role": "admin",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("トークンなしの予約は401", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/bookings", map[string]interface{}{
			"property_id": "x", "date_in": "2026-03-10", "date_out": "2026-03-12",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
