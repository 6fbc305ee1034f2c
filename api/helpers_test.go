package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/require"

	"swaphub/adapters/store"
	"swaphub/engine"
	"swaphub/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newTestServer 以記憶體版 Store 組出一個只掛路由的伺服器
func newTestServer(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	impl := &ServerImpl{
		store:       ms,
		queries:     ms,
		bids:        engine.NewBidEngine(ms),
		swaps:       engine.NewSwapEngine(ms),
		wallet:      engine.NewWallet(ms),
		reviews:     engine.NewReviews(ms),
		htmlChecker: bluemonday.UGCPolicy(),
	}
	router := gin.New()
	impl.RegisterRoutes(router)
	return router, ms
}

func seedUser(t *testing.T, s *store.MemoryStore, username string, credits uint32) *models.User {
	t.Helper()
	user := &models.User{Username: username, Credits: credits}
	s.AddUser(user)
	return user
}

func seedItem(t *testing.T, s *store.MemoryStore, owner *models.User, title string, price uint32) *models.Item {
	t.Helper()
	item := &models.Item{
		OwnerID: owner.ID,
		Title:   title,
		Status:  models.ItemStatusActive,
		Price:   price,
	}
	err := s.RunTransaction(context.Background(), func(tx store.Tx) error {
		return tx.CreateItem(context.Background(), item)
	})
	require.NoError(t, err)
	return item
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeResponse[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &value))
	return value
}
