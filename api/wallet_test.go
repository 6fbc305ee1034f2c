package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swaphub/models"
)

func TestPostBuyCredits(t *testing.T) {
	t.Run("tops up the balance", func(t *testing.T) {
		router, ms := newTestServer(t)
		user := seedUser(t, ms, "alice", 10)

		recorder := doRequest(t, router, http.MethodPost, "/api/wallet/buy", BuyCreditsRequest{
			UserID: user.ID,
			Amount: 40,
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		response := decodeResponse[BuyCreditsResponse](t, recorder)
		assert.Equal(t, uint32(50), response.Credits)
	})

	t.Run("zero amount", func(t *testing.T) {
		router, ms := newTestServer(t)
		user := seedUser(t, ms, "alice", 10)

		recorder := doRequest(t, router, http.MethodPost, "/api/wallet/buy", map[string]any{
			"userId": user.ID,
			"amount": 0,
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		router, _ := newTestServer(t)

		recorder := doRequest(t, router, http.MethodPost, "/api/wallet/buy", BuyCreditsRequest{
			UserID: uuid.New(),
			Amount: 40,
		})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestGetWallet(t *testing.T) {
	t.Run("returns balance and history", func(t *testing.T) {
		router, ms := newTestServer(t)
		user := seedUser(t, ms, "alice", 10)

		recorder := doRequest(t, router, http.MethodPost, "/api/wallet/buy", BuyCreditsRequest{
			UserID: user.ID,
			Amount: 40,
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		recorder = doRequest(t, router, http.MethodGet, "/api/wallet/"+user.ID.String(), nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		wallet := decodeResponse[WalletResponse](t, recorder)
		assert.Equal(t, user.ID, wallet.UserID)
		assert.Equal(t, "alice", wallet.Username)
		assert.Equal(t, uint32(50), wallet.Credits)
		require.Len(t, wallet.History, 1)
		assert.Equal(t, models.LedgerTypeCreditPurchase, wallet.History[0].Type)
		assert.Equal(t, uint32(40), wallet.History[0].Credits)
	})

	t.Run("unknown user", func(t *testing.T) {
		router, _ := newTestServer(t)

		recorder := doRequest(t, router, http.MethodGet, "/api/wallet/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
