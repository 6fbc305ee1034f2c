package engine

import (
	"errors"

	"swaphub/adapters/store"
)

// 業務規則錯誤
// 這些錯誤在交易內被偵測到時會讓整個交易中止，不留下任何寫入，
// 並且原樣回傳給呼叫端；重試不會改變結果，所以永遠不重試
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidAmount     = errors.New("amount must be a positive integer")
	ErrSelfBid           = errors.New("cannot bid on your own item")
	ErrBidTooLow         = errors.New("bid must be higher than the current price")
	ErrNotAvailable      = errors.New("item is not available")
	ErrInsufficientFunds = errors.New("insufficient credits")
	ErrAlreadyResolved   = errors.New("already resolved")
	ErrSelfSwap          = errors.New("cannot swap with yourself")
	ErrItemsUnavailable  = errors.New("one or both items are no longer available")
)

// Not found 錯誤
// 交易內任何一個被引用的實體不存在，交易在寫入前就中止
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrItemNotFound  = errors.New("item not found")
	ErrBidNotFound   = errors.New("bid not found")
	ErrOfferNotFound = errors.New("swap offer not found")
)

// notFound 將 store 層的 ErrNotFound 換成實體專屬的 sentinel
func notFound(err, sentinel error) error {
	if errors.Is(err, store.ErrNotFound) {
		return sentinel
	}
	return err
}
