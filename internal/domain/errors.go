package domain

import "errors"

var (
	// ErrListNotFound is returned when a shopping list does not exist
	ErrListNotFound = errors.New("shopping list not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPriceLookupFailed is returned when the price-lookup collaborator fails during a store switch.
	// The switch is aborted and the list is left as it was.
	ErrPriceLookupFailed = errors.New("price lookup failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrPriceFeedFailure is returned when the store price feed request fails
	ErrPriceFeedFailure = errors.New("price feed request failed")

	// ErrStoreNotFound is returned when the price feed does not know the store
	ErrStoreNotFound = errors.New("store not found")
)
