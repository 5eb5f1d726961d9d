// Package mocks provides centralized mock implementations for testing.
//
// Stores are backed by in-memory maps and expose function fields that
// override the default behavior of each method:
//
//	users := mocks.NewMockUserStore()
//	users.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
//	    return nil, store.ErrUserNotFound
//	}
//
// TestifyMockUserStore is the testify/mock variant for tests that assert on
// call expectations.
package mocks
