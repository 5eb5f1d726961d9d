// Package testdb provides helpers for Postgres-backed tests.
//
// Tests that need a database live behind the integration build tag and call
// GetTestDBWithT, which skips when no database URL is configured and applies
// the embedded migrations once per process. WithTx runs a test body inside a
// transaction that is always rolled back:
//
//	func TestMyStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        s := postgres.NewPostgresUserStore(tx, nil)
//	        // ...
//	    })
//	}
package testdb
