// Package badger provides the persistent implementation of the engine
// interface on top of dgraph-io/badger. Badger's LSM tree keeps keys in
// byte-wise order, its transactions give the begin/commit/rollback semantics
// the contract requires, and its value log stores large values out of line,
// which serves as the overflow path for payloads beyond inline capacity.
//
// Value handles issued by this engine are tokens over a transaction-local key
// table; materializing a handle re-reads the key inside the same transaction,
// so the cost of fetching value bytes is only paid for values a caller
// actually asks for.
package badger
