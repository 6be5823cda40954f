package domain

import "github.com/google/uuid"

// BuildIdempotencyKey scopes a client-supplied Idempotency-Key to the payer.
func BuildIdempotencyKey(payerID uuid.UUID, clientKey string) string {
	return "transfer:" + payerID.String() + ":" + clientKey
}

// AccountLockKey is the lock key guarding an account balance.
func AccountLockKey(id uuid.UUID) string {
	return "account:" + id.String()
}

// TransactionLockKey is the lock key guarding a transaction's status.
func TransactionLockKey(id uuid.UUID) string {
	return "txn:" + id.String()
}
