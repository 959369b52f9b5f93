package model

import "time"

// TokenKey is the fixed store key the panel bearer credential lives under.
const TokenKey = "token"

// Credential is a stored key-value secret. Key identifies the credential
// ("token"); Value is the plaintext after the store has decrypted it.
type Credential struct {
	ID        int64
	Key       string
	Value     string
	UpdatedAt time.Time
}
