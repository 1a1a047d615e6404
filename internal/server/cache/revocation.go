package cache

import (
	"context"
	"time"
)

// RevocationList remembers logged-out token ids until the token would
// have expired anyway.
type RevocationList struct {
	kv KV
}

func NewRevocationList(kv KV) *RevocationList {
	return &RevocationList{kv: kv}
}

func revokedKey(jti string) string { return "jti:" + jti }

func (r *RevocationList) Revoke(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		ttl = time.Minute
	}
	_, err := r.kv.SetNX(ctx, revokedKey(jti), []byte("1"), ttl)
	return err
}

func (r *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.kv.Exists(ctx, revokedKey(jti))
}
