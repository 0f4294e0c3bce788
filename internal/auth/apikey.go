package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/store"
)

// KeyPrefix is the provisioning convention for notebook API keys. Candidates
// without it are rejected before any store lookup, so malformed or scanning
// traffic never costs a query.
const KeyPrefix = "nlk_"

// GenerateKey mints a new notebook API key string.
func GenerateKey() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return KeyPrefix + hex.EncodeToString(raw), nil
}

// KeyVerifier checks machine-caller keys against one notebook's stored key.
type KeyVerifier struct {
	keys store.APIKeys
}

func NewKeyVerifier(keys store.APIKeys) *KeyVerifier {
	return &KeyVerifier{keys: keys}
}

// VerifyKey reports whether candidate is the notebook's key and meets the
// required permission. A read_only key fails a full_access requirement even
// when the string matches. Comparison is constant-time.
func (v *KeyVerifier) VerifyKey(ctx context.Context, candidate, notebookID string, required model.APIKeyPermission) bool {
	if !strings.HasPrefix(candidate, KeyPrefix) {
		return false
	}
	k, err := v.keys.GetByNotebook(ctx, notebookID)
	if err != nil {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(k.Secret)) != 1 {
		return false
	}
	if required == model.KeyFullAccess && k.Permission != model.KeyFullAccess {
		return false
	}
	return true
}
