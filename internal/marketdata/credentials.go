package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/avandermeer/stock-ledger-backend/internal/repository"
)

const feedTokenKey = "feed_token"

// Credentials stores the market-data feed token fernet-encrypted in the
// system_setting table. The fernet key comes from configuration and never
// touches the database.
type Credentials struct {
	settings *repository.SettingRepository
	key      *fernet.Key
}

// NewCredentials creates a Credentials store from a base64 fernet key.
func NewCredentials(settings *repository.SettingRepository, encodedKey string) (*Credentials, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}
	return &Credentials{settings: settings, key: key}, nil
}

// SaveToken encrypts and stores the feed token.
func (c *Credentials) SaveToken(ctx context.Context, token string) error {
	sealed, err := fernet.EncryptAndSign([]byte(token), c.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt feed token: %w", err)
	}
	return c.settings.Set(ctx, feedTokenKey, string(sealed))
}

// Token decrypts and returns the stored feed token. Returns an empty string
// when no token has been stored.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	sealed, ok, err := c.settings.Get(ctx, feedTokenKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	// TTL 0: tokens do not expire; rotation happens by saving a new one.
	plain := fernet.VerifyAndDecrypt([]byte(sealed), 0*time.Second, []*fernet.Key{c.key})
	if plain == nil {
		return "", fmt.Errorf("failed to decrypt feed token")
	}
	return string(plain), nil
}
