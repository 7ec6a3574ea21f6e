package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Valkey backs the optional distributed conversation-context store. The
// ingestion pipeline never touches it; only the worker does.

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

const valkeyOpTimeout = 3 * time.Second

type ValkeyClient struct {
	Client valkey.Client
}

func InitValkey() *ValkeyClient {
	valkeyOnce.Do(func() {
		valkeyAddr := os.Getenv("VALKEY_INIT_ADDRESS")
		valkeyPassword := os.Getenv("VALKEY_PASSWORD")
		useTLS := os.Getenv("VALKEY_TLS") == "true"

		opts := valkey.ClientOption{
			InitAddress:      []string{valkeyAddr},
			Password:         valkeyPassword,
			ConnWriteTimeout: 5 * time.Second,
			SelectDB:         0,
		}
		if useTLS {
			opts.TLSConfig = &tls.Config{}
		}

		client, err := valkey.NewClient(opts)
		if err != nil {
			panic(fmt.Errorf("[ValkeyClient] failed to create Valkey client: %w", err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), valkeyOpTimeout)
		defer cancel()

		if res := client.Do(ctx, client.B().Ping().Build()); res.Error() != nil {
			panic(fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", res.Error()))
		}

		slog.Info("[ValkeyClient] Successfully connected to valkey")
		valkeyInstance = &ValkeyClient{Client: client}
	})
	return valkeyInstance
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Client.Close()
	}
}

// GetString fetches a key; a missing key comes back as ("", nil).
func (vc *ValkeyClient) GetString(ctx context.Context, key string) (string, error) {
	res := vc.Client.Do(ctx, vc.Client.B().Get().Key(key).Build())
	if err := res.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return "", nil
		}
		return "", err
	}
	return res.ToString()
}

func (vc *ValkeyClient) SetString(ctx context.Context, key, value string) error {
	res := vc.Client.Do(ctx, vc.Client.B().Set().Key(key).Value(value).Build())
	return res.Error()
}

func (vc *ValkeyClient) Delete(ctx context.Context, key string) error {
	res := vc.Client.Do(ctx, vc.Client.B().Del().Key(key).Build())
	return res.Error()
}
