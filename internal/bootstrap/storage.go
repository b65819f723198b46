package bootstrap

import (
	"context"
	"fmt"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/assets"
)

func OpenAssetStore(ctx context.Context, cfg config.StorageConfig) (assets.Store, error) {
	switch cfg.Backend {
	case "s3":
		return assets.NewS3Store(ctx, cfg)
	case "local":
		return assets.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix), nil
	}
	return nil, fmt.Errorf("unsupported OBJECT_STORE %q", cfg.Backend)
}
