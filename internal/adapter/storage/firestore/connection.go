package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/sundinlabs/multibot/pkg/config"
)

// NewClient connects to Firestore using the configured project and,
// when set, an explicit credentials file.
func NewClient(ctx context.Context, cfg config.FirestoreConfig, log *zap.Logger) (*firestore.Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id is not configured")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	log.Info("Successfully connected to Firestore", zap.String("project", cfg.ProjectID))
	return client, nil
}
