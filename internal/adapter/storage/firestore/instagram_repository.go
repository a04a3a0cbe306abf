package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
)

const instagramUsersCollection = "instagram_users"

type InstagramRepository struct {
	client *firestore.Client
	log    *zap.Logger
}

func NewInstagramRepository(client *firestore.Client, log *zap.Logger) ports.InstagramRepository {
	return &InstagramRepository{
		client: client,
		log:    log,
	}
}

func (r *InstagramRepository) Save(ctx context.Context, user *domain.InstagramUser) error {
	if user.UserID == "" {
		return fmt.Errorf("instagram user has no id")
	}
	_, err := r.client.Collection(instagramUsersCollection).Doc(user.UserID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to save instagram user: %w", err)
	}
	return nil
}

func (r *InstagramRepository) Find(ctx context.Context, userID string) (*domain.InstagramUser, error) {
	snap, err := r.client.Collection(instagramUsersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var user domain.InstagramUser
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode instagram user: %w", err)
	}
	user.UserID = snap.Ref.ID
	return &user, nil
}

func (r *InstagramRepository) FindByPageID(ctx context.Context, pageID string) (*domain.InstagramUser, error) {
	iter := r.client.Collection(instagramUsersCollection).
		Where("page_id", "==", pageID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query instagram users: %w", err)
	}

	var user domain.InstagramUser
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode instagram user: %w", err)
	}
	user.UserID = snap.Ref.ID
	return &user, nil
}

func (r *InstagramRepository) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	_, err := r.client.Collection(instagramUsersCollection).Doc(userID).
		Set(ctx, map[string]interface{}{"enabled": enabled}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update instagram user: %w", err)
	}
	return nil
}
