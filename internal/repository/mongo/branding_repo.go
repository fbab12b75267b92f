package mongo

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const brandingCollectionName = "settings"

type mongoBrandingRepository struct {
	collection *mongo.Collection
}

// NewMongoBrandingRepository stores branding as a single fixed-id document.
func NewMongoBrandingRepository(db *mongo.Database) repository.BrandingRepository {
	return &mongoBrandingRepository{
		collection: db.Collection(brandingCollectionName),
	}
}

func (r *mongoBrandingRepository) Get(ctx context.Context) (*domain.Branding, error) {
	var branding domain.Branding
	err := r.collection.FindOne(ctx, bson.M{"_id": domain.BrandingDocumentID}).Decode(&branding)
	if err != nil {
		return nil, wrapError(err)
	}
	return &branding, nil
}

func (r *mongoBrandingRepository) Save(ctx context.Context, branding *domain.Branding) error {
	branding.ID = domain.BrandingDocumentID
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": domain.BrandingDocumentID},
		branding,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return wrapError(err)
	}
	return nil
}
