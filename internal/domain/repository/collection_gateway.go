package repository

import (
	"context"

	"flightdesk-service/internal/domain/entity"
)

// CollectionGateway defines the remote CRUD operations a list view needs
type CollectionGateway interface {
	// FetchAll returns the complete remote collection
	FetchAll(ctx context.Context) (entity.Collection, error)

	// Create inserts one record
	Create(ctx context.Context, record entity.Record) error

	// DeleteByKey removes the entity identified by the ordered key fields
	DeleteByKey(ctx context.Context, key []entity.KeyField) error
}

// RelatedCollectionGateway reads collections reached from one entity
// through a navigation property
type RelatedCollectionGateway interface {
	FetchRelated(ctx context.Context, key []entity.KeyField, navigation string) (entity.Collection, error)
}
