package usecase

import (
	"context"
	"fmt"

	"flightdesk-service/internal/domain/entity"
	"flightdesk-service/internal/domain/repository"
	"flightdesk-service/pkg/logger"
	"flightdesk-service/pkg/metrics"
)

// relatedGateway scopes a RelatedCollectionGateway to one parent entity.
// The related set is read-only.
type relatedGateway struct {
	source     repository.RelatedCollectionGateway
	parentKey  []entity.KeyField
	navigation string
}

func (g *relatedGateway) FetchAll(ctx context.Context) (entity.Collection, error) {
	return g.source.FetchRelated(ctx, g.parentKey, g.navigation)
}

func (g *relatedGateway) Create(context.Context, entity.Record) error {
	return fmt.Errorf("create in %s: %w", g.navigation, entity.ErrReadOnly)
}

func (g *relatedGateway) DeleteByKey(context.Context, []entity.KeyField) error {
	return fmt.Errorf("delete in %s: %w", g.navigation, entity.ErrReadOnly)
}

// NewDetailController creates a controller over the set related to parent
// through related.Navigation. The parent key is built with parentView's key
// rules; Load fetches the related set.
func NewDetailController(
	parentView entity.ViewDefinition,
	parent entity.Record,
	related entity.ViewDefinition,
	source repository.RelatedCollectionGateway,
	listener Listener,
	log logger.Logger,
	m *metrics.Metrics,
) (*ListDetailController, error) {
	if related.Navigation == "" {
		return nil, fmt.Errorf("view %s has no navigation property: %w", related.Name, entity.ErrInvalidKey)
	}
	key, err := parentView.BuildKey(parent)
	if err != nil {
		return nil, entity.NewFault(entity.ValidationFault, "detail", err)
	}

	gateway := &relatedGateway{source: source, parentKey: key, navigation: related.Navigation}
	ctrl := NewListDetailController(related, gateway, listener, log.With("parentKey", entity.KeyString(key)), m)
	return ctrl, nil
}
