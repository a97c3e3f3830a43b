package db

import (
	"context"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type interactionRepo struct {
	coll *mongo.Collection
	log  *logger.Log
}

func (r *interactionRepo) Create(ctx context.Context, interaction *model.Interaction) error {
	if _, err := r.coll.InsertOne(ctx, interaction); err != nil {
		return apierror.Wrap(err)
	}
	return nil
}

func (r *interactionRepo) GetByID(ctx context.Context, id string) (*model.Interaction, error) {
	var interaction model.Interaction
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&interaction); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &interaction, nil
}

func (r *interactionRepo) Update(ctx context.Context, interaction *model.Interaction) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": interaction.ID}, interaction)
	if err != nil {
		return apierror.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return apierror.ErrNotFound
	}
	return nil
}

func (r *interactionRepo) GetByContID(ctx context.Context, contID string) (*model.Interaction, error) {
	var interaction model.Interaction
	if err := r.coll.FindOne(ctx, bson.M{"continue_id": contID}).Decode(&interaction); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &interaction, nil
}

func (r *interactionRepo) GetByReference(ctx context.Context, interactRef string) (*model.Interaction, error) {
	var interaction model.Interaction
	if err := r.coll.FindOne(ctx, bson.M{"interact_ref": interactRef}).Decode(&interaction); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &interaction, nil
}

var _ InteractionRepository = (*interactionRepo)(nil)
