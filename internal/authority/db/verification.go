package db

import (
	"context"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type verificationRepo struct {
	coll *mongo.Collection
	log  *logger.Log
}

func (r *verificationRepo) Create(ctx context.Context, verification *model.Verification) error {
	if _, err := r.coll.InsertOne(ctx, verification); err != nil {
		return apierror.Wrap(err)
	}
	return nil
}

func (r *verificationRepo) GetByID(ctx context.Context, id string) (*model.Verification, error) {
	var verification model.Verification
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&verification); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &verification, nil
}

func (r *verificationRepo) Update(ctx context.Context, verification *model.Verification) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": verification.ID}, verification)
	if err != nil {
		return apierror.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return apierror.ErrNotFound
	}
	return nil
}

func (r *verificationRepo) GetByState(ctx context.Context, state string) (*model.Verification, error) {
	var verification model.Verification
	if err := r.coll.FindOne(ctx, bson.M{"state": state}).Decode(&verification); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &verification, nil
}

var _ VerificationRepository = (*verificationRepo)(nil)
