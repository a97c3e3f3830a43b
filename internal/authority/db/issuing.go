package db

import (
	"context"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type issuingRepo struct {
	coll *mongo.Collection
	log  *logger.Log
}

func (r *issuingRepo) Create(ctx context.Context, issuing *model.Issuing) error {
	if _, err := r.coll.InsertOne(ctx, issuing); err != nil {
		return apierror.Wrap(err)
	}
	return nil
}

func (r *issuingRepo) GetByID(ctx context.Context, id string) (*model.Issuing, error) {
	var issuing model.Issuing
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issuing); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &issuing, nil
}

func (r *issuingRepo) GetByPreAuthCode(ctx context.Context, code string) (*model.Issuing, error) {
	var issuing model.Issuing
	if err := r.coll.FindOne(ctx, bson.M{"pre_auth_code": code}).Decode(&issuing); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &issuing, nil
}

func (r *issuingRepo) GetByToken(ctx context.Context, token string) (*model.Issuing, error) {
	var issuing model.Issuing
	if err := r.coll.FindOne(ctx, bson.M{"token": token}).Decode(&issuing); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &issuing, nil
}

func (r *issuingRepo) Update(ctx context.Context, issuing *model.Issuing) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": issuing.ID}, issuing)
	if err != nil {
		return apierror.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return apierror.ErrNotFound
	}
	return nil
}

var _ IssuingRepository = (*issuingRepo)(nil)
