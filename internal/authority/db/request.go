package db

import (
	"context"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type requestRepo struct {
	coll *mongo.Collection
	log  *logger.Log
}

func (r *requestRepo) Create(ctx context.Context, req *model.VcRequest) error {
	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return apierror.Wrap(err)
	}
	return nil
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.VcRequest, error) {
	var req model.VcRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &req, nil
}

func (r *requestRepo) Update(ctx context.Context, req *model.VcRequest) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": req.ID}, req)
	if err != nil {
		return apierror.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return apierror.ErrNotFound
	}
	return nil
}

var _ RequestRepository = (*requestRepo)(nil)
