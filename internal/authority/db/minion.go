package db

import (
	"context"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type minionRepo struct {
	coll *mongo.Collection
	log  *logger.Log
}

func (r *minionRepo) Create(ctx context.Context, minion *model.Minion) error {
	if _, err := r.coll.InsertOne(ctx, minion); err != nil {
		return apierror.Wrap(err)
	}
	return nil
}

func (r *minionRepo) GetAll(ctx context.Context) ([]*model.Minion, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apierror.Wrap(err)
	}
	defer cur.Close(ctx)

	var minions []*model.Minion
	if err := cur.All(ctx, &minions); err != nil {
		return nil, apierror.Wrap(err)
	}
	return minions, nil
}

func (r *minionRepo) GetByID(ctx context.Context, id string) (*model.Minion, error) {
	var minion model.Minion
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&minion); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &minion, nil
}

func (r *minionRepo) GetMe(ctx context.Context) (*model.Minion, error) {
	var minion model.Minion
	if err := r.coll.FindOne(ctx, bson.M{"is_me": true}).Decode(&minion); err != nil {
		return nil, apierror.Wrap(err)
	}
	return &minion, nil
}

func (r *minionRepo) Upsert(ctx context.Context, minion *model.Minion) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": minion.ParticipantID}, minion, opts); err != nil {
		return apierror.Wrap(err)
	}
	return nil
}

var _ MinionRepository = (*minionRepo)(nil)
