package db

import (
	"context"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// CreateGrant persists the {VcRequest, Interaction, Issuing, [Verification]}
// tuple atomically inside one Mongo session — a partial failure must leave
// no record of any of them.
func (s *Service) CreateGrant(ctx context.Context, req *model.VcRequest, interaction *model.Interaction, issuing *model.Issuing, verification *model.Verification) error {
	session, err := s.client.StartSession()
	if err != nil {
		return apierror.Wrap(err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		if _, err := s.request.coll.InsertOne(sessCtx, req); err != nil {
			return nil, err
		}
		if _, err := s.interaction.coll.InsertOne(sessCtx, interaction); err != nil {
			return nil, err
		}
		if _, err := s.issuing.coll.InsertOne(sessCtx, issuing); err != nil {
			return nil, err
		}
		if verification != nil {
			if _, err := s.verification.coll.InsertOne(sessCtx, verification); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return apierror.Wrap(err)
	}

	return nil
}
