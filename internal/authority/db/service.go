// Package db implements the authority's repository port over MongoDB: one
// Service per deployment built with mongo.Connect, index creation at
// startup, and graceful Close.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"
	"vcauthority/pkg/trace"
	"vcauthority/pkg/vaultclient"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Service is the concrete Repo, one Mongo client shared by all five
// sub-repositories.
type Service struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    *model.Cfg
	log    *logger.Log
	tp     *trace.Tracer

	request      *requestRepo
	interaction  *interactionRepo
	verification *verificationRepo
	issuing      *issuingRepo
	minions      *minionRepo
}

// New connects to Mongo and builds the five sub-repositories.
func New(ctx context.Context, cfg *model.Cfg, vault vaultclient.Port, tp *trace.Tracer, log *logger.Log) (*Service, error) {
	_, span := tp.Start(ctx, "db:New")
	defer span.End()

	uri, err := connectionURI(cfg, vault)
	if err != nil {
		return nil, err
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	defer cancelConnect()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}

	database := client.Database(cfg.Mongo.Database)

	s := &Service{
		client: client,
		db:     database,
		cfg:    cfg,
		log:    log,
		tp:     tp,

		request:      &requestRepo{coll: database.Collection("vc_request"), log: log.New("request_repo")},
		interaction:  &interactionRepo{coll: database.Collection("interaction"), log: log.New("interaction_repo")},
		verification: &verificationRepo{coll: database.Collection("verification"), log: log.New("verification_repo")},
		issuing:      &issuingRepo{coll: database.Collection("issuing"), log: log.New("issuing_repo")},
		minions:      &minionRepo{coll: database.Collection("minion"), log: log.New("minion_repo")},
	}

	if err := s.createIndexes(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// connectionURI prefers the explicit mongo.uri and otherwise assembles the
// connection string from db_config plus the vault-provided credential triple.
func connectionURI(cfg *model.Cfg, vault vaultclient.Port) (string, error) {
	if cfg.Mongo.URI != "" {
		return cfg.Mongo.URI, nil
	}
	if cfg.DBConfig.URL == "" {
		return "", apierror.New(apierror.Module, "neither mongo.uri nor db_config.url is configured")
	}

	secret, err := vault.Read(cfg.DBConfig.SecretsPath)
	if err != nil {
		return "", err
	}
	var creds model.DbSecrets
	if err := json.Unmarshal(secret.Value, &creds); err != nil {
		return "", apierror.Newf(apierror.Module, "decode db secrets: %s", err)
	}

	return fmt.Sprintf("mongodb://%s:%s@%s:%d/%s",
		url.QueryEscape(creds.User), url.QueryEscape(creds.Password),
		cfg.DBConfig.URL, cfg.DBConfig.Port, creds.Name), nil
}

func (s *Service) createIndexes(ctx context.Context) error {
	_, err := s.interaction.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "continue_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "interact_ref", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return err
	}

	_, err = s.verification.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "state", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Status pings the backend and reports whether it answered.
func (s *Service) Status(ctx context.Context) *model.Status {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := &model.Status{Name: "db", Timestamp: time.Now()}
	if err := s.client.Ping(pingCtx, nil); err != nil {
		status.Healthy = false
		status.Status = model.StatusFail
		status.Message = err.Error()
		return status
	}
	status.Healthy = true
	status.Status = model.StatusOK
	return status
}

// Close disconnects the Mongo client.
func (s *Service) Close(ctx context.Context) error {
	s.log.Info("Closing db connection")
	return s.client.Disconnect(ctx)
}

func (s *Service) Request() RequestRepository           { return s.request }
func (s *Service) Interaction() InteractionRepository   { return s.interaction }
func (s *Service) Verification() VerificationRepository { return s.verification }
func (s *Service) Issuing() IssuingRepository           { return s.issuing }
func (s *Service) Minions() MinionRepository            { return s.minions }
