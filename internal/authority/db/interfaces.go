package db

import (
	"context"
	"vcauthority/pkg/model"
)

// RequestRepository is the `request` sub-repository.
type RequestRepository interface {
	Create(ctx context.Context, req *model.VcRequest) error
	GetByID(ctx context.Context, id string) (*model.VcRequest, error)
	Update(ctx context.Context, req *model.VcRequest) error
}

// InteractionRepository is the `interaction` sub-repository, with two
// entity-specific lookups alongside the common CRUD set.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *model.Interaction) error
	GetByID(ctx context.Context, id string) (*model.Interaction, error)
	Update(ctx context.Context, interaction *model.Interaction) error
	GetByContID(ctx context.Context, contID string) (*model.Interaction, error)
	GetByReference(ctx context.Context, interactRef string) (*model.Interaction, error)
}

// VerificationRepository is the `verification` sub-repository.
type VerificationRepository interface {
	Create(ctx context.Context, verification *model.Verification) error
	GetByID(ctx context.Context, id string) (*model.Verification, error)
	Update(ctx context.Context, verification *model.Verification) error
	GetByState(ctx context.Context, state string) (*model.Verification, error)
}

// IssuingRepository is the `issuing` sub-repository.
type IssuingRepository interface {
	Create(ctx context.Context, issuing *model.Issuing) error
	GetByID(ctx context.Context, id string) (*model.Issuing, error)
	GetByPreAuthCode(ctx context.Context, code string) (*model.Issuing, error)
	GetByToken(ctx context.Context, token string) (*model.Issuing, error)
	Update(ctx context.Context, issuing *model.Issuing) error
}

// MinionRepository is the `minions` sub-repository.
type MinionRepository interface {
	Create(ctx context.Context, minion *model.Minion) error
	GetAll(ctx context.Context) ([]*model.Minion, error)
	GetByID(ctx context.Context, id string) (*model.Minion, error)
	GetMe(ctx context.Context) (*model.Minion, error)
	// Upsert replaces the directory entry keyed by minion.ParticipantID,
	// inserting it if absent. Credential issuance is idempotent, so
	// replaying it must not fail on an already-registered participant.
	Upsert(ctx context.Context, minion *model.Minion) error
}

// Repo aggregates the five sub-repositories plus the one transactional
// cross-cutting operation: creating the
// {VcRequest, Interaction, Issuing, [Verification]} tuple.
type Repo interface {
	Request() RequestRepository
	Interaction() InteractionRepository
	Verification() VerificationRepository
	Issuing() IssuingRepository
	Minions() MinionRepository

	// CreateGrant persists VcRequest, Interaction and Issuing atomically, and
	// Verification too when it is non-nil. A partial failure leaves no
	// record of any of them.
	CreateGrant(ctx context.Context, req *model.VcRequest, interaction *model.Interaction, issuing *model.Issuing, verification *model.Verification) error

	// Status reports whether the backend is reachable.
	Status(ctx context.Context) *model.Status
}

var _ Repo = (*Service)(nil)
