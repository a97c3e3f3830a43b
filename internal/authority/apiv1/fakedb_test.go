package apiv1

import (
	"context"
	"sync"
	"vcauthority/internal/authority/db"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/model"
)

// fakeRepo is an in-memory db.Repo used to exercise the orchestration logic
// without a Mongo deployment.
type fakeRepo struct {
	mu sync.Mutex

	requests      map[string]*model.VcRequest
	interactions  map[string]*model.Interaction
	verifications map[string]*model.Verification
	issuings      map[string]*model.Issuing
	minions       map[string]*model.Minion
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		requests:      map[string]*model.VcRequest{},
		interactions:  map[string]*model.Interaction{},
		verifications: map[string]*model.Verification{},
		issuings:      map[string]*model.Issuing{},
		minions:       map[string]*model.Minion{},
	}
}

func (f *fakeRepo) CreateGrant(ctx context.Context, req *model.VcRequest, interaction *model.Interaction, issuing *model.Issuing, verification *model.Verification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.requests[req.ID]; ok {
		return apierror.New(apierror.BadFormatReceived, "duplicate grant id")
	}

	reqCopy := *req
	f.requests[req.ID] = &reqCopy
	interactionCopy := *interaction
	f.interactions[interaction.ID] = &interactionCopy
	issuingCopy := *issuing
	f.issuings[issuing.ID] = &issuingCopy
	if verification != nil {
		verificationCopy := *verification
		f.verifications[verification.ID] = &verificationCopy
	}
	return nil
}

func (f *fakeRepo) Status(ctx context.Context) *model.Status {
	return &model.Status{Name: "fake_db", Healthy: true, Status: model.StatusOK}
}

func (f *fakeRepo) Request() db.RequestRepository           { return fakeRequestRepo{f} }
func (f *fakeRepo) Interaction() db.InteractionRepository   { return fakeInteractionRepo{f} }
func (f *fakeRepo) Verification() db.VerificationRepository { return fakeVerificationRepo{f} }
func (f *fakeRepo) Issuing() db.IssuingRepository           { return fakeIssuingRepo{f} }
func (f *fakeRepo) Minions() db.MinionRepository            { return fakeMinionRepo{f} }

type fakeRequestRepo struct{ f *fakeRepo }

func (r fakeRequestRepo) Create(ctx context.Context, req *model.VcRequest) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.requests[req.ID] = req
	return nil
}

func (r fakeRequestRepo) GetByID(ctx context.Context, id string) (*model.VcRequest, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	req, ok := r.f.requests[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	return req, nil
}

func (r fakeRequestRepo) Update(ctx context.Context, req *model.VcRequest) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.requests[req.ID]; !ok {
		return apierror.ErrNotFound
	}
	r.f.requests[req.ID] = req
	return nil
}

type fakeInteractionRepo struct{ f *fakeRepo }

func (r fakeInteractionRepo) Create(ctx context.Context, interaction *model.Interaction) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.interactions[interaction.ID] = interaction
	return nil
}

func (r fakeInteractionRepo) GetByID(ctx context.Context, id string) (*model.Interaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	i, ok := r.f.interactions[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	return i, nil
}

func (r fakeInteractionRepo) Update(ctx context.Context, interaction *model.Interaction) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.interactions[interaction.ID]; !ok {
		return apierror.ErrNotFound
	}
	r.f.interactions[interaction.ID] = interaction
	return nil
}

func (r fakeInteractionRepo) GetByContID(ctx context.Context, contID string) (*model.Interaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, i := range r.f.interactions {
		if i.ContinueID == contID {
			return i, nil
		}
	}
	return nil, apierror.ErrNotFound
}

func (r fakeInteractionRepo) GetByReference(ctx context.Context, interactRef string) (*model.Interaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, i := range r.f.interactions {
		if i.InteractRef == interactRef {
			return i, nil
		}
	}
	return nil, apierror.ErrNotFound
}

type fakeVerificationRepo struct{ f *fakeRepo }

func (r fakeVerificationRepo) Create(ctx context.Context, v *model.Verification) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.verifications[v.ID] = v
	return nil
}

func (r fakeVerificationRepo) GetByID(ctx context.Context, id string) (*model.Verification, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	v, ok := r.f.verifications[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	return v, nil
}

func (r fakeVerificationRepo) Update(ctx context.Context, v *model.Verification) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.verifications[v.ID]; !ok {
		return apierror.ErrNotFound
	}
	r.f.verifications[v.ID] = v
	return nil
}

func (r fakeVerificationRepo) GetByState(ctx context.Context, state string) (*model.Verification, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, v := range r.f.verifications {
		if v.State == state {
			return v, nil
		}
	}
	return nil, apierror.ErrNotFound
}

type fakeIssuingRepo struct{ f *fakeRepo }

func (r fakeIssuingRepo) Create(ctx context.Context, issuing *model.Issuing) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.issuings[issuing.ID] = issuing
	return nil
}

func (r fakeIssuingRepo) GetByID(ctx context.Context, id string) (*model.Issuing, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	i, ok := r.f.issuings[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	return i, nil
}

func (r fakeIssuingRepo) GetByPreAuthCode(ctx context.Context, code string) (*model.Issuing, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, i := range r.f.issuings {
		if i.PreAuthCode == code {
			return i, nil
		}
	}
	return nil, apierror.ErrNotFound
}

func (r fakeIssuingRepo) GetByToken(ctx context.Context, token string) (*model.Issuing, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, i := range r.f.issuings {
		if i.Token == token {
			return i, nil
		}
	}
	return nil, apierror.ErrNotFound
}

func (r fakeIssuingRepo) Update(ctx context.Context, issuing *model.Issuing) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.issuings[issuing.ID]; !ok {
		return apierror.ErrNotFound
	}
	r.f.issuings[issuing.ID] = issuing
	return nil
}

type fakeMinionRepo struct{ f *fakeRepo }

func (r fakeMinionRepo) Create(ctx context.Context, minion *model.Minion) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.minions[minion.ParticipantID] = minion
	return nil
}

func (r fakeMinionRepo) GetAll(ctx context.Context) ([]*model.Minion, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := make([]*model.Minion, 0, len(r.f.minions))
	for _, m := range r.f.minions {
		out = append(out, m)
	}
	return out, nil
}

func (r fakeMinionRepo) GetByID(ctx context.Context, id string) (*model.Minion, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, ok := r.f.minions[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	return m, nil
}

func (r fakeMinionRepo) GetMe(ctx context.Context) (*model.Minion, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, m := range r.f.minions {
		if m.IsMe {
			return m, nil
		}
	}
	return nil, apierror.ErrNotFound
}

func (r fakeMinionRepo) Upsert(ctx context.Context, minion *model.Minion) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.minions[minion.ParticipantID] = minion
	return nil
}

var _ db.Repo = (*fakeRepo)(nil)
