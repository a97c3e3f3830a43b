package apiv1

import (
	"context"
	"vcauthority/pkg/model"
)

// GetAllMinions implements the `GET /minions/all` directory listing.
func (c *Client) GetAllMinions(ctx context.Context) ([]*model.Minion, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Minions:GetAllMinions")
	defer span.End()

	return c.db.Minions().GetAll(ctx)
}

// GetMinionByID implements `GET /minions/{id}`.
func (c *Client) GetMinionByID(ctx context.Context, id string) (*model.Minion, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Minions:GetMinionByID")
	defer span.End()

	return c.db.Minions().GetByID(ctx, id)
}

// GetMe implements `GET /minions/myself`: this Authority's own directory
// self-description, the entry flagged is_me.
func (c *Client) GetMe(ctx context.Context) (*model.Minion, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Minions:GetMe")
	defer span.End()

	return c.db.Minions().GetMe(ctx)
}

// recordMinion upserts the directory entry for a VcRequest's participant the
// first time IssueCred hands out a credential for it.
func (c *Client) recordMinion(ctx context.Context, req *model.VcRequest, issuing *model.Issuing) error {
	ctx, span := c.tp.Start(ctx, "apiv1:Minions:recordMinion")
	defer span.End()

	minion := &model.Minion{
		ParticipantID:   issuing.HolderDID,
		ParticipantSlug: req.ParticipantSlug,
		ParticipantType: req.VcType.Name(),
		VcURI:           req.VcURI,
		IsVcIssued:      true,
		IsMe:            false,
	}
	return c.db.Minions().Upsert(ctx, minion)
}
