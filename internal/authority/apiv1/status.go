package apiv1

import (
	"context"
	"vcauthority/pkg/model"
)

// Status reports the aggregate health of the authority's dependencies,
// served by the health endpoint.
func (c *Client) Status(ctx context.Context) (*model.Status, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Status")
	defer span.End()

	manyStatus := model.ManyStatus{}
	manyStatus = append(manyStatus, c.db.Status(ctx))

	return manyStatus.Check(), nil
}
