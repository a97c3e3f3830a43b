package openid4vp

import (
	"encoding/json"
	"fmt"
)

// NewVPDef builds a presentation definition with one input descriptor per
// requested VC type.
func NewVPDef(id string, vcsRequested []string) VPDef {
	descriptors := make([]InputDescriptor, 0, len(vcsRequested))
	for i, vcType := range vcsRequested {
		constraints, _ := json.Marshal(map[string]any{
			"fields": []map[string]any{
				{
					"path":   []string{"$.type"},
					"filter": map[string]any{"const": vcType},
				},
			},
		})
		descriptors = append(descriptors, InputDescriptor{
			ID:          fmt.Sprintf("%s-%d", id, i),
			Name:        vcType,
			Constraints: constraints,
		})
	}

	return VPDef{
		ID:               id,
		InputDescriptors: descriptors,
	}
}
