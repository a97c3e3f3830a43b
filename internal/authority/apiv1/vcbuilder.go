package apiv1

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"strings"
	"time"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/model"
)

// legalRegistrationNumberOID is X.509 subject attribute 2.5.4.97
// (organizationIdentifier), the gaia-x-style carrier for a participant's
// legal registration number.
var legalRegistrationNumberOID = []int{2, 5, 4, 97}

// vcSubject builds the credentialSubject for one grant, role-parameterized.
// Only one of the two concrete builders below is ever consulted directly;
// EcoAuthority dispatches between them.
//
// GatherData runs at continuation time, before the holder DID is known, and
// its JSON result is cached on Issuing.CredentialData; Build runs at
// issuance time, once DID-possession proof has resolved HolderDID, and
// folds it into the cached facts rather than re-parsing the certificate.
type vcSubject interface {
	GatherData(ctx context.Context, req *model.VcRequest) (string, error)
	Build(ctx context.Context, req *model.VcRequest, issuing *model.Issuing) (map[string]any, error)
}

// legalAuthorityBuilder decodes the client's certificate and extracts the
// requested LegalRegistrationNumber subtype's code.
type legalAuthorityBuilder struct{}

func (legalAuthorityBuilder) GatherData(ctx context.Context, req *model.VcRequest) (string, error) {
	if req.VcType.Kind != model.VcTypeKindLegalRegistrationNumber {
		return "", apierror.Newf(apierror.Unauthorized, "legal authority cannot build %s", req.VcType)
	}

	code, err := extractLegalRegistrationNumber(req.Cert, req.VcType.Subtype)
	if err != nil {
		return "", err
	}

	facts, err := json.Marshal(map[string]any{
		"type":                            req.VcType.Subtype.GxType(),
		req.VcType.Subtype.SubjectField(): code,
	})
	if err != nil {
		return "", apierror.Newf(apierror.BadFormatProduced, "marshal gathered legal registration data: %s", err)
	}
	return string(facts), nil
}

func (b legalAuthorityBuilder) Build(ctx context.Context, req *model.VcRequest, issuing *model.Issuing) (map[string]any, error) {
	if req.VcType.Kind != model.VcTypeKindLegalRegistrationNumber {
		return nil, apierror.Newf(apierror.Unauthorized, "legal authority cannot build %s", req.VcType)
	}
	return buildFromGathered(ctx, b, req, issuing)
}

// extractLegalRegistrationNumber decodes a base64 PEM/DER certificate,
// locates subject OID 2.5.4.97, splits its value on "+", and returns the
// first segment equal to subtype.OIDPrefix() joined by "+" to the segment
// after it (the prefix alone when it is the last segment). A missing OID or
// matching prefix is BadFormat.
func extractLegalRegistrationNumber(certB64 string, subtype model.LegalRegistrationNumberSubtype) (string, error) {
	if certB64 == "" {
		return "", apierror.New(apierror.BadFormatReceived, "no client certificate presented")
	}

	raw, err := base64.StdEncoding.DecodeString(certB64)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(certB64)
		if err != nil {
			return "", apierror.Newf(apierror.BadFormatReceived, "decode client certificate: %s", err)
		}
	}

	der := raw
	if block, _ := pem.Decode(raw); block != nil {
		der = block.Bytes
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return "", apierror.Newf(apierror.BadFormatReceived, "parse client certificate: %s", err)
	}

	var orgID string
	for _, name := range cert.Subject.Names {
		if name.Type.Equal(legalRegistrationNumberOID) {
			if s, ok := name.Value.(string); ok {
				orgID = s
				break
			}
		}
	}
	if orgID == "" {
		return "", apierror.New(apierror.BadFormatReceived, "certificate subject has no organizationIdentifier (2.5.4.97)")
	}

	// The code is carried as "<prefix>+<value>" inside the "+"-delimited
	// organizationIdentifier (e.g. "ES+TAX+B12345678"); the subject field
	// keeps the prefix attached (e.g. `taxID == "TAX+B12345678"`).
	prefix := subtype.OIDPrefix()
	segments := strings.Split(orgID, "+")
	for i, segment := range segments {
		if segment != prefix {
			continue
		}
		if i+1 < len(segments) {
			return segment + "+" + segments[i+1], nil
		}
		return segment, nil
	}

	return "", apierror.Newf(apierror.BadFormatReceived, "no %q segment in organizationIdentifier %q", prefix, orgID)
}

// dataSpaceAuthorityBuilder produces a static-field subject, no certificate
// parsing involved.
type dataSpaceAuthorityBuilder struct {
	cfg model.IssueConfig
}

func (b dataSpaceAuthorityBuilder) GatherData(ctx context.Context, req *model.VcRequest) (string, error) {
	if req.VcType.Kind != model.VcTypeKindDataspaceParticipant {
		return "", apierror.Newf(apierror.Unauthorized, "dataspace authority cannot build %s", req.VcType)
	}
	if b.cfg.DataspaceID == "" {
		return "", apierror.New(apierror.Module, "issue_config.dataspace_id not configured")
	}

	facts, err := json.Marshal(map[string]any{
		"dataspace_id":          b.cfg.DataspaceID,
		"federated_catalog_uri": b.cfg.FederatedCatalogURI,
	})
	if err != nil {
		return "", apierror.Newf(apierror.BadFormatProduced, "marshal gathered dataspace data: %s", err)
	}
	return string(facts), nil
}

func (b dataSpaceAuthorityBuilder) Build(ctx context.Context, req *model.VcRequest, issuing *model.Issuing) (map[string]any, error) {
	if req.VcType.Kind != model.VcTypeKindDataspaceParticipant {
		return nil, apierror.Newf(apierror.Unauthorized, "dataspace authority cannot build %s", req.VcType)
	}
	return buildFromGathered(ctx, b, req, issuing)
}

// ecoAuthorityBuilder dispatches to whichever concrete builder fits the
// requested vc_type.
type ecoAuthorityBuilder struct {
	legal     legalAuthorityBuilder
	dataSpace dataSpaceAuthorityBuilder
}

func (b ecoAuthorityBuilder) concrete(vt model.VcType) (vcSubject, error) {
	switch vt.Kind {
	case model.VcTypeKindLegalRegistrationNumber:
		return b.legal, nil
	case model.VcTypeKindDataspaceParticipant:
		return b.dataSpace, nil
	default:
		return nil, apierror.Newf(apierror.BadFormatUnknown, "unbuildable vc_type %s", vt)
	}
}

func (b ecoAuthorityBuilder) GatherData(ctx context.Context, req *model.VcRequest) (string, error) {
	concrete, err := b.concrete(req.VcType)
	if err != nil {
		return "", err
	}
	return concrete.GatherData(ctx, req)
}

func (b ecoAuthorityBuilder) Build(ctx context.Context, req *model.VcRequest, issuing *model.Issuing) (map[string]any, error) {
	concrete, err := b.concrete(req.VcType)
	if err != nil {
		return nil, err
	}
	return concrete.Build(ctx, req, issuing)
}

// buildFromGathered folds the cached Issuing.CredentialData JSON (produced
// by GatherData at continuation time) and the now-known HolderDID into one
// credentialSubject map. A blank CredentialData falls back to gathering
// fresh, covering records created before this field existed.
func buildFromGathered(ctx context.Context, b vcSubject, req *model.VcRequest, issuing *model.Issuing) (map[string]any, error) {
	gathered := issuing.CredentialData
	if gathered == "" {
		var err error
		gathered, err = b.GatherData(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	subject := map[string]any{}
	if err := json.Unmarshal([]byte(gathered), &subject); err != nil {
		return nil, apierror.Newf(apierror.BadFormatReceived, "unmarshal gathered credential data: %s", err)
	}
	subject["id"] = issuing.HolderDID
	return subject, nil
}

// envelope wraps a credentialSubject in the W3C VC envelope shared by both
// concrete builders.
func envelope(vcConfig model.VCConfig, vcType model.VcType, subject map[string]any, credentialID, issuerDID string) (map[string]any, error) {
	if vcConfig.VCModel != model.VCModelJwtVc {
		return nil, apierror.Newf(apierror.NotImplemented, "vc_model %s not implemented", vcConfig.VCModel)
	}

	now := time.Now().UTC()
	return map[string]any{
		"@context":          contextURI(vcConfig.W3CDataModelVer),
		"type":              []string{"VerifiableCredential", vcType.Name()},
		"id":                credentialID,
		"credentialSubject": subject,
		"issuer": map[string]any{
			"id":   issuerDID,
			"name": "RainbowAuthority",
		},
		"validFrom":  now.Format(time.RFC3339),
		"validUntil": now.AddDate(1, 0, 0).Format(time.RFC3339),
	}, nil
}

func contextURI(v model.W3CDataModelVersion) []string {
	if v == model.W3CDataModelV2 {
		return []string{"https://www.w3.org/ns/credentials/v2"}
	}
	return []string{"https://www.w3.org/2018/credentials/v1"}
}
