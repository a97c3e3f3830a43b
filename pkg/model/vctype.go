package model

import (
	"encoding/json"

	"vcauthority/pkg/apierror"
)

// LegalRegistrationNumberSubtype is the `gx:LegalRegistrationNumber` variant
// requested by a minion, matching one `+`-delimited segment of X.509 subject
// OID 2.5.4.97 (organizationIdentifier).
type LegalRegistrationNumberSubtype string

const (
	SubtypeTaxID   LegalRegistrationNumberSubtype = "tax_id"
	SubtypeEUID    LegalRegistrationNumberSubtype = "euid"
	SubtypeEORI    LegalRegistrationNumberSubtype = "eori"
	SubtypeVATID   LegalRegistrationNumberSubtype = "vat_id"
	SubtypeLEICode LegalRegistrationNumberSubtype = "lei_code"
)

// OIDPrefix is the segment prefix this subtype matches in an
// organizationIdentifier value such as "ES+TAX+B12345678".
func (s LegalRegistrationNumberSubtype) OIDPrefix() string {
	switch s {
	case SubtypeTaxID:
		return "TAX"
	case SubtypeEUID:
		return "EUID"
	case SubtypeEORI:
		return "EORI"
	case SubtypeVATID:
		return "VAT"
	case SubtypeLEICode:
		return "LEI"
	default:
		return ""
	}
}

// GxType is the `gx:` credential subject `type` value for this subtype.
func (s LegalRegistrationNumberSubtype) GxType() string {
	switch s {
	case SubtypeTaxID:
		return "gx:taxID"
	case SubtypeEUID:
		return "gx:EUID"
	case SubtypeEORI:
		return "gx:EORI"
	case SubtypeVATID:
		return "gx:vatID"
	case SubtypeLEICode:
		return "gx:leiCode"
	default:
		return ""
	}
}

// SubjectField is the JSON field on the credential subject this subtype's
// matched code is assigned to.
func (s LegalRegistrationNumberSubtype) SubjectField() string {
	switch s {
	case SubtypeTaxID:
		return "taxID"
	case SubtypeEUID:
		return "EUID"
	case SubtypeEORI:
		return "EORI"
	case SubtypeVATID:
		return "vatID"
	case SubtypeLEICode:
		return "leiCode"
	default:
		return ""
	}
}

// VcTypeKind is the outer tag of VcType.
type VcTypeKind string

const (
	VcTypeKindLegalRegistrationNumber VcTypeKind = "LegalRegistrationNumber"
	VcTypeKindDataspaceParticipant    VcTypeKind = "DataspaceParticipant"
)

// VcType is the tagged credential type a minion requests, either
// LegalRegistrationNumber(subtype) or DataspaceParticipant. There is no
// Unknown variant: an unparseable string is rejected rather than
// represented.
type VcType struct {
	Kind    VcTypeKind
	Subtype LegalRegistrationNumberSubtype // only meaningful when Kind == LegalRegistrationNumber
}

// ParseVcType parses the wire representation used throughout this codebase,
// e.g. "LegalRegistrationNumber-tax_id" or "DataspaceParticipant". Any other
// string, including an "Unknown" sentinel, fails.
func ParseVcType(s string) (VcType, error) {
	if s == "DataspaceParticipant" {
		return VcType{Kind: VcTypeKindDataspaceParticipant}, nil
	}

	const prefix = "LegalRegistrationNumber-"
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		sub := LegalRegistrationNumberSubtype(s[len(prefix):])
		switch sub {
		case SubtypeTaxID, SubtypeEUID, SubtypeEORI, SubtypeVATID, SubtypeLEICode:
			return VcType{Kind: VcTypeKindLegalRegistrationNumber, Subtype: sub}, nil
		}
	}

	return VcType{}, apierror.Newf(apierror.BadFormatReceived, "unrecognized vc_type %q", s)
}

// String renders the wire representation; round-trips through ParseVcType.
func (v VcType) String() string {
	if v.Kind == VcTypeKindLegalRegistrationNumber {
		return "LegalRegistrationNumber-" + string(v.Subtype)
	}
	return string(v.Kind)
}

// Name is the credential `type` array entry and VCCredOffer configuration id
// stem, e.g. "LegalRegistrationNumber".
func (v VcType) Name() string {
	return string(v.Kind)
}

// MarshalJSON renders VcType as its wire string.
func (v VcType) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON parses VcType from its wire string.
func (v *VcType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseVcType(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// AuthorityRole selects which credential types this deployment may issue and
// which VcBuilder sub-component handles `gather_data`/`build_vc`.
type AuthorityRole string

const (
	RoleLegalAuthority     AuthorityRole = "LegalAuthority"
	RoleClearingHouse      AuthorityRole = "ClearingHouse"
	RoleClearingHouseProxy AuthorityRole = "ClearingHouseProxy"
	RoleDataSpaceAuthority AuthorityRole = "DataSpaceAuthority"
	RoleEcoAuthority       AuthorityRole = "EcoAuthority"
)

// Allows reports whether this role is permitted to issue the given VcType.
// ClearingHouse and ClearingHouseProxy are reserved and rejected rather than
// silently passed through.
func (r AuthorityRole) Allows(vt VcType) bool {
	switch r {
	case RoleLegalAuthority:
		return vt.Kind == VcTypeKindLegalRegistrationNumber
	case RoleDataSpaceAuthority:
		return vt.Kind == VcTypeKindDataspaceParticipant
	case RoleEcoAuthority:
		return true
	default:
		return false
	}
}
