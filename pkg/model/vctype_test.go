package model

import (
	"testing"

	"vcauthority/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVcTypeRoundTrip(t *testing.T) {
	variants := []VcType{
		{Kind: VcTypeKindDataspaceParticipant},
		{Kind: VcTypeKindLegalRegistrationNumber, Subtype: SubtypeTaxID},
		{Kind: VcTypeKindLegalRegistrationNumber, Subtype: SubtypeEUID},
		{Kind: VcTypeKindLegalRegistrationNumber, Subtype: SubtypeEORI},
		{Kind: VcTypeKindLegalRegistrationNumber, Subtype: SubtypeVATID},
		{Kind: VcTypeKindLegalRegistrationNumber, Subtype: SubtypeLEICode},
	}

	for _, vt := range variants {
		t.Run(vt.String(), func(t *testing.T) {
			got, err := ParseVcType(vt.String())
			require.NoError(t, err)
			assert.Equal(t, vt, got)
		})
	}
}

func TestParseVcType_Invalid(t *testing.T) {
	tests := []string{
		"",
		"Unknown",
		"LegalRegistrationNumber-",
		"LegalRegistrationNumber-bogus_subtype",
		"DataspaceParticipant-tax_id",
		"legalregistrationnumber-tax_id",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			_, err := ParseVcType(s)
			require.Error(t, err)
			assert.Equal(t, apierror.BadFormatReceived, apierror.KindOf(err))
		})
	}
}

func TestVcTypeJSONRoundTrip(t *testing.T) {
	vt := VcType{Kind: VcTypeKindLegalRegistrationNumber, Subtype: SubtypeEUID}

	data, err := vt.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"LegalRegistrationNumber-euid"`, string(data))

	var out VcType
	require.NoError(t, out.UnmarshalJSON(data))
	assert.Equal(t, vt, out)
}

func TestAuthorityRoleAllows(t *testing.T) {
	legalReg := VcType{Kind: VcTypeKindLegalRegistrationNumber, Subtype: SubtypeTaxID}
	dsParticipant := VcType{Kind: VcTypeKindDataspaceParticipant}

	tests := []struct {
		role        AuthorityRole
		vt          VcType
		wantAllowed bool
	}{
		{RoleLegalAuthority, legalReg, true},
		{RoleLegalAuthority, dsParticipant, false},
		{RoleDataSpaceAuthority, dsParticipant, true},
		{RoleDataSpaceAuthority, legalReg, false},
		{RoleEcoAuthority, legalReg, true},
		{RoleEcoAuthority, dsParticipant, true},
		{RoleClearingHouse, legalReg, false},
		{RoleClearingHouse, dsParticipant, false},
		{RoleClearingHouseProxy, legalReg, false},
		{RoleClearingHouseProxy, dsParticipant, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.vt.String(), func(t *testing.T) {
			assert.Equal(t, tt.wantAllowed, tt.role.Allows(tt.vt))
		})
	}
}

func TestLegalRegistrationNumberSubtypeMappings(t *testing.T) {
	tests := []struct {
		subtype      LegalRegistrationNumberSubtype
		oidPrefix    string
		gxType       string
		subjectField string
	}{
		{SubtypeTaxID, "TAX", "gx:taxID", "taxID"},
		{SubtypeEUID, "EUID", "gx:EUID", "EUID"},
		{SubtypeEORI, "EORI", "gx:EORI", "EORI"},
		{SubtypeVATID, "VAT", "gx:vatID", "vatID"},
		{SubtypeLEICode, "LEI", "gx:leiCode", "leiCode"},
	}
	for _, tt := range tests {
		t.Run(string(tt.subtype), func(t *testing.T) {
			assert.Equal(t, tt.oidPrefix, tt.subtype.OIDPrefix())
			assert.Equal(t, tt.gxType, tt.subtype.GxType())
			assert.Equal(t, tt.subjectField, tt.subtype.SubjectField())
		})
	}
}
