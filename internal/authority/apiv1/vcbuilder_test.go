package apiv1

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"math/big"
	"testing"
	"time"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// selfSignedCertB64 builds a self-signed certificate whose subject carries
// the given organizationIdentifier (OID 2.5.4.97) value, base64-encoded the
// way VcRequest.Cert carries it on the wire.
func selfSignedCertB64(t *testing.T, orgID string) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			ExtraNames: []pkix.AttributeTypeAndValue{
				{Type: asn1.ObjectIdentifier{2, 5, 4, 97}, Value: orgID},
			},
		},
		NotBefore: time.Now(),
		NotAfter:  time.Now().Add(time.Hour),
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(der)
}

func TestExtractLegalRegistrationNumber(t *testing.T) {
	tests := []struct {
		name    string
		orgID   string
		subtype model.LegalRegistrationNumberSubtype
		want    string
		wantErr bool
	}{
		{"tax_id matched", "ES+TAX+B12345678", model.SubtypeTaxID, "TAX+B12345678", false},
		{"euid matched among several segments", "SE+EUID+SE5565001111+TAX+B12345678", model.SubtypeEUID, "EUID+SE5565001111", false},
		{"requested subtype absent", "ES+TAX+B12345678", model.SubtypeEORI, "", true},
		{"trailing segment with nothing after", "ES+TAX", model.SubtypeTaxID, "TAX", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certB64 := selfSignedCertB64(t, tt.orgID)
			got, err := extractLegalRegistrationNumber(certB64, tt.subtype)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, apierror.BadFormatReceived, apierror.KindOf(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractLegalRegistrationNumber_MissingOID(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "no-org-id"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	certB64 := base64.StdEncoding.EncodeToString(der)

	_, err = extractLegalRegistrationNumber(certB64, model.SubtypeTaxID)
	require.Error(t, err)
	assert.Equal(t, apierror.BadFormatReceived, apierror.KindOf(err))
}

func TestExtractLegalRegistrationNumber_NoCert(t *testing.T) {
	_, err := extractLegalRegistrationNumber("", model.SubtypeTaxID)
	require.Error(t, err)
	assert.Equal(t, apierror.BadFormatReceived, apierror.KindOf(err))
}

func TestEcoAuthorityBuilderDispatch(t *testing.T) {
	b := ecoAuthorityBuilder{
		legal:     legalAuthorityBuilder{},
		dataSpace: dataSpaceAuthorityBuilder{cfg: model.IssueConfig{DataspaceID: "urn:dataspace:test"}},
	}

	certB64 := selfSignedCertB64(t, "ES+TAX+B12345678")
	legalReq := &model.VcRequest{VcType: model.VcType{Kind: model.VcTypeKindLegalRegistrationNumber, Subtype: model.SubtypeTaxID}, Cert: certB64}
	gathered, err := b.GatherData(t.Context(), legalReq)
	require.NoError(t, err)
	assert.Contains(t, gathered, "TAX+B12345678")

	dsReq := &model.VcRequest{VcType: model.VcType{Kind: model.VcTypeKindDataspaceParticipant}}
	gathered, err = b.GatherData(t.Context(), dsReq)
	require.NoError(t, err)
	assert.Contains(t, gathered, "urn:dataspace:test")

	unknownReq := &model.VcRequest{VcType: model.VcType{Kind: "Unknown"}}
	_, err = b.GatherData(t.Context(), unknownReq)
	require.Error(t, err)
	assert.Equal(t, apierror.BadFormatUnknown, apierror.KindOf(err))
}
