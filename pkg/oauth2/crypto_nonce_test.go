package oauth2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCryptographicNonce(t *testing.T) {
	tts := []struct {
		name string
		n    int
		want int
	}{
		{name: "16 byte nonce", n: 16, want: 22},
		{name: "32 byte nonce", n: 32, want: 43},
	}
	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateCryptographicNonce(tt.n)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, len(got))
		})
	}
}

func TestGenerateCryptographicNonceUnique(t *testing.T) {
	a, err := GenerateCryptographicNonce(16)
	assert.NoError(t, err)
	b, err := GenerateCryptographicNonce(16)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}
