package session

import (
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "sentra-auth/internal/pkg/errors"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	cipherKey := make([]byte, 32)
	macKey := make([]byte, 64)
	_, err := rand.Read(cipherKey)
	require.NoError(t, err)
	_, err = rand.Read(macKey)
	require.NoError(t, err)

	codec, err := NewCodec(cipherKey, macKey)
	require.NoError(t, err)
	return codec
}

func sampleState() *State {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	return &State{
		User: &UserState{
			ClientID: "01J9ZX3BC4D5E6F7G8H9J0K1M2",
			Role:     "user",
			Provider: ProviderInfo{ID: "prov-1", Kind: ProviderGoogle, Completed: false},
			TFA:      TFAStatus{Enabled: true, Authenticated: false},
		},
		Expires: &expires,
		MaxAge:  3600,
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	for name, state := range map[string]*State{
		"full":      sampleState(),
		"anonymous": {},
		"user only": {User: &UserState{ClientID: "c1", Role: "admin", Provider: ProviderInfo{Kind: ProviderLocal, Completed: true}}},
	} {
		t.Run(name, func(t *testing.T) {
			value, err := codec.Encrypt(state)
			require.NoError(t, err)

			got, err := codec.Decrypt(value)
			require.NoError(t, err)
			assert.Equal(t, state, got)
		})
	}
}

func TestCodecNonceFreshness(t *testing.T) {
	codec := newTestCodec(t)
	state := sampleState()

	a, err := codec.Encrypt(state)
	require.NoError(t, err)
	b, err := codec.Encrypt(state)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "every encryption must draw a fresh nonce")
}

func TestCodecRejectsEveryBitFlip(t *testing.T) {
	codec := newTestCodec(t)

	value, err := codec.Encrypt(sampleState())
	require.NoError(t, err)

	for i := 0; i < len(value); i++ {
		if value[i] == '.' {
			continue
		}
		mutated := []byte(value)
		mutated[i] ^= 0x01
		_, err := codec.Decrypt(string(mutated))
		require.Error(t, err, "flipped byte %d silently accepted", i)
	}
}

func TestCodecMalformedInput(t *testing.T) {
	codec := newTestCodec(t)

	for name, value := range map[string]string{
		"empty":          "",
		"no separator":   "YWJjZGVm",
		"two separators": "YWJj.ZGVm.Z2hp",
		"short envelope": "YQ==." + codec.sign("YQ=="),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decrypt(value)
			assert.ErrorIs(t, err, xerrors.ErrMalformedSession)
		})
	}
}

func TestCodecTamperedSignature(t *testing.T) {
	codec := newTestCodec(t)

	value, err := codec.Encrypt(sampleState())
	require.NoError(t, err)

	envelope := strings.SplitN(value, ".", 2)[0]
	_, err = codec.Decrypt(envelope + ".AAAA")
	assert.ErrorIs(t, err, xerrors.ErrTamperedSession)
}

func TestCodecsAreKeyIndependent(t *testing.T) {
	a := newTestCodec(t)
	b := newTestCodec(t)

	value, err := a.Encrypt(sampleState())
	require.NoError(t, err)

	_, err = b.Decrypt(value)
	assert.ErrorIs(t, err, xerrors.ErrTamperedSession)
}

func TestNewCodecKeyLengths(t *testing.T) {
	_, err := NewCodec(make([]byte, 16), make([]byte, 64))
	assert.Error(t, err)

	_, err = NewCodec(make([]byte, 32), make([]byte, 32))
	assert.Error(t, err)
}
