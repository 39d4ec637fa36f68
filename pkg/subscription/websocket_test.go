package subscription

import (
	"encoding/base64"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAccountDataBase64(t *testing.T) {
	payload := []byte("account bytes")
	encoded := base64.StdEncoding.EncodeToString(payload)

	data, err := decodeAccountData([]interface{}{encoded, "base64"})
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	// Missing encoding tag defaults to base64.
	data, err = decodeAccountData([]interface{}{encoded})
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestDecodeAccountDataBase58(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	encoded := base58.Encode(payload)

	data, err := decodeAccountData([]interface{}{encoded, "base58"})
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestDecodeAccountDataErrors(t *testing.T) {
	_, err := decodeAccountData(nil)
	assert.Error(t, err)

	_, err = decodeAccountData([]interface{}{42})
	assert.Error(t, err)

	_, err = decodeAccountData([]interface{}{"AAAA", "jsonParsed"})
	assert.Error(t, err)

	_, err = decodeAccountData([]interface{}{"not base64!!", "base64"})
	assert.Error(t, err)
}
