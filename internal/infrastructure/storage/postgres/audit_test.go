package postgres

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_CompressRoundTrip(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	small := AuditEntry{Changes: json.RawMessage(`{"amount":"15.00"}`)}
	out := svc.compress(small)
	assert.Equal(t, CompressionNone, out.CompressionAlgo)
	assert.Nil(t, out.ChangesCompressed)

	big, err := json.Marshal(map[string]string{"breakdown": strings.Repeat("2024-05-01 SALE 40.00;", 1000)})
	require.NoError(t, err)
	require.Greater(t, len(big), DefaultCompressThreshold)

	out = svc.compress(AuditEntry{Changes: big})
	assert.Equal(t, CompressionZstd, out.CompressionAlgo)
	assert.Nil(t, out.Changes)
	assert.Less(t, len(out.ChangesCompressed), len(big))

	back, err := svc.decompress(out)
	require.NoError(t, err)
	assert.JSONEq(t, string(big), string(back.Changes))
}
