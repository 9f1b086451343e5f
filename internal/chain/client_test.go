package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolScope/internal/metrics"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

func newRPCServer(t *testing.T, results map[string]string, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		result, ok := results[req.Method]
		if !ok {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"error":{"code":-32601,"message":"method not found"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`))
	}))
}

func TestClientRecordsMetrics(t *testing.T) {
	var calls atomic.Int64
	server := newRPCServer(t, map[string]string{
		"eth_chainId":     `"0x1"`,
		"eth_blockNumber": `"0x10"`,
	}, &calls)
	defer server.Close()

	m := metrics.New("test", nil)
	client, err := NewClient(context.Background(), server.URL, WithMetrics(m), WithRateLimit(1000, 10))
	require.NoError(t, err)
	defer client.Close()

	id, err := client.GetChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Int64())

	latest, err := client.LatestBlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(16), latest)

	_, err = client.CallContract(context.Background(), ethereumCallMsg(), nil)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCCallErrors.WithLabelValues("eth_call")))
	assert.Equal(t, int64(3), calls.Load())
}

func TestWithRateLimitDisabled(t *testing.T) {
	c := &Client{}
	WithRateLimit(0, 5)(c)
	assert.Nil(t, c.limiter)
	WithRateLimit(2, 0)(c)
	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())
}

func TestRateLimitHonoursContext(t *testing.T) {
	c := &Client{}
	WithRateLimit(0.001, 1)(c)
	_, err := c.begin(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.begin(ctx)
	require.Error(t, err)
}

func ethereumCallMsg() ethereum.CallMsg {
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	return ethereum.CallMsg{To: &to, Data: []byte{0x95, 0xd8, 0x9b, 0x41}}
}
