package dapp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/w3dapp/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*appFixture, *httptest.Server) {
	t.Helper()
	fx := newAppFixture(t)
	srv := httptest.NewServer(NewServer("", fx.app).Handler())
	t.Cleanup(srv.Close)
	return fx, srv
}

func TestHomeHasEveryElement(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	for _, id := range []string{
		IDConnectButton, IDNetwork, IDChainID, IDAccounts, IDDisconnect, IDRecipientInput,
		IDAmountInput, IDTransferButton, IDBalance, IDGetBalance, IDTransactionStatus,
	} {
		assert.Contains(t, string(body), `id="`+id+`"`)
	}
}

func TestHomeEscapesInput(t *testing.T) {
	fx, srv := newTestServer(t)
	require.NoError(t, fx.app.Fill(IDRecipientInput, `"><script>alert(1)</script>`))

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "<script>alert(1)</script>")
}

func TestFillAndStateJSON(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/fill/amountInput", "application/json", strings.NewReader(`{"value":"2"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	var s State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.Equal(t, "2", s.Amount)
}

func TestFillBadBody(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/fill/amountInput", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownElementIs404(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/click/nope", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var e ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "unknown_element", e.Code)
}

func TestClickIsAsynchronous(t *testing.T) {
	fx, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/click/getBalance", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	fx.app.Wait()
	assert.Equal(t, "20.0", fx.app.State().Balance)
}

func TestFormPostFillsAndRedirects(t *testing.T) {
	fx, srv := newTestServer(t)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	form := url.Values{
		IDRecipientInput: {"0x87028e52304A3d58D6d48DC5a864815Ab70fB6F5"},
		IDAmountInput:    {"2"},
	}
	resp, err := client.PostForm(srv.URL+"/click/transferButton", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	fx.app.Wait()
	s := fx.app.State()
	assert.Equal(t, "2", s.Amount)
	assert.Equal(t, "Transaction confirmed", s.TransferStatus)
}

func TestMetricsEndpoint(t *testing.T) {
	fx, srv := newTestServer(t)
	fx.app.Metrics().Observe(transfer.Result{Outcome: transfer.OutcomeRejected})
	fx.app.Metrics().Observe(transfer.Result{Outcome: transfer.OutcomeNone})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(body), `w3dapp_transfers_total{outcome="rejected"} 1`)
	assert.NotContains(t, string(body), `outcome="none"`)
	assert.Contains(t, string(body), "w3dapp_transfer_settlement_seconds_count 1")
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWrongMethod(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/click/getBalance")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
