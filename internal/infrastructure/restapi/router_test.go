package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dusthunter/internal/domain/entity"
	"dusthunter/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAddress = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

type fakeAnalysis struct {
	err error
}

func (f *fakeAnalysis) Analyze(_ context.Context, address string, chain entity.Chain) (*entity.WalletAnalysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := chain.ValidateAddress(address); err != nil {
		return nil, err
	}
	return &entity.WalletAnalysis{Address: address, SafetyScore: 77, ThreatLevel: entity.ThreatLow}, nil
}

type fakePrices struct {
	got []entity.TokenRef
}

func (f *fakePrices) RefreshPrices(_ context.Context, tokens []entity.TokenRef) map[string]entity.LivePriceEntry {
	f.got = tokens
	return map[string]entity.LivePriceEntry{"ETH": {Symbol: "ETH", Price: 3000, Change24h: 1.5}}
}

type fakeSessions struct {
	holdings map[string][]entity.Holding
}

func (f *fakeSessions) Open(holdings []entity.Holding) (string, error) {
	if len(holdings) == 0 {
		return "", service.ErrNoHoldingsToTrack
	}
	f.holdings["s1"] = holdings
	return "s1", nil
}

func (f *fakeSessions) Replace(id string, holdings []entity.Holding) error {
	if _, ok := f.holdings[id]; !ok {
		return service.ErrSessionNotFound
	}
	f.holdings[id] = holdings
	return nil
}

func (f *fakeSessions) Get(id string) (entity.HoldingsView, error) {
	h, ok := f.holdings[id]
	if !ok {
		return entity.HoldingsView{}, service.ErrSessionNotFound
	}
	return entity.HoldingsView{Holdings: h, TotalValueUSD: 42}, nil
}

func (f *fakeSessions) Close(id string) error {
	if _, ok := f.holdings[id]; !ok {
		return service.ErrSessionNotFound
	}
	delete(f.holdings, id)
	return nil
}

type fakeWatchlist struct {
	wallets      []entity.MonitoredWallet
	reanalyzeErr error
}

func (f *fakeWatchlist) Save(analysis entity.WalletAnalysis, chain entity.Chain) (entity.MonitoredWallet, bool, error) {
	for _, w := range f.wallets {
		if w.Address == analysis.Address {
			return w, false, nil
		}
	}
	w := entity.MonitoredWallet{Address: analysis.Address, Chain: chain, LastAnalysis: analysis, IsActive: true, AddedAt: 1}
	f.wallets = append(f.wallets, w)
	return w, true, nil
}

func (f *fakeWatchlist) Remove(address string) error {
	for i, w := range f.wallets {
		if w.Address == address {
			f.wallets = append(f.wallets[:i], f.wallets[i+1:]...)
			return nil
		}
	}
	return service.ErrWalletNotFound
}

func (f *fakeWatchlist) List() []entity.MonitoredWallet {
	return f.wallets
}

func (f *fakeWatchlist) Reanalyze(_ context.Context, address string) (*entity.WalletAnalysis, error) {
	if f.reanalyzeErr != nil {
		return nil, f.reanalyzeErr
	}
	for _, w := range f.wallets {
		if w.Address == address {
			return &entity.WalletAnalysis{Address: address, SafetyScore: 10}, nil
		}
	}
	return nil, service.ErrWalletNotFound
}

type testAPI struct {
	router    *gin.Engine
	analysis  *fakeAnalysis
	prices    *fakePrices
	sessions  *fakeSessions
	watchlist *fakeWatchlist
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api := &testAPI{
		analysis:  &fakeAnalysis{},
		prices:    &fakePrices{},
		sessions:  &fakeSessions{holdings: map[string][]entity.Holding{}},
		watchlist: &fakeWatchlist{},
	}
	api.router = SetupRouter(Handlers{
		Analysis:  NewAnalysisHandler(api.analysis, zap.NewNop()),
		Holdings:  NewHoldingsHandler(api.sessions, api.prices),
		Watchlist: NewWatchlistHandler(api.watchlist),
	}, RouterOptions{}, zap.NewNop())
	return api
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnalyzeEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/analysis", `{"address":"`+testAddress+`","chain":"ethereum"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var got entity.WalletAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, testAddress, got.Address)
	assert.Equal(t, 77, got.SafetyScore)

	w = api.do(http.MethodPost, "/api/v1/analysis", `{"address":"`+testAddress+`","chain":"Dogecoin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/v1/analysis", `{"chain":"Ethereum"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/v1/analysis", `{"address":"0x123","chain":"Ethereum"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpointUplinkFailure(t *testing.T) {
	api := newTestAPI(t)
	api.analysis.err = service.ErrUplinkFailed

	w := api.do(http.MethodPost, "/api/v1/analysis", `{"address":"`+testAddress+`","chain":"Ethereum"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Surveillance uplink failed.", decodeError(t, w))
}

func TestPricesEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/v1/prices?symbols=ETH,%20sol,,", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prices":{"ETH":{"symbol":"ETH","price":3000,"change24h":1.5}}}`, w.Body.String())
	assert.Equal(t, []entity.TokenRef{{Symbol: "ETH"}, {Symbol: "sol"}}, api.prices.got)

	w = api.do(http.MethodGet, "/api/v1/prices", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHoldingsSessionEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/holdings/sessions",
		`{"holdings":[{"name":"Ether","symbol":"ETH","balance":"1,234.56 ETH","usdValue":10,"category":"NATIVE","riskScore":90}]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"s1"}`, w.Body.String())
	assert.Equal(t, "1,234.56 ETH", api.sessions.holdings["s1"][0].Balance.Display)

	w = api.do(http.MethodGet, "/api/v1/holdings/sessions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view entity.HoldingsView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 42.0, view.TotalValueUSD)
	require.Len(t, view.Holdings, 1)

	w = api.do(http.MethodPut, "/api/v1/holdings/sessions/s1", `{"holdings":[{"symbol":"SOL","balance":"2"}]}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "SOL", api.sessions.holdings["s1"][0].Symbol)

	w = api.do(http.MethodDelete, "/api/v1/holdings/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/v1/holdings/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/api/v1/holdings/sessions", `{"holdings":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/v1/holdings/sessions", `{"holdings":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWatchlistEndpoints(t *testing.T) {
	api := newTestAPI(t)
	body := `{"chain":"Polygon","analysis":{"address":"` + testAddress + `","safetyScore":55,"threatLevel":"MEDIUM"}}`

	w := api.do(http.MethodPost, "/api/v1/watchlist", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var saved entity.MonitoredWallet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, entity.ChainPolygon, saved.Chain)
	assert.Equal(t, 55, saved.LastAnalysis.SafetyScore)

	w = api.do(http.MethodPost, "/api/v1/watchlist", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/v1/watchlist", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []entity.MonitoredWallet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = api.do(http.MethodPost, "/api/v1/watchlist/"+testAddress+"/reanalyze", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodDelete, "/api/v1/watchlist/"+testAddress, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodDelete, "/api/v1/watchlist/"+testAddress, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/api/v1/watchlist/"+testAddress+"/reanalyze", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/api/v1/watchlist", `{"chain":"Tron","analysis":{"address":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReanalyzeUplinkFailure(t *testing.T) {
	api := newTestAPI(t)
	api.watchlist.reanalyzeErr = service.ErrUplinkFailed

	w := api.do(http.MethodPost, "/api/v1/watchlist/"+testAddress+"/reanalyze", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Surveillance uplink failed.", decodeError(t, w))
}
