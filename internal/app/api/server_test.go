// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/lockup/configuration"
	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
	"github.com/insolar/lockup/internal/app/lockup/stakingpool"
	"github.com/insolar/lockup/internal/app/lockup/store"
	"github.com/insolar/lockup/internal/events"
	"github.com/insolar/lockup/observability"
)

const (
	lockupID     = "lockup.owner.near"
	ownerID      = "owner.near"
	foundationID = "foundation.near"
	deployerID   = "deployer.near"
	whitelistID  = "whitelist.near"
	poolID       = "pool.near"
)

type journal struct {
	list []events.Event
}

func (j *journal) Publish(_ context.Context, e events.Event) error {
	j.list = append(j.list, e)
	return nil
}

func (j *journal) Events(_ context.Context, account lockup.AccountID, limit int) ([]events.Event, error) {
	var res []events.Event
	for _, e := range j.list {
		if e.AccountID == account && len(res) < limit {
			res = append(res, e)
		}
	}
	return res, nil
}

type testServer struct {
	e       *echo.Echo
	clock   *runtime.ManualClock
	ledger  *runtime.MemoryLedger
	journal *journal
}

func newTestServer(t *testing.T, withJournal bool) *testServer {
	cfg := configuration.Default()
	cfg.Log.Level = "error"
	obs := observability.Make(cfg)
	ledger := runtime.NewMemoryLedger()
	clock := runtime.NewManualClock(0)
	require.NoError(t, ledger.Fund(context.Background(), deployerID, lockup.NewBalance(1000000)))

	j := &journal{}
	host := runtime.NewHost(obs, store.NewMemoryAccountStore(), ledger, clock, lockup.NewBalance(35), j)
	host.RegisterWhitelist(whitelistID, runtime.NewMemoryWhitelist(poolID))
	host.RegisterStakingPool(poolID, stakingpool.New(poolID, 10, ledger, clock, obs.Log()))

	var read Journal
	if withJournal {
		read = j
	}
	e := NewEcho(obs)
	RegisterHandlers(e, NewLockupServer(host, read, obs.Log()))
	return &testServer{e: e, clock: clock, ledger: ledger, journal: j}
}

func (s *testServer) do(t *testing.T, method, path, predecessor, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if predecessor != "" {
		req.Header.Set(PredecessorHeader, predecessor)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) invoke(t *testing.T, predecessor, method, body string) *httptest.ResponseRecorder {
	return s.do(t, http.MethodPost, "/api/accounts/"+lockupID+"/methods/"+method, predecessor, body)
}

func (s *testServer) process(t *testing.T) ReceiptsResponse {
	rec := s.do(t, http.MethodPost, "/api/receipts/process", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res ReceiptsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func (s *testServer) view(t *testing.T) lockup.View {
	rec := s.do(t, http.MethodGet, "/api/accounts/"+lockupID, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v lockup.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	require.Equal(t, status, rec.Code, rec.Body.String())
	var msg ErrorMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Len(t, msg.Error, 1)
	assert.Contains(t, msg.Error[0], message)
}

const deployBody = `{
	"funder": "deployer.near",
	"deposit": "1035",
	"owner_account_id": "owner.near",
	"lockup_amount": "1000",
	"lockup_duration": 100,
	"transfers_enabled_at": 0,
	"vesting_schedule": {"StartTimestamp": 0, "CliffTimestamp": 100, "EndTimestamp": 1000},
	"staking_pool_whitelist_account_id": "whitelist.near",
	"foundation_account_id": "foundation.near"
}`

func TestLockupServer_Deploy(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/api/accounts/"+lockupID, "", deployBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	v := s.view(t)
	assert.Equal(t, lockup.AccountID(ownerID), v.OwnerAccountID)
	assert.Equal(t, lockup.NewBalance(1035), v.Balance)
	assert.Equal(t, lockup.VestingKindSchedule, v.VestingKind)

	requireError(t, s.do(t, http.MethodPost, "/api/accounts/"+lockupID, "", deployBody),
		http.StatusConflict, "account already exists")
	requireError(t, s.do(t, http.MethodPost, "/api/accounts/Bad!", "", deployBody),
		http.StatusBadRequest, "is invalid")
	requireError(t, s.do(t, http.MethodPost, "/api/accounts/other.near", "", `{"unknown": 1}`),
		http.StatusBadRequest, "invalid arguments")

	// The deposit is returned when the initialization is rejected.
	before, err := s.ledger.Balance(context.Background(), deployerID)
	require.NoError(t, err)
	noFoundation := strings.Replace(deployBody, `"foundation_account_id": "foundation.near"`, `"vesting_ramp": "FromCliff"`, 1)
	requireError(t, s.do(t, http.MethodPost, "/api/accounts/other.near", "", noFoundation),
		http.StatusBadRequest, "Vesting is only supported with a foundation account")
	after, err := s.ledger.Balance(context.Background(), deployerID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLockupServer_NotFound(t *testing.T) {
	s := newTestServer(t, false)
	requireError(t, s.do(t, http.MethodGet, "/api/accounts/missing.near", "", ""), http.StatusNotFound, "account not found")
	requireError(t, s.invoke(t, ownerID, "unstake_all", ""), http.StatusNotFound, "account not found")
}

func TestLockupServer_Staking(t *testing.T) {
	s := newTestServer(t, false)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/accounts/"+lockupID, "", deployBody).Code)

	requireError(t, s.invoke(t, "", "select_staking_pool", `{"staking_pool_account_id": "pool.near"}`),
		http.StatusUnauthorized, PredecessorHeader)
	requireError(t, s.invoke(t, ownerID, "launch_rockets", ""), http.StatusNotFound, "unknown method")
	requireError(t, s.invoke(t, foundationID, "select_staking_pool", `{"staking_pool_account_id": "pool.near"}`),
		http.StatusBadRequest, "Can only be called by the owner")

	rec := s.invoke(t, ownerID, "select_staking_pool", `{"staking_pool_account_id": "pool.near"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res runtime.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Promise)
	assert.Equal(t, lockup.CallIsWhitelisted, res.Promise.Call.Kind)

	// The pool is selected only once the whitelist answers.
	requireError(t, s.invoke(t, ownerID, "deposit_and_stake", `{"amount": "500"}`),
		http.StatusBadRequest, "Staking pool is not selected")

	assert.Equal(t, ReceiptsResponse{Processed: 1, Pending: 0}, s.process(t))

	requireError(t, s.invoke(t, ownerID, "deposit_and_stake", `{}`), http.StatusBadRequest, "amount is required")
	rec = s.invoke(t, ownerID, "deposit_and_stake", `{"amount": "500"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	requireError(t, s.invoke(t, ownerID, "unstake", `{"amount": "100"}`),
		http.StatusConflict, "Contract is currently busy")
	rec = s.do(t, http.MethodGet, "/api/receipts", "", "")
	assert.JSONEq(t, `{"processed": 0, "pending": 1}`, rec.Body.String())
	s.process(t)

	v := s.view(t)
	require.NotNil(t, v.StakingPoolAccountID)
	assert.Equal(t, lockup.AccountID(poolID), *v.StakingPoolAccountID)
	assert.Equal(t, lockup.NewBalance(500), v.KnownDepositedBalance)
	assert.Equal(t, lockup.NewBalance(1035), v.Balance)

	liquid, err := s.ledger.Balance(context.Background(), lockupID)
	require.NoError(t, err)
	assert.Equal(t, lockup.NewBalance(535), liquid)
}

func TestLockupServer_UnvestedBalance(t *testing.T) {
	s := newTestServer(t, false)
	salt := []byte("salt")
	hash, err := lockup.VestingScheduleWithSalt{
		VestingSchedule: lockup.VestingSchedule{StartTimestamp: 0, CliffTimestamp: 100, EndTimestamp: 1000},
		Salt:            salt,
	}.Hash()
	require.NoError(t, err)

	body := strings.Replace(deployBody,
		`"vesting_schedule": {"StartTimestamp": 0, "CliffTimestamp": 100, "EndTimestamp": 1000}`,
		`"vesting_hash": "`+base58.Encode(hash)+`"`, 1)
	rec := s.do(t, http.MethodPost, "/api/accounts/"+lockupID, "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	path := "/api/accounts/" + lockupID + "/unvested"
	requireError(t, s.do(t, http.MethodGet, path, "", ""), http.StatusBadRequest, "Vesting schedule is required to be disclosed")
	requireError(t, s.do(t, http.MethodGet, path+"?start=0&cliff=100", "", ""), http.StatusBadRequest, "disclosure needs")

	rec = s.do(t, http.MethodGet, path+"?start=0&cliff=100&end=1000&salt="+base58.Encode(salt), "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, lockup.NewBalance(1000), res.Balance)

	requireError(t, s.do(t, http.MethodGet, path+"?start=0&cliff=100&end=1000&salt="+base58.Encode([]byte("pepper")), "", ""),
		http.StatusBadRequest, "doesn't match the vesting hash")
}

func TestLockupServer_TerminateVesting(t *testing.T) {
	s := newTestServer(t, false)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/accounts/"+lockupID, "", deployBody).Code)

	requireError(t, s.invoke(t, ownerID, "terminate_vesting", ""), http.StatusBadRequest, "Can only be called by NEAR Foundation")
	rec := s.invoke(t, foundationID, "terminate_vesting", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	v := s.view(t)
	require.NotNil(t, v.TerminationStatus)
	assert.Equal(t, lockup.TerminationReadyToWithdraw, *v.TerminationStatus)

	rec = s.invoke(t, foundationID, "termination_withdraw", `{"receiver_id": "foundation.near"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s.process(t)

	got, err := s.ledger.Balance(context.Background(), foundationID)
	require.NoError(t, err)
	assert.Equal(t, lockup.NewBalance(1000), got)
	v = s.view(t)
	require.NotNil(t, v.TerminationStatus)
	assert.Equal(t, lockup.TerminationCompleted, *v.TerminationStatus)
}

func TestLockupServer_Events(t *testing.T) {
	s := newTestServer(t, false)
	requireError(t, s.do(t, http.MethodGet, "/api/accounts/"+lockupID+"/events", "", ""), http.StatusNotImplemented, "disabled")

	s = newTestServer(t, true)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/accounts/"+lockupID, "", deployBody).Code)
	requireError(t, s.invoke(t, foundationID, "unstake_all", ""), http.StatusBadRequest, "")

	requireError(t, s.do(t, http.MethodGet, "/api/accounts/"+lockupID+"/events?limit=0", "", ""), http.StatusBadRequest, "limit")
	rec := s.do(t, http.MethodGet, "/api/accounts/"+lockupID+"/events?limit=10", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list []events.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, events.Invoked, list[0].Kind)
	assert.Equal(t, events.Rejected, list[1].Kind)
	assert.Equal(t, "unstake_all", list[1].Method)
}

func TestMethodNames(t *testing.T) {
	names := MethodNames()
	assert.Len(t, names, len(methods))
	assert.Contains(t, names, "termination_prepare_to_withdraw")
	assert.Equal(t, "add_full_access_key", names[0])
}

func TestLockupServer_AddFullAccessKey(t *testing.T) {
	s := newTestServer(t, false)
	body := strings.Replace(deployBody, `"vesting_schedule": {"StartTimestamp": 0, "CliffTimestamp": 100, "EndTimestamp": 1000},`,
		`"release_duration": 400,`, 1)
	body = strings.Replace(body, `,
	"foundation_account_id": "foundation.near"`, "", 1)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/accounts/"+lockupID, "", body).Code)

	key := base58.Encode(make([]byte, lockup.FullAccessKeySize))
	args := `{"new_public_key": "` + key + `"}`

	s.clock.Set(300)
	v := s.view(t)
	assert.Equal(t, lockup.NewBalance(250), v.UnreleasedAmount)
	assert.Equal(t, lockup.NewBalance(250), v.LockedAmount)
	requireError(t, s.invoke(t, ownerID, "add_full_access_key", args), http.StatusBadRequest, "Tokens are still locked/unvested")
	requireError(t, s.invoke(t, ownerID, "add_full_access_key", `{"new_public_key": "0OIl"}`),
		http.StatusBadRequest, "new_public_key should be base58")

	s.clock.Set(400)
	require.Equal(t, http.StatusOK, s.invoke(t, ownerID, "add_full_access_key", args).Code)
	v = s.view(t)
	assert.True(t, v.Retired)
	assert.True(t, v.LockedAmount.IsZero())
	requireError(t, s.invoke(t, ownerID, "add_full_access_key", args), http.StatusBadRequest, "The lockup is already retired")
}
