package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

func newDb() context.Context {
	config.TestInit()
	db.Init()
	ctx := log.Logger.WithContext(context.Background())
	ctx, err := db.ConnCtx(ctx)
	if err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("unable to get db connection")
	}
	return ctx
}

type testSetup struct {
	ctx           context.Context
	tenantID      trustcommon.TenantId
	operatorToken string
}

func setupTest(t *testing.T) *testSetup {
	ctx := newDb()
	t.Cleanup(func() {
		db.DB(ctx).Close(ctx)
	})

	tenantID := trustcommon.TenantId(config.Config().DefaultTenantID)
	ctx = trustcommon.WithTenantID(ctx, tenantID)

	return &testSetup{
		ctx:           ctx,
		tenantID:      tenantID,
		operatorToken: config.Config().Auth.TestOperatorToken,
	}
}

func executeTestRequest(t *testing.T, req *http.Request, token string) *httptest.ResponseRecorder {
	s, err := CreateNewServer()
	require.NoError(t, err, "create new server")
	s.MountHandlers()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func setRequestBodyAndHeader(t *testing.T, req *http.Request, data any) {
	var jsonData []byte
	if s, ok := data.(string); ok && json.Valid([]byte(s)) {
		jsonData = []byte(s)
	} else {
		var err error
		jsonData, err = json.Marshal(data)
		require.NoError(t, err, "marshal request body")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Body = io.NopCloser(bytes.NewReader(jsonData))
	req.ContentLength = int64(len(jsonData))
}
