package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flecs-run/edge-core/internal/capability"
	"github.com/flecs-run/edge-core/internal/capability/captest"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/quest"
	"github.com/flecs-run/edge-core/internal/sorcerer"
	"github.com/flecs-run/edge-core/internal/vault"
	"github.com/flecs-run/edge-core/pkg/logger"
)

func newTestServer(t *testing.T) (*Server, *vault.Vault) {
	t.Helper()
	v := vault.New()
	key := model.AppKey{Name: "A", Version: "1"}
	g := v.Reservation().ReserveAppPouchMut().ReserveManifestPouchMut().ReserveDeploymentPouchMut().Grab()
	g.Apps.Set(key, &model.App{Key: key, Status: model.AppStatusInstalled})
	g.Manifests.Set(key, &model.Manifest{Key: key, MultiInstance: true})

	_, subnet, err := net.ParseCIDR("10.20.0.0/16")
	require.NoError(t, err)
	dep := captest.NewDeployment("dep0")
	dep.Network = model.Network{ID: "net0", Subnet: subnet, Gateway: net.ParseIP("10.20.0.1")}
	g.Deployments.Set(dep)
	g.Release()

	registry := quest.NewRegistry(context.Background())
	instancius := sorcerer.NewInstancius(v, dep, captest.NewFloxy(100), captest.NewUsbDeviceReader(map[string]capability.UsbDevice{}))
	jobs := sorcerer.NewJobs(registry)
	srv := NewServer(instancius, jobs, registry, logger.NewDefault("test"), nil)
	return srv, v
}

func TestCreateInstance_ReturnsJobThenBecomesQueryable(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	body := `{"app_name":"A","app_version":"1","name":"first"}`
	req := httptest.NewRequest(http.MethodPost, "/v2/instances/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var handle jobHandle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &handle))
	require.NotEmpty(t, handle.JobID)

	var job questView
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/v2/jobs/"+string(handle.JobID), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return false
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &job)
		return job.State == quest.Ok
	}, time.Second, time.Millisecond)

	req = httptest.NewRequest(http.MethodGet, "/v2/instances/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
}

func TestHandleGetInstance_UnknownReturnsNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/v2/instances/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
