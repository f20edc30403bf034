package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	coreerrors "github.com/flecs-run/edge-core/internal/errors"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/orchestrator"
	"github.com/flecs-run/edge-core/internal/quest"
)

type createInstanceRequest struct {
	AppName    string `json:"app_name"`
	AppVersion string `json:"app_version"`
	Name       string `json:"name"`
}

type jobHandle struct {
	JobID quest.JobID `json:"job_id"`
}

// handleCreateInstance opens a root quest and returns its id immediately;
// the instance itself is created asynchronously. Poll GET /v2/jobs/{id}
// or the websocket endpoint for completion.
func (s *Server) handleCreateInstance(w http.ResponseWriter, r *http.Request) {
	var req createInstanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, coreerrors.New(coreerrors.CodeInternal, "invalid request body", http.StatusBadRequest))
		return
	}
	appKey := model.AppKey{Name: req.AppName, Version: req.AppVersion}

	q := s.quests.NewRoot("create instance "+req.Name, func(ctx context.Context, sub *quest.Quest) error {
		_, err := s.instancius.CreateInstance(ctx, sub, appKey, req.Name)
		return err
	})
	writeJSON(w, http.StatusAccepted, jobHandle{JobID: q.ID()})
}

func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	var appName, appVersion *string
	if v := r.URL.Query().Get("app_name"); v != "" {
		appName = &v
	}
	if v := r.URL.Query().Get("app_version"); v != "" {
		appVersion = &v
	}

	var (
		infos []orchestrator.InstanceInfo
		err   error
	)
	if appName == nil && appVersion == nil {
		infos, err = s.instancius.GetAllInstances(r.Context())
	} else {
		infos, err = s.instancius.GetInstancesFiltered(r.Context(), appName, appVersion)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGetInstance(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	detail, err := s.instancius.GetInstanceDetailed(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteInstance(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	if err := s.instancius.DeleteInstance(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartInstance(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	if err := s.instancius.StartInstance(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStopInstance(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	if err := s.instancius.StopInstance(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInstanceLogs(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	logs, err := s.instancius.GetInstanceLogs(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleGetEnvironment(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	writeLookup(w, s.instancius.GetEnvironment(id))
}

func (s *Server) handleGetEnvironmentVariable(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	name := chi.URLParam(r, "name")
	writeLookup(w, s.instancius.GetEnvironmentVariable(id, name))
}

func (s *Server) handlePutEnvironmentVariable(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	name := chi.URLParam(r, "name")
	var body struct {
		Value *string `json:"value"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, coreerrors.New(coreerrors.CodeInternal, "invalid request body", http.StatusBadRequest))
		return
	}
	writeLookup(w, s.instancius.PutEnvironmentVariable(id, name, body.Value))
}

func (s *Server) handleDeleteEnvironmentVariable(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	name := chi.URLParam(r, "name")
	writeLookup(w, s.instancius.DeleteEnvironmentVariable(id, name))
}

// handleRedirectEditorRequest implements the editor proxy handoff: the
// caller supplies the in-instance container port it wants to reach and
// receives the host port to redirect the browser to.
func (s *Server) handleRedirectEditorRequest(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	portStr := r.URL.Query().Get("container_port")
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		writeError(w, coreerrors.New(coreerrors.CodeInternal, "container_port must be a uint16", http.StatusBadRequest))
		return
	}

	result, hostPort, err := s.instancius.RedirectEditorRequest(r.Context(), id, uint16(port))
	if err != nil {
		writeError(w, err)
		return
	}
	switch result {
	case orchestrator.EditorInstanceNotFound:
		writeError(w, coreerrors.InstanceNotFound(string(id)))
	case orchestrator.EditorUnknownPort:
		writeError(w, coreerrors.New(coreerrors.CodePortNotFound, "unknown editor port", http.StatusNotFound))
	case orchestrator.EditorInstanceNotRunning:
		writeError(w, coreerrors.InstanceNotRunning(string(id)))
	case orchestrator.EditorInstanceNotConnectedToNetwork:
		writeError(w, coreerrors.InstanceNotConnected(string(id)))
	default:
		writeJSON(w, http.StatusOK, map[string]any{"result": result.String(), "host_port": hostPort})
	}
}

func (s *Server) handleGetPortMappings(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	writeLookup(w, s.instancius.GetPortMappings(id))
}

func (s *Server) handleGetProtocolPortMappings(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	proto := model.TransportProtocol(chi.URLParam(r, "protocol"))
	writeLookup(w, s.instancius.GetProtocolPortMappings(id, proto))
}

func (s *Server) handleGetPortMapping(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	proto := model.TransportProtocol(chi.URLParam(r, "protocol"))
	hostPort, err := parsePort(chi.URLParam(r, "hostPort"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeLookup(w, s.instancius.GetPortMapping(id, proto, hostPort))
}

func (s *Server) handlePutPortMapping(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	proto := model.TransportProtocol(chi.URLParam(r, "protocol"))
	var body model.PortMapping
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, coreerrors.New(coreerrors.CodeInternal, "invalid request body", http.StatusBadRequest))
		return
	}
	l, err := s.instancius.UpdatePortMapping(id, proto, body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeLookup(w, l)
}

func (s *Server) handleDeletePortMappingRange(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	proto := model.TransportProtocol(chi.URLParam(r, "protocol"))
	hostPort, err := parsePort(chi.URLParam(r, "hostPort"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeLookup(w, s.instancius.DeletePortMappingRange(id, proto, model.SinglePort(hostPort)))
}

func (s *Server) handleDeleteProtocolPortMappings(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	proto := model.TransportProtocol(chi.URLParam(r, "protocol"))
	writeLookup(w, s.instancius.DeleteProtocolPortMappings(id, proto))
}

func (s *Server) handleDeletePortMappings(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	writeLookup(w, s.instancius.DeletePortMappings(id))
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, coreerrors.New(coreerrors.CodeInternal, "port must be a uint16", http.StatusBadRequest)
	}
	return uint16(n), nil
}

func (s *Server) handleGetUsbDevices(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	l, err := s.instancius.GetUsbDevices(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeLookup(w, l)
}

func (s *Server) handleGetUsbDevice(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	port := chi.URLParam(r, "port")
	result, cfg, live, err := s.instancius.GetUsbDevice(id, port)
	if err != nil {
		writeError(w, err)
		return
	}
	switch result {
	case orchestrator.UsbInstanceNotFound:
		writeError(w, coreerrors.InstanceNotFound(string(id)))
	case orchestrator.UsbUnknownDevice, orchestrator.UsbDeviceNotMapped:
		writeJSON(w, http.StatusNotFound, nil)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"config": cfg, "live": live})
	}
}

func (s *Server) handlePutUsbDevice(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	port := chi.URLParam(r, "port")
	result, cfg, err := s.instancius.PutUsbDevice(id, port)
	if err != nil {
		writeError(w, err)
		return
	}
	switch result {
	case orchestrator.PutUsbInstanceNotFound:
		writeError(w, coreerrors.InstanceNotFound(string(id)))
	case orchestrator.PutUsbDeviceNotFound:
		writeJSON(w, http.StatusNotFound, nil)
	case orchestrator.PutUsbDeviceMappingCreated:
		writeJSON(w, http.StatusCreated, cfg)
	default:
		writeJSON(w, http.StatusOK, cfg)
	}
}

func (s *Server) handleDeleteUsbDevice(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	port := chi.URLParam(r, "port")
	writeLookup(w, s.instancius.DeleteUsbDevice(id, port))
}

func (s *Server) handleDeleteUsbDevices(w http.ResponseWriter, r *http.Request) {
	id := model.InstanceId(chi.URLParam(r, "instanceId"))
	writeLookup(w, s.instancius.DeleteUsbDevices(id))
}

func writeLookup[T any](w http.ResponseWriter, l orchestrator.Lookup[T]) {
	switch l.Presence {
	case orchestrator.InstanceMissing:
		writeError(w, coreerrors.New(coreerrors.CodeInstanceNotFound, "instance not found", http.StatusNotFound))
	case orchestrator.ItemMissing:
		writeJSON(w, http.StatusNotFound, nil)
	default:
		writeJSON(w, http.StatusOK, l.Value)
	}
}
