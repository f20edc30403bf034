// Package errors provides the structured error taxonomy surfaced by the
// vault, quest and orchestrator packages.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the kind of failure independent of its message.
type Code string

const (
	// Lookup failures.
	CodeInstanceNotFound   Code = "NOT_FOUND_INSTANCE"
	CodeAppNotFound        Code = "NOT_FOUND_APP"
	CodeManifestNotFound   Code = "NOT_FOUND_MANIFEST"
	CodeDeploymentNotFound Code = "NOT_FOUND_DEPLOYMENT"
	CodePortNotFound       Code = "NOT_FOUND_PORT"
	CodeVariableNotFound   Code = "NOT_FOUND_VARIABLE"
	CodeUsbPortNotFound    Code = "NOT_FOUND_USB_PORT"
	CodeJobNotFound        Code = "NOT_FOUND_JOB"

	// Invariant violations.
	CodeMultiInstanceForbidden    Code = "CONFLICT_MULTI_INSTANCE_FORBIDDEN"
	CodePortOverlap               Code = "CONFLICT_PORT_OVERLAP"
	CodeAlreadyConnectedToNetwork Code = "CONFLICT_ALREADY_CONNECTED_TO_NETWORK"

	// Required state absent.
	CodeAppNotInstalled      Code = "PRECONDITION_APP_NOT_INSTALLED"
	CodeNoDeployment         Code = "PRECONDITION_NO_DEPLOYMENT"
	CodeNoFreeIP             Code = "PRECONDITION_NO_FREE_IP"
	CodeInstanceNotRunning   Code = "PRECONDITION_INSTANCE_NOT_RUNNING"
	CodeInstanceNotConnected Code = "PRECONDITION_INSTANCE_NOT_CONNECTED"

	// A capability returned an error.
	CodeUpstreamDeployment Code = "UPSTREAM_DEPLOYMENT"
	CodeUpstreamFloxy      Code = "UPSTREAM_FLOXY"
	CodeUpstreamUsbReader  Code = "UPSTREAM_USB_READER"

	// A Quest ancestor was cancelled.
	CodeCancelled Code = "CANCELLED"

	// Input rejected at entry.
	CodeInvalidPortMapping      Code = "INVALID_PORT_MAPPING"
	CodeInvalidEnvironmentVar   Code = "INVALID_ENVIRONMENT_VARIABLE"
	CodeInvalidNetwork          Code = "INVALID_NETWORK"
	CodeInternal                Code = "INTERNAL"
)

// CoreError is the structured error every public operation returns on
// failure. It carries an HTTP status for the adapter layer, an optional
// wrapped cause, and free-form details for diagnostics.
type CoreError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *CoreError) Unwrap() error { return e.Err }

// WithDetail attaches a diagnostic key/value pair and returns the receiver.
func (e *CoreError) WithDetail(key string, value any) *CoreError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func New(code Code, message string, httpStatus int) *CoreError {
	return &CoreError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(code Code, message string, httpStatus int, err error) *CoreError {
	return &CoreError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// NotFound errors.

func InstanceNotFound(id string) *CoreError {
	return New(CodeInstanceNotFound, "instance not found", http.StatusNotFound).WithDetail("instance_id", id)
}

func AppNotFound(name, version string) *CoreError {
	return New(CodeAppNotFound, "app not found", http.StatusNotFound).
		WithDetail("name", name).WithDetail("version", version)
}

func ManifestNotFound(name, version string) *CoreError {
	return New(CodeManifestNotFound, "manifest not found", http.StatusNotFound).
		WithDetail("name", name).WithDetail("version", version)
}

func DeploymentNotFound(id string) *CoreError {
	return New(CodeDeploymentNotFound, "deployment not found", http.StatusNotFound).WithDetail("deployment_id", id)
}

func PortNotFound(hostPort uint16) *CoreError {
	return New(CodePortNotFound, "port mapping not found", http.StatusNotFound).WithDetail("host_port", hostPort)
}

func VariableNotFound(name string) *CoreError {
	return New(CodeVariableNotFound, "environment variable not found", http.StatusNotFound).WithDetail("name", name)
}

func UsbPortNotFound(port string) *CoreError {
	return New(CodeUsbPortNotFound, "usb port not found", http.StatusNotFound).WithDetail("port", port)
}

func JobNotFound(id string) *CoreError {
	return New(CodeJobNotFound, "job not found", http.StatusNotFound).WithDetail("job_id", id)
}

// Conflict errors.

func MultiInstanceForbidden(name, version string) *CoreError {
	return New(CodeMultiInstanceForbidden, "app does not support multiple instances", http.StatusConflict).
		WithDetail("name", name).WithDetail("version", version)
}

func PortOverlap(proto string) *CoreError {
	return New(CodePortOverlap, "port mapping overlaps an existing range", http.StatusConflict).WithDetail("protocol", proto)
}

func AlreadyConnectedToNetwork(networkID string) *CoreError {
	return New(CodeAlreadyConnectedToNetwork, "instance already connected to network", http.StatusConflict).
		WithDetail("network_id", networkID)
}

// Precondition errors.

func AppNotInstalled(name, version string) *CoreError {
	return New(CodeAppNotInstalled, "app is not installed", http.StatusPreconditionFailed).
		WithDetail("name", name).WithDetail("version", version)
}

func NoDeployment() *CoreError {
	return New(CodeNoDeployment, "no deployment present to create instance in", http.StatusPreconditionFailed)
}

func NoFreeIP() *CoreError {
	return New(CodeNoFreeIP, "no free ip address in default network", http.StatusPreconditionFailed)
}

func InstanceNotRunning(id string) *CoreError {
	return New(CodeInstanceNotRunning, "instance is not running", http.StatusPreconditionFailed).WithDetail("instance_id", id)
}

func InstanceNotConnected(id string) *CoreError {
	return New(CodeInstanceNotConnected, "instance has no address in the default network", http.StatusPreconditionFailed).
		WithDetail("instance_id", id)
}

// Upstream errors.

func UpstreamDeployment(operation string, err error) *CoreError {
	return Wrap(CodeUpstreamDeployment, "deployment operation failed", http.StatusBadGateway, err).WithDetail("operation", operation)
}

func UpstreamFloxy(operation string, err error) *CoreError {
	return Wrap(CodeUpstreamFloxy, "floxy operation failed", http.StatusBadGateway, err).WithDetail("operation", operation)
}

func UpstreamUsbReader(operation string, err error) *CoreError {
	return Wrap(CodeUpstreamUsbReader, "usb reader operation failed", http.StatusBadGateway, err).WithDetail("operation", operation)
}

// Cancelled is returned when a Quest ancestor was cancelled before an
// operation completed.
func Cancelled() *CoreError {
	return New(CodeCancelled, "operation cancelled", http.StatusRequestTimeout)
}

// Invalid input errors.

func InvalidPortMapping(reason string) *CoreError {
	return New(CodeInvalidPortMapping, reason, http.StatusBadRequest)
}

func InvalidEnvironmentVariable(reason string) *CoreError {
	return New(CodeInvalidEnvironmentVar, reason, http.StatusBadRequest)
}

func InvalidNetwork(reason string) *CoreError {
	return New(CodeInvalidNetwork, reason, http.StatusBadRequest)
}

func Internal(message string, err error) *CoreError {
	return Wrap(CodeInternal, message, http.StatusInternalServerError, err)
}

// Is reports whether err is a *CoreError carrying the given code.
func Is(err error, code Code) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// As extracts a *CoreError from an error chain.
func As(err error) *CoreError {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// HTTPStatus returns the HTTP status code associated with err, defaulting
// to 500 for errors that are not a *CoreError.
func HTTPStatus(err error) int {
	if ce := As(err); ce != nil {
		return ce.HTTPStatus
	}
	return http.StatusInternalServerError
}
