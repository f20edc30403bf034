package orchestrator

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flecs-run/edge-core/internal/capability/captest"
	coreerrors "github.com/flecs-run/edge-core/internal/errors"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

func seedInstance(v *vault.Vault, id model.InstanceId, key model.AppKey) {
	g := v.Reservation().ReserveInstancePouchMut().Grab()
	g.Instances.Set(&model.Instance{
		Id:     id,
		Name:   string(id),
		AppKey: key,
		Config: model.InstanceConfig{
			UsbDevices:        map[string]model.UsbPathConfig{},
			ConnectedNetworks: map[string]net.IP{},
			MappedEditorPorts: map[uint16]uint16{},
		},
	})
	g.Release()
}

func TestStartInstance_IdempotentWhenAlreadyRunning(t *testing.T) {
	v := vault.New()
	seedInstance(v, "i1", model.AppKey{Name: "A", Version: "1"})
	dep := captest.NewDeployment("dep0")
	dep.SetStatus("i1", model.InstanceRunning)

	err := StartInstance(context.Background(), v, dep, "i1")
	require.NoError(t, err)
}

func TestStopInstance_IdempotentWhenAlreadyStopped(t *testing.T) {
	v := vault.New()
	seedInstance(v, "i1", model.AppKey{Name: "A", Version: "1"})
	dep := captest.NewDeployment("dep0")

	err := StopInstance(context.Background(), v, dep, "i1")
	require.NoError(t, err)
	assert.Equal(t, 0, dep.StopCount("i1"))
}

func TestStartStopInstance_UnknownIdIsNotFound(t *testing.T) {
	v := vault.New()
	dep := captest.NewDeployment("dep0")

	err := StartInstance(context.Background(), v, dep, "missing")
	require.Error(t, err)
	assert.Equal(t, coreerrors.CodeInstanceNotFound, coreerrors.As(err).Code)

	err = StopInstance(context.Background(), v, dep, "missing")
	require.Error(t, err)
	assert.Equal(t, coreerrors.CodeInstanceNotFound, coreerrors.As(err).Code)
}

func TestDeleteInstance_StopsThenDeletesThenRemoves(t *testing.T) {
	v := vault.New()
	seedInstance(v, "r1", model.AppKey{Name: "A", Version: "1"})
	dep := captest.NewDeployment("dep0")
	dep.SetStatus("r1", model.InstanceRunning)
	floxy := captest.NewFloxy(100)

	err := DeleteInstance(context.Background(), v, dep, floxy, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, dep.StopCount("r1"))
	assert.Equal(t, 1, dep.DeleteCount("r1"))

	err = DeleteInstance(context.Background(), v, dep, floxy, "r1")
	require.Error(t, err)
	assert.Equal(t, coreerrors.CodeInstanceNotFound, coreerrors.As(err).Code)
}
