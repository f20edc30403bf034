package orchestrator

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flecs-run/edge-core/internal/capability/captest"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

func TestDoesInstanceExist(t *testing.T) {
	v := vault.New()
	seedInstance(v, "i1", model.AppKey{Name: "A", Version: "1"})

	assert.True(t, DoesInstanceExist(v, "i1"))
	assert.False(t, DoesInstanceExist(v, "missing"))
}

func TestGetInstance_ReturnsLiveStatus(t *testing.T) {
	v := vault.New()
	seedInstance(v, "i1", model.AppKey{Name: "A", Version: "1"})
	dep := captest.NewDeployment("dep0")
	dep.SetStatus("i1", model.InstanceRunning)

	info, err := GetInstance(context.Background(), v, dep, "i1")
	require.NoError(t, err)
	assert.Equal(t, model.InstanceRunning, info.Status)
}

func TestGetInstancesFiltered_ByNameAndVersion(t *testing.T) {
	v := vault.New()
	seedInstance(v, "i1", model.AppKey{Name: "A", Version: "1"})
	seedInstance(v, "i2", model.AppKey{Name: "A", Version: "2"})
	seedInstance(v, "i3", model.AppKey{Name: "B", Version: "1"})
	dep := captest.NewDeployment("dep0")

	name := "A"
	byName, err := GetInstancesFiltered(context.Background(), v, dep, &name, nil)
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	version := "1"
	byKey, err := GetInstancesFiltered(context.Background(), v, dep, &name, &version)
	require.NoError(t, err)
	require.Len(t, byKey, 1)
	assert.Equal(t, model.InstanceId("i1"), byKey[0].Id)
}

func TestGetAllInstances(t *testing.T) {
	v := vault.New()
	seedInstance(v, "i1", model.AppKey{Name: "A", Version: "1"})
	seedInstance(v, "i2", model.AppKey{Name: "B", Version: "1"})
	dep := captest.NewDeployment("dep0")

	all, err := GetAllInstances(context.Background(), v, dep)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetInstanceLabels_AndValue(t *testing.T) {
	v := vault.New()
	key := model.AppKey{Name: "A", Version: "1"}
	value := "bar"
	g := v.Reservation().ReserveInstancePouchMut().ReserveManifestPouchMut().Grab()
	g.Manifests.Set(key, &model.Manifest{Key: key, Labels: []model.Label{{Label: "foo", Value: &value}}})
	g.Instances.Set(&model.Instance{
		Id:     "i1",
		AppKey: key,
		Config: model.InstanceConfig{ConnectedNetworks: map[string]net.IP{}},
	})
	g.Release()

	labels := GetInstanceLabels(v, "i1")
	require.Equal(t, Present, labels.Presence)
	require.Len(t, labels.Value, 1)

	val := GetInstanceLabelValue(v, "i1", "foo")
	require.Equal(t, Present, val.Presence)
	assert.Equal(t, "bar", *val.Value)

	missing := GetInstanceLabelValue(v, "i1", "nope")
	assert.Equal(t, ItemMissing, missing.Presence)

	gone := GetInstanceLabels(v, "missing")
	assert.Equal(t, InstanceMissing, gone.Presence)
}
