package sorcerer

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flecs-run/edge-core/internal/capability/captest"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/quest"
	"github.com/flecs-run/edge-core/internal/vault"
)

func TestInstancius_CreateThenQuery(t *testing.T) {
	v := vault.New()
	key := model.AppKey{Name: "A", Version: "1"}

	g := v.Reservation().ReserveAppPouchMut().ReserveManifestPouchMut().ReserveDeploymentPouchMut().Grab()
	g.Apps.Set(key, &model.App{Key: key, Status: model.AppStatusInstalled})
	g.Manifests.Set(key, &model.Manifest{Key: key, MultiInstance: true})
	dep := captest.NewDeployment("dep0")
	_, subnet, err := net.ParseCIDR("10.18.0.0/16")
	require.NoError(t, err)
	dep.Network = model.Network{ID: "net0", Subnet: subnet, Gateway: net.ParseIP("10.18.0.100")}
	g.Deployments.Set(dep)
	g.Release()

	floxy := captest.NewFloxy(100)
	usb := captest.NewUsbDeviceReader(nil)
	instancius := NewInstancius(v, dep, floxy, usb)

	reg := quest.NewRegistry(context.Background())
	var id model.InstanceId
	var createErr error
	root := reg.NewRoot("create test", func(ctx context.Context, q *quest.Quest) error {
		id, createErr = instancius.CreateInstance(ctx, q, key, "test")
		return nil
	})
	for root.State() == quest.Pending || root.State() == quest.Running {
	}
	require.NoError(t, createErr)

	assert.True(t, instancius.DoesInstanceExist(id))

	info, err := instancius.GetInstance(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "test", info.Name)

	all, err := instancius.GetAllInstances(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestJobs_ListGetDelete(t *testing.T) {
	reg := quest.NewRegistry(context.Background())
	jobs := NewJobs(reg)

	root := reg.NewRoot("noop", func(ctx context.Context, q *quest.Quest) error { return nil })
	for root.State() == quest.Pending || root.State() == quest.Running {
	}

	list := jobs.List()
	require.Len(t, list, 1)

	got, err := jobs.Get(root.ID())
	require.NoError(t, err)
	assert.Equal(t, root.ID(), got.ID())

	require.NoError(t, jobs.Delete(root.ID()))

	_, err = jobs.Get(root.ID())
	assert.Error(t, err)
}
