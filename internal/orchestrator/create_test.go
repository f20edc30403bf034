package orchestrator

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flecs-run/edge-core/internal/capability"
	"github.com/flecs-run/edge-core/internal/capability/captest"
	coreerrors "github.com/flecs-run/edge-core/internal/errors"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/quest"
	"github.com/flecs-run/edge-core/internal/vault"
)

func installApp(v *vault.Vault, key model.AppKey, multiInstance bool) {
	g := v.Reservation().ReserveAppPouchMut().ReserveManifestPouchMut().Grab()
	g.Apps.Set(key, &model.App{Key: key, Status: model.AppStatusInstalled})
	g.Manifests.Set(key, &model.Manifest{Key: key, MultiInstance: multiInstance})
	g.Release()
}

func registerDeployment(v *vault.Vault, dep capability.Deployment) {
	g := v.Reservation().ReserveDeploymentPouchMut().Grab()
	g.Deployments.Set(dep)
	g.Release()
}

func subnet16(t *testing.T) (*net.IPNet, net.IP) {
	t.Helper()
	_, n, err := net.ParseCIDR("10.18.0.0/16")
	require.NoError(t, err)
	return n, net.ParseIP("10.18.0.100")
}

func runCreate(t *testing.T, v *vault.Vault, key model.AppKey, name string) (model.InstanceId, error) {
	t.Helper()
	reg := quest.NewRegistry(context.Background())
	var id model.InstanceId
	var createErr error
	root := reg.NewRoot("create "+name, func(ctx context.Context, q *quest.Quest) error {
		id, createErr = CreateInstance(ctx, q, v, key, name)
		return nil
	})
	waitQuestTerminal(t, root)
	return id, createErr
}

func waitQuestTerminal(t *testing.T, q *quest.Quest) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		switch q.State() {
		case quest.Ok, quest.Failed, quest.Cancelled:
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("quest did not reach a terminal state")
}

func TestCreateInstance_SecondCallOnSingleInstanceAppConflicts(t *testing.T) {
	v := vault.New()
	key := model.AppKey{Name: "A", Version: "1"}
	installApp(v, key, false)
	subnet, gw := subnet16(t)
	dep := captest.NewDeployment("dep0")
	dep.Network = model.Network{ID: "net0", Subnet: subnet, Gateway: gw}
	registerDeployment(v, dep)

	id1, err := runCreate(t, v, key, "first")
	require.NoError(t, err)
	assert.NotEmpty(t, id1)

	_, err = runCreate(t, v, key, "second")
	require.Error(t, err)
	assert.Equal(t, coreerrors.CodeMultiInstanceForbidden, coreerrors.As(err).Code)

	g := v.Reservation().ReserveInstancePouch().Grab()
	defer g.Release()
	assert.Len(t, g.Instances.Keys(), 1)
}

func TestCreateInstance_MultiInstanceAllocatesSequentialIPs(t *testing.T) {
	v := vault.New()
	key := model.AppKey{Name: "B", Version: "1"}
	installApp(v, key, true)
	subnet, gw := subnet16(t)
	dep := captest.NewDeployment("dep0")
	dep.Network = model.Network{ID: "net0", Subnet: subnet, Gateway: gw}
	registerDeployment(v, dep)

	id1, err := runCreate(t, v, key, "first")
	require.NoError(t, err)
	id2, err := runCreate(t, v, key, "second")
	require.NoError(t, err)

	g := v.Reservation().ReserveInstancePouch().Grab()
	defer g.Release()
	i1, _ := g.Instances.Get(id1)
	i2, _ := g.Instances.Get(id2)
	assert.Equal(t, "10.18.0.1", i1.Config.ConnectedNetworks["net0"].String())
	assert.Equal(t, "10.18.0.2", i2.Config.ConnectedNetworks["net0"].String())
}

func TestCreateInstance_FailedDefaultNetworkReleasesReservation(t *testing.T) {
	v := vault.New()
	key := model.AppKey{Name: "C", Version: "1"}
	installApp(v, key, true)
	dep := captest.NewDeployment("dep0")
	dep.NetworkErr = errors.New("network unavailable")
	registerDeployment(v, dep)

	_, err := runCreate(t, v, key, "first")
	require.Error(t, err)

	g := v.Reservation().ReserveInstancePouch().Grab()
	defer g.Release()
	assert.Empty(t, g.Instances.Keys())
	assert.Empty(t, g.Instances.PendingReservations("net0"))
}

func TestCreateInstance_AppNotInstalled(t *testing.T) {
	v := vault.New()
	key := model.AppKey{Name: "D", Version: "1"}

	_, err := runCreate(t, v, key, "first")
	require.Error(t, err)
	assert.Equal(t, coreerrors.CodeAppNotInstalled, coreerrors.As(err).Code)
}

func TestCreateInstance_NoDeployment(t *testing.T) {
	v := vault.New()
	key := model.AppKey{Name: "E", Version: "1"}
	installApp(v, key, true)

	_, err := runCreate(t, v, key, "first")
	require.Error(t, err)
	assert.Equal(t, coreerrors.CodeNoDeployment, coreerrors.As(err).Code)
}
