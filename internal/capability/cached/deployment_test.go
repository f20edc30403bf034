package cached

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flecs-run/edge-core/internal/capability/captest"
	"github.com/flecs-run/edge-core/internal/model"
)

func ctxBG() context.Context { return context.Background() }

func TestDeployment_CachesStatusUntilTTLExpires(t *testing.T) {
	fake := captest.NewDeployment("dep-1")
	fake.SetStatus("i1", model.InstanceRunning)

	d, err := NewDeployment(fake, 16, 50*time.Millisecond)
	require.NoError(t, err)

	status, err := d.InstanceStatus(ctxBG(), "i1")
	require.NoError(t, err)
	assert.Equal(t, model.InstanceRunning, status)

	fake.SetStatus("i1", model.InstanceStopped)
	status, err = d.InstanceStatus(ctxBG(), "i1")
	require.NoError(t, err)
	assert.Equal(t, model.InstanceRunning, status, "cached value should still be served before TTL expiry")

	time.Sleep(60 * time.Millisecond)
	status, err = d.InstanceStatus(ctxBG(), "i1")
	require.NoError(t, err)
	assert.Equal(t, model.InstanceStopped, status, "expired entry should be refreshed from the backend")
}

func TestDeployment_StopInstanceEvictsCache(t *testing.T) {
	fake := captest.NewDeployment("dep-1")
	fake.SetStatus("i1", model.InstanceRunning)

	d, err := NewDeployment(fake, 16, time.Minute)
	require.NoError(t, err)

	_, err = d.InstanceStatus(ctxBG(), "i1")
	require.NoError(t, err)

	fake.SetStatus("i1", model.InstanceStopped)
	require.NoError(t, d.StopInstance(ctxBG(), "i1", model.InstanceConfig{}))

	status, err := d.InstanceStatus(ctxBG(), "i1")
	require.NoError(t, err)
	assert.Equal(t, model.InstanceStopped, status)
}
