package orchestrator

import (
	"context"
	"net"

	"github.com/google/uuid"

	"github.com/flecs-run/edge-core/internal/capability"
	coreerrors "github.com/flecs-run/edge-core/internal/errors"
	"github.com/flecs-run/edge-core/internal/ipam"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/quest"
	"github.com/flecs-run/edge-core/internal/vault"
)

type validated struct {
	manifest    *model.Manifest
	deployments []capability.Deployment
}

// CreateInstance runs the four-stage creation spell: validate, reserve an
// IPv4 address, create the instance against the chosen deployment, persist
// it into the vault. Any failure after the IP reservation releases it
// before returning.
func CreateInstance(ctx context.Context, q *quest.Quest, v *vault.Vault, appKey model.AppKey, name string) (model.InstanceId, error) {
	_, validateCh := quest.CreateSubQuest(q, "Validate request for creation of instance '"+name+"' of "+appKey.String(),
		func(ctx context.Context, sub *quest.Quest) (any, error) {
			return validateCreate(v, appKey)
		})
	rawValidated, err := quest.Await(validateCh)
	if err != nil {
		return "", err
	}
	val := rawValidated.(validated)

	// TODO: open question preserved from upstream — only the first
	// deployment is ever used when several exist.
	deployment := val.deployments[0]

	_, reserveCh := quest.CreateSubQuest(q, "Reserve ip address in default network of deployment "+deployment.ID(),
		func(ctx context.Context, sub *quest.Quest) (any, error) {
			network, err := deployment.DefaultNetwork(ctx)
			if err != nil {
				return nil, coreerrors.UpstreamDeployment("default_network", err)
			}
			access := model.Ipv4NetworkAccess{Subnet: network.Subnet, Gateway: network.Gateway}
			ip, ok := ipam.MakeReservation(v, network.ID, access)
			if !ok {
				return nil, coreerrors.NoFreeIP()
			}
			sub.SetDetail("Reserved " + ip.String())
			return reservedAddress{networkID: network.ID, ip: ip}, nil
		})
	rawAddress, err := quest.Await(reserveCh)
	if err != nil {
		return "", err
	}
	addr := rawAddress.(reservedAddress)

	_, createCh := quest.CreateSubQuest(q, "Create instance '"+name+"' for "+appKey.String(),
		func(ctx context.Context, sub *quest.Quest) (any, error) {
			return createInDeployment(ctx, deployment, val.manifest, name, addr)
		})
	rawInstance, err := quest.Await(createCh)
	if err != nil {
		ipam.ClearReservation(v, addr.networkID, addr.ip)
		return "", err
	}
	instance := rawInstance.(*model.Instance)

	_, saveCh := quest.CreateInfallibleSubQuest(q, "Saving new instance "+instance.Name+" with id "+string(instance.Id),
		func(ctx context.Context, sub *quest.Quest) any {
			g := v.Reservation().ReserveInstancePouchMut().Grab()
			defer g.Release()
			g.Instances.Set(instance)
			g.Instances.ClearPendingReservation(addr.networkID, addr.ip)
			return nil
		})
	<-saveCh

	return instance.Id, nil
}

type reservedAddress struct {
	networkID string
	ip        net.IP
}

func validateCreate(v *vault.Vault, appKey model.AppKey) (validated, error) {
	g := v.Reservation().
		ReserveAppPouch().
		ReserveManifestPouch().
		ReserveInstancePouch().
		ReserveDeploymentPouch().
		Grab()
	defer g.Release()

	app, ok := g.Apps.Get(appKey)
	if !ok || app.Status != model.AppStatusInstalled {
		return validated{}, coreerrors.AppNotInstalled(appKey.Name, appKey.Version)
	}

	manifest, ok := g.Manifests.Get(appKey)
	if !ok {
		return validated{}, coreerrors.ManifestNotFound(appKey.Name, appKey.Version)
	}

	if !manifest.MultiInstance && len(g.Instances.ByAppKey(appKey)) > 0 {
		return validated{}, coreerrors.MultiInstanceForbidden(appKey.Name, appKey.Version)
	}

	deployments := g.Deployments.All()
	if len(deployments) == 0 {
		return validated{}, coreerrors.NoDeployment()
	}

	return validated{manifest: manifest, deployments: deployments}, nil
}

func createInDeployment(ctx context.Context, deployment capability.Deployment, manifest *model.Manifest, name string, addr reservedAddress) (*model.Instance, error) {
	id := model.InstanceId(uuid.NewString())
	cfg := model.NewInstanceConfig(manifest)
	cfg.ConnectedNetworks[addr.networkID] = addr.ip

	startedID, err := deployment.StartInstance(ctx, cfg, id)
	if err != nil {
		return nil, coreerrors.UpstreamDeployment("start_instance", err)
	}

	return &model.Instance{
		Id:           startedID,
		Name:         name,
		AppKey:       manifest.Key,
		DeploymentID: deployment.ID(),
		Config:       cfg,
	}, nil
}
