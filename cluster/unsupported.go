package cluster

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned by operations that need a Kubernetes API
// client or custom resources, which this construct does not provide.
var ErrNotImplemented = errors.New("not implemented")

// HelmChartOptions describes a Helm chart release.
type HelmChartOptions struct {
	Chart      string
	Repository string
	Version    string
	Namespace  string
	Release    string
	Values     map[string]any
}

// ServiceAccountOptions describes a Kubernetes service account bound to an
// IAM role through the cluster OIDC provider.
type ServiceAccountOptions struct {
	Name      string
	Namespace string
}

// AutoScalingGroupOptions describes self-managed capacity joining the cluster.
type AutoScalingGroupOptions struct {
	BootstrapEnabled bool
	MapRole          bool
}

// AddManifest always fails with ErrNotImplemented.
func (c *Cluster) AddManifest(id string, manifests ...map[string]any) error {
	return notImplemented("AddManifest")
}

// AddHelmChart always fails with ErrNotImplemented.
func (c *Cluster) AddHelmChart(id string, opts HelmChartOptions) error {
	return notImplemented("AddHelmChart")
}

// AddServiceAccount always fails with ErrNotImplemented.
func (c *Cluster) AddServiceAccount(id string, opts ServiceAccountOptions) error {
	return notImplemented("AddServiceAccount")
}

// ConnectAutoScalingGroupCapacity always fails with ErrNotImplemented.
func (c *Cluster) ConnectAutoScalingGroupCapacity(autoScalingGroup any, opts AutoScalingGroupOptions) error {
	return notImplemented("ConnectAutoScalingGroupCapacity")
}

func notImplemented(op string) error {
	return fmt.Errorf("%s: %w", op, ErrNotImplemented)
}
