package cluster

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/intrinsics"
	"github.com/lex00/wetwire-eks-go/network"
	"github.com/lex00/wetwire-eks-go/resources/eks"
	"github.com/lex00/wetwire-eks-go/resources/iam"
)

var (
	ErrInvalidScaling     = errors.New("invalid scaling configuration")
	ErrInvalidLabel       = errors.New("invalid label")
	ErrInvalidTaint       = errors.New("invalid taint")
	ErrInvalidCapacity    = errors.New("invalid capacity type")
	ErrNoPrivateSubnets   = errors.New("fargate profiles require private subnets")
	ErrInvalidSelectors   = errors.New("fargate profiles need between 1 and 5 selectors")
	ErrAddonNameRequired  = errors.New("add-on name is required")
	ErrInvalidAddon       = errors.New("invalid add-on configuration")
	ErrPrincipalRequired  = errors.New("principal ARN is required")
	ErrInvalidAccessEntry = errors.New("invalid access entry")
)

// Taint effects accepted by managed node groups.
const (
	TaintNoSchedule       = "NO_SCHEDULE"
	TaintNoExecute        = "NO_EXECUTE"
	TaintPreferNoSchedule = "PREFER_NO_SCHEDULE"
)

// Capacity types of managed node groups.
const (
	CapacityOnDemand = "ON_DEMAND"
	CapacitySpot     = "SPOT"
)

// Taint is a Kubernetes taint applied to every node in a node group.
type Taint struct {
	Key    string
	Value  string
	Effect string
}

// NodegroupOptions configures a managed node group.
type NodegroupOptions struct {
	// NodegroupName is the physical name. Generated by EKS when empty.
	NodegroupName  string
	InstanceTypes  []string
	AmiType        string
	CapacityType   string
	DiskSize       int
	ReleaseVersion string
	// MinSize defaults to 1, DesiredSize to MinSize, MaxSize to DesiredSize.
	MinSize     *int
	DesiredSize *int
	MaxSize     *int
	// MaxUnavailable bounds how many nodes are replaced at once during updates.
	MaxUnavailable int
	Labels         map[string]string
	Taints         []Taint
	// Subnets default to the private subnets of the cluster VPC, or the
	// public subnets when the VPC has none.
	Subnets []*network.Subnet
	// NodeRole is an existing node role ARN. A role is created when nil.
	NodeRole any
	Tags     map[string]string
}

// Nodegroup is a declared managed node group.
type Nodegroup struct {
	id       string
	role     any
	resource *eks.Nodegroup
}

// ID returns the logical ID of the node group.
func (n *Nodegroup) ID() string { return n.id }

// Arn returns the node group ARN.
func (n *Nodegroup) Arn() wetwire.AttrRef { return wetwire.AttrRef{Resource: n.id, Attribute: "Arn"} }

// Role returns the node role ARN.
func (n *Nodegroup) Role() any { return n.role }

// Resource returns the declared node group resource.
func (n *Nodegroup) Resource() *eks.Nodegroup { return n.resource }

// AddNodegroupCapacity declares a managed node group for the cluster.
func (c *Cluster) AddNodegroupCapacity(id string, opts NodegroupOptions) (*Nodegroup, error) {
	logicalID := c.id + id

	minSize, desiredSize, maxSize, err := scaling(opts.MinSize, opts.DesiredSize, opts.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("node group %s: %w", id, err)
	}
	switch opts.CapacityType {
	case "", CapacityOnDemand, CapacitySpot:
	default:
		return nil, fmt.Errorf("node group %s: %w: %q", id, ErrInvalidCapacity, opts.CapacityType)
	}
	if err := validateLabels(opts.Labels); err != nil {
		return nil, fmt.Errorf("node group %s: %w", id, err)
	}
	taints, err := nodegroupTaints(opts.Taints)
	if err != nil {
		return nil, fmt.Errorf("node group %s: %w", id, err)
	}

	subnets := opts.Subnets
	if len(subnets) == 0 {
		subnets = c.props.Vpc.PrivateSubnets()
	}
	if len(subnets) == 0 {
		subnets = c.props.Vpc.PublicSubnets()
	}

	role := opts.NodeRole
	if role == nil {
		roleID := logicalID + "NodeRole"
		if err := c.stack.Add(roleID, &iam.Role{
			AssumeRolePolicyDocument: intrinsics.AssumeRolePolicy(intrinsics.ServicePrincipal{"ec2.amazonaws.com"}),
			ManagedPolicyArns: []any{
				intrinsics.ManagedPolicyArn("AmazonEKSWorkerNodePolicy"),
				intrinsics.ManagedPolicyArn("AmazonEKS_CNI_Policy"),
				intrinsics.ManagedPolicyArn("AmazonEC2ContainerRegistryReadOnly"),
			},
			Tags: wetwire.TagsFromMap(mergeTags(c.props.Tags, opts.Tags)),
		}); err != nil {
			return nil, err
		}
		role = wetwire.AttrRef{Resource: roleID, Attribute: "Arn"}
	}

	resource := &eks.Nodegroup{
		ClusterName:    c.ClusterName(),
		NodeRole:       role,
		Subnets:        network.SubnetIDs(subnets),
		InstanceTypes:  opts.InstanceTypes,
		AmiType:        opts.AmiType,
		CapacityType:   opts.CapacityType,
		DiskSize:       opts.DiskSize,
		ReleaseVersion: opts.ReleaseVersion,
		ScalingConfig: &eks.Nodegroup_ScalingConfig{
			MinSize:     &minSize,
			DesiredSize: &desiredSize,
			MaxSize:     &maxSize,
		},
		Labels: opts.Labels,
		Taints: taints,
	}
	if opts.NodegroupName != "" {
		resource.NodegroupName = opts.NodegroupName
	}
	if opts.MaxUnavailable > 0 {
		resource.UpdateConfig = &eks.Nodegroup_UpdateConfig{MaxUnavailable: opts.MaxUnavailable}
	}
	if tags := mergeTags(c.props.Tags, opts.Tags); len(tags) > 0 {
		resource.Tags = make(map[string]any, len(tags))
		for k, v := range tags {
			resource.Tags[k] = v
		}
	}

	if err := c.stack.Add(logicalID, resource); err != nil {
		return nil, err
	}
	c.log.V(1).Info("node group declared", "nodegroup", logicalID, "min", minSize, "desired", desiredSize, "max", maxSize)
	return &Nodegroup{id: logicalID, role: role, resource: resource}, nil
}

func scaling(minSize, desiredSize, maxSize *int) (int, int, int, error) {
	lo := 1
	if minSize != nil {
		lo = *minSize
	}
	desired := lo
	if desiredSize != nil {
		desired = *desiredSize
	}
	hi := desired
	if maxSize != nil {
		hi = *maxSize
	}
	switch {
	case lo < 0:
		return 0, 0, 0, fmt.Errorf("%w: min size %d is negative", ErrInvalidScaling, lo)
	case hi < 1:
		return 0, 0, 0, fmt.Errorf("%w: max size must be at least 1, got %d", ErrInvalidScaling, hi)
	case desired < lo:
		return 0, 0, 0, fmt.Errorf("%w: desired size %d is less than min size %d", ErrInvalidScaling, desired, lo)
	case desired > hi:
		return 0, 0, 0, fmt.Errorf("%w: desired size %d is greater than max size %d", ErrInvalidScaling, desired, hi)
	}
	return lo, desired, hi, nil
}

func validateLabels(labels map[string]string) error {
	for _, key := range sortedKeys(labels) {
		if errs := validation.IsQualifiedName(key); len(errs) > 0 {
			return fmt.Errorf("%w: key %q: %s", ErrInvalidLabel, key, strings.Join(errs, "; "))
		}
		if errs := validation.IsValidLabelValue(labels[key]); len(errs) > 0 {
			return fmt.Errorf("%w: value %q: %s", ErrInvalidLabel, labels[key], strings.Join(errs, "; "))
		}
	}
	return nil
}

func nodegroupTaints(taints []Taint) ([]eks.Nodegroup_Taint, error) {
	if len(taints) == 0 {
		return nil, nil
	}
	out := make([]eks.Nodegroup_Taint, 0, len(taints))
	for _, t := range taints {
		if errs := validation.IsQualifiedName(t.Key); len(errs) > 0 {
			return nil, fmt.Errorf("%w: key %q: %s", ErrInvalidTaint, t.Key, strings.Join(errs, "; "))
		}
		if errs := validation.IsValidLabelValue(t.Value); len(errs) > 0 {
			return nil, fmt.Errorf("%w: value %q: %s", ErrInvalidTaint, t.Value, strings.Join(errs, "; "))
		}
		switch t.Effect {
		case TaintNoSchedule, TaintNoExecute, TaintPreferNoSchedule:
		default:
			return nil, fmt.Errorf("%w: effect %q", ErrInvalidTaint, t.Effect)
		}
		out = append(out, eks.Nodegroup_Taint{Key: t.Key, Value: t.Value, Effect: t.Effect})
	}
	return out, nil
}

// FargateSelector matches pods by namespace and labels.
type FargateSelector struct {
	Namespace string
	Labels    map[string]string
}

// FargateProfileOptions configures a Fargate profile.
type FargateProfileOptions struct {
	FargateProfileName string
	Selectors          []FargateSelector
	// PodExecutionRole is an existing role ARN. A role is created when nil.
	PodExecutionRole any
	// Subnets default to the private subnets of the cluster VPC.
	Subnets []*network.Subnet
	Tags    map[string]string
}

// FargateProfile is a declared Fargate profile.
type FargateProfile struct {
	id       string
	role     any
	resource *eks.FargateProfile
}

// ID returns the logical ID of the profile.
func (f *FargateProfile) ID() string { return f.id }

// Arn returns the profile ARN.
func (f *FargateProfile) Arn() wetwire.AttrRef {
	return wetwire.AttrRef{Resource: f.id, Attribute: "Arn"}
}

// PodExecutionRole returns the pod execution role ARN.
func (f *FargateProfile) PodExecutionRole() any { return f.role }

// Resource returns the declared profile resource.
func (f *FargateProfile) Resource() *eks.FargateProfile { return f.resource }

// AddFargateProfile declares a Fargate profile for the cluster. Fargate pods
// only run in private subnets.
func (c *Cluster) AddFargateProfile(id string, opts FargateProfileOptions) (*FargateProfile, error) {
	logicalID := c.id + id

	if len(opts.Selectors) == 0 || len(opts.Selectors) > 5 {
		return nil, fmt.Errorf("fargate profile %s: %w, got %d", id, ErrInvalidSelectors, len(opts.Selectors))
	}
	selectors := make([]eks.FargateProfile_Selector, 0, len(opts.Selectors))
	for _, sel := range opts.Selectors {
		if errs := validation.IsDNS1123Label(sel.Namespace); len(errs) > 0 {
			return nil, fmt.Errorf("fargate profile %s: invalid namespace %q: %s", id, sel.Namespace, strings.Join(errs, "; "))
		}
		if len(sel.Labels) > 5 {
			return nil, fmt.Errorf("fargate profile %s: %w: at most 5 labels per selector", id, ErrInvalidLabel)
		}
		if err := validateLabels(sel.Labels); err != nil {
			return nil, fmt.Errorf("fargate profile %s: %w", id, err)
		}
		selector := eks.FargateProfile_Selector{Namespace: sel.Namespace}
		for _, key := range sortedKeys(sel.Labels) {
			selector.Labels = append(selector.Labels, eks.FargateProfile_LabelKey{Key: key, Value: sel.Labels[key]})
		}
		selectors = append(selectors, selector)
	}

	subnets := opts.Subnets
	if len(subnets) == 0 {
		subnets = c.props.Vpc.PrivateSubnets()
	}
	if len(subnets) == 0 {
		return nil, fmt.Errorf("fargate profile %s: %w", id, ErrNoPrivateSubnets)
	}

	role := opts.PodExecutionRole
	if role == nil {
		roleID := logicalID + "PodExecutionRole"
		if err := c.stack.Add(roleID, &iam.Role{
			AssumeRolePolicyDocument: intrinsics.AssumeRolePolicy(intrinsics.ServicePrincipal{"eks-fargate-pods.amazonaws.com"}),
			ManagedPolicyArns:        []any{intrinsics.ManagedPolicyArn("AmazonEKSFargatePodExecutionRolePolicy")},
			Tags:                     wetwire.TagsFromMap(mergeTags(c.props.Tags, opts.Tags)),
		}); err != nil {
			return nil, err
		}
		role = wetwire.AttrRef{Resource: roleID, Attribute: "Arn"}
	}

	resource := &eks.FargateProfile{
		ClusterName:         c.ClusterName(),
		PodExecutionRoleArn: role,
		Subnets:             network.SubnetIDs(subnets),
		Selectors:           selectors,
		Tags:                wetwire.TagsFromMap(mergeTags(c.props.Tags, opts.Tags)),
	}
	if opts.FargateProfileName != "" {
		resource.FargateProfileName = opts.FargateProfileName
	}
	if err := c.stack.Add(logicalID, resource); err != nil {
		return nil, err
	}
	c.log.V(1).Info("fargate profile declared", "profile", logicalID, "selectors", len(selectors))
	return &FargateProfile{id: logicalID, role: role, resource: resource}, nil
}

// AddonOptions configures a managed add-on.
type AddonOptions struct {
	AddonName    string
	AddonVersion string
	// ResolveConflicts is NONE, OVERWRITE or PRESERVE.
	ResolveConflicts      string
	ServiceAccountRoleArn any
	// ConfigurationValues is a JSON document matching the add-on schema.
	ConfigurationValues string
	Tags                map[string]string
}

// Addon is a declared managed add-on.
type Addon struct {
	id       string
	resource *eks.Addon
}

// ID returns the logical ID of the add-on.
func (a *Addon) ID() string { return a.id }

// Resource returns the declared add-on resource.
func (a *Addon) Resource() *eks.Addon { return a.resource }

// AddAddon declares a managed add-on such as vpc-cni or coredns.
func (c *Cluster) AddAddon(id string, opts AddonOptions) (*Addon, error) {
	if opts.AddonName == "" {
		return nil, fmt.Errorf("add-on %s: %w", id, ErrAddonNameRequired)
	}
	switch opts.ResolveConflicts {
	case "", "NONE", "OVERWRITE", "PRESERVE":
	default:
		return nil, fmt.Errorf("add-on %s: %w: resolve conflicts %q", id, ErrInvalidAddon, opts.ResolveConflicts)
	}
	if opts.ConfigurationValues != "" && !jsonObject(opts.ConfigurationValues) {
		return nil, fmt.Errorf("add-on %s: %w: configuration values must be a JSON object", id, ErrInvalidAddon)
	}

	resource := &eks.Addon{
		ClusterName:           c.ClusterName(),
		AddonName:             opts.AddonName,
		AddonVersion:          opts.AddonVersion,
		ResolveConflicts:      opts.ResolveConflicts,
		ServiceAccountRoleArn: opts.ServiceAccountRoleArn,
		ConfigurationValues:   opts.ConfigurationValues,
		Tags:                  wetwire.TagsFromMap(mergeTags(c.props.Tags, opts.Tags)),
	}
	logicalID := c.id + id
	if err := c.stack.Add(logicalID, resource); err != nil {
		return nil, err
	}
	return &Addon{id: logicalID, resource: resource}, nil
}

// AccessPolicy associates an EKS access policy with an access entry.
type AccessPolicy struct {
	// PolicyName is an EKS access policy such as AmazonEKSViewPolicy.
	PolicyName string
	// Namespaces scopes the policy. Empty means cluster-wide.
	Namespaces []string
}

// AccessPrincipal is an IAM principal granted access to the cluster.
type AccessPrincipal struct {
	PrincipalArn     any
	KubernetesGroups []string
	Username         string
	AccessPolicies   []AccessPolicy
}

var reservedPrefixes = []string{"system:", "eks:", "aws:", "amazon:", "iam:"}

// GrantAccess declares an access entry binding an IAM principal to
// Kubernetes groups and EKS access policies.
func (c *Cluster) GrantAccess(id string, principal AccessPrincipal) error {
	return c.addAccessEntry(c.id+id, principal)
}

func (c *Cluster) addAccessEntry(logicalID string, principal AccessPrincipal) error {
	if err := validateAccessPrincipal(logicalID, principal); err != nil {
		return err
	}

	entry := &eks.AccessEntry{
		ClusterName:      c.ClusterName(),
		PrincipalArn:     principal.PrincipalArn,
		Type_:            "STANDARD",
		Username:         principal.Username,
		KubernetesGroups: principal.KubernetesGroups,
		Tags:             wetwire.TagsFromMap(c.props.Tags),
	}
	for _, p := range principal.AccessPolicies {
		scope := &eks.AccessEntry_AccessScope{Type_: "cluster"}
		if len(p.Namespaces) > 0 {
			scope = &eks.AccessEntry_AccessScope{Type_: "namespace", Namespaces: p.Namespaces}
		}
		entry.AccessPolicies = append(entry.AccessPolicies, eks.AccessEntry_AccessPolicy{
			PolicyArn:   intrinsics.EKSAccessPolicyArn(p.PolicyName),
			AccessScope: scope,
		})
	}

	return c.stack.Add(logicalID, entry)
}

// validateAccessPrincipal checks a principal without touching the stack.
func validateAccessPrincipal(logicalID string, principal AccessPrincipal) error {
	if principal.PrincipalArn == nil || principal.PrincipalArn == "" {
		return fmt.Errorf("access entry %s: %w", logicalID, ErrPrincipalRequired)
	}
	for _, group := range principal.KubernetesGroups {
		if err := validateSubject(group); err != nil {
			return fmt.Errorf("access entry %s: group %w", logicalID, err)
		}
	}
	if principal.Username != "" {
		if err := validateSubject(principal.Username); err != nil {
			return fmt.Errorf("access entry %s: username %w", logicalID, err)
		}
	}
	for _, p := range principal.AccessPolicies {
		if p.PolicyName == "" {
			return fmt.Errorf("access entry %s: %w: policy name is required", logicalID, ErrInvalidAccessEntry)
		}
		for _, ns := range p.Namespaces {
			if err := validateNamespacePattern(ns); err != nil {
				return fmt.Errorf("access entry %s: %w", logicalID, err)
			}
		}
	}
	return nil
}

func validateSubject(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAccessEntry)
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return fmt.Errorf("%w: %q uses reserved prefix %q", ErrInvalidAccessEntry, name, prefix)
		}
	}
	return nil
}

// validateNamespacePattern accepts a namespace name or a prefix ending in "*".
func validateNamespacePattern(ns string) error {
	if strings.HasSuffix(ns, "*") {
		if strings.Count(ns, "*") == 1 {
			return nil
		}
	} else if len(validation.IsDNS1123Label(ns)) == 0 {
		return nil
	}
	return fmt.Errorf("%w: namespace %q", ErrInvalidAccessEntry, ns)
}

func jsonObject(s string) bool {
	var m map[string]any
	return json.Unmarshal([]byte(s), &m) == nil
}

func mergeTags(base, extra map[string]string) map[string]string {
	if len(base)+len(extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
