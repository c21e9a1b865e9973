package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads, defaults and validates a configuration file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses, defaults and validates a configuration.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Marshal encodes the configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Example returns the starter configuration written by `wetwire-eks init`.
func Example(name string) *Config {
	zero, one, three := 0, 1, 3
	return &Config{
		Stack: StackConfig{Name: name, Description: "EKS cluster " + name},
		Network: NetworkConfig{
			CIDR:   "10.0.0.0/16",
			MaxAZs: 2,
		},
		Cluster: ClusterConfig{
			Name:              name,
			Version:           "1.29",
			EndpointAccess:    "public-and-private",
			Logging:           []string{"api", "audit", "authenticator"},
			Tags:              map[string]string{"cluster": name},
			DefaultCapacity:   &zero,
			OutputClusterName: true,
		},
		Nodegroups: []NodegroupConfig{{
			ID:            "General",
			InstanceTypes: []string{"m5.large"},
			MinSize:       &one,
			MaxSize:       &three,
			Placement:     "private",
		}},
		Addons: []AddonConfig{
			{ID: "VpcCni", Name: "vpc-cni"},
			{ID: "CoreDns", Name: "coredns"},
			{ID: "KubeProxy", Name: "kube-proxy"},
		},
	}
}
