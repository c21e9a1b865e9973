// Package graph generates DOT and Mermaid dependency graphs from a
// synthesized template.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/template"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from templates.
type Generator struct {
	// IncludeParameters includes parameter references in the graph.
	IncludeParameters bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByService groups resources by AWS service.
	ClusterByService bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(tmpl *wetwire.Template, w io.Writer) error {
	graph := g.buildGraph(tmpl)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(tmpl *wetwire.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(tmpl, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildGraph creates the dot.Graph structure from the template.
func (g *Generator) buildGraph(tmpl *wetwire.Template) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	names := sortedNames(tmpl.Resources)

	// Nodes are created once, possibly inside a service subgraph, and edges
	// are drawn between these nodes.
	nodes := make(map[string]dot.Node, len(names))
	if g.ClusterByService {
		addClusteredNodes(graph, tmpl.Resources, names, nodes)
	} else {
		for _, name := range names {
			nodes[name] = addNode(graph, name, tmpl.Resources[name].Type)
		}
	}

	if g.IncludeParameters {
		params := make([]string, 0, len(tmpl.Parameters))
		for name := range tmpl.Parameters {
			params = append(params, name)
		}
		sort.Strings(params)
		for _, name := range params {
			n := graph.Node("param:" + name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
			nodes[name] = n
		}
	}

	for _, name := range names {
		res := tmpl.Resources[name]
		getAtts := make(map[string]bool)
		for _, target := range template.CollectGetAtts(res.Properties) {
			getAtts[target] = true
		}

		for _, dep := range template.CollectRefs(res.Properties) {
			target, ok := nodes[dep]
			if !ok {
				continue
			}
			e := graph.Edge(nodes[name], target)
			if getAtts[dep] {
				e.Attr("color", "blue")
			}
		}

		for _, dep := range res.DependsOn {
			if _, ok := tmpl.Resources[dep]; !ok {
				continue
			}
			e := graph.Edge(nodes[name], nodes[dep])
			e.Attr("style", "dashed")
		}
	}

	return graph
}

func addNode(graph *dot.Graph, name, cfType string) dot.Node {
	n := graph.Node(name)
	n.Label(name + "\\n[" + cfType + "]")
	return n
}

// addClusteredNodes adds resource nodes grouped by AWS service. Services
// with a single resource stay at the top level.
func addClusteredNodes(graph *dot.Graph, resources map[string]wetwire.ResourceDef, names []string, nodes map[string]dot.Node) {
	serviceResources := make(map[string][]string)
	var services []string
	for _, name := range names {
		service := extractService(resources[name].Type)
		if _, ok := serviceResources[service]; !ok {
			services = append(services, service)
		}
		serviceResources[service] = append(serviceResources[service], name)
	}
	sort.Strings(services)

	for _, service := range services {
		resNames := serviceResources[service]
		parent := graph
		if len(resNames) > 1 {
			parent = graph.Subgraph(service, dot.ClusterOption{})
			parent.Attr("style", "rounded")
			parent.Attr("bgcolor", "lightyellow")
		}
		for _, name := range resNames {
			nodes[name] = addNode(parent, name, resources[name].Type)
		}
	}
}

// extractService returns the service segment of a CloudFormation type.
// e.g., "AWS::EKS::Cluster" -> "EKS"
func extractService(cfType string) string {
	parts := strings.Split(cfType, "::")
	if len(parts) == 3 {
		return parts[1]
	}
	return "Other"
}

func sortedNames(resources map[string]wetwire.ResourceDef) []string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
