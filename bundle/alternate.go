package bundle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/currentlycurrently/acidtest/model"
)

// mcpServerEntry is one server definition under an mcpServers/mcp map,
// or the single top-level server.json shape.
type mcpServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// mcpDocument covers every alternate manifest shape this scanner
// recognizes: a top-level server definition (server.json), a named map
// of server definitions (mcp.json, claude_desktop_config.json, or
// package.json's "mcp"/"mcpServers" key), plus the common name/
// description/version fields any of them may carry at top level.
type mcpDocument struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Version     string                    `json:"version"`
	Command     string                    `json:"command"`
	Args        []string                  `json:"args"`
	Env         map[string]string         `json:"env"`
	MCPServers  map[string]mcpServerEntry `json:"mcpServers"`
	MCP         map[string]mcpServerEntry `json:"mcp"`
}

// parseAlternateManifest decodes one of the four alternate-flavor
// manifest files into the common Manifest shape. ok is false when
// fileName is package.json and it carries neither an "mcp" nor an
// "mcpServers" key (spec §6: "only if it holds an mcp/mcpServers key").
func parseAlternateManifest(fileName string, raw []byte) (model.Manifest, bool, error) {
	if fileName == "package.json" {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return model.Manifest{}, false, fmt.Errorf("package.json: %w", err)
		}
		if _, hasMCP := probe["mcp"]; !hasMCP {
			if _, hasServers := probe["mcpServers"]; !hasServers {
				return model.Manifest{}, false, nil
			}
		}
	}

	var doc mcpDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.Manifest{}, false, fmt.Errorf("%s: %w", fileName, err)
	}

	servers := map[string]mcpServerEntry{}
	for k, v := range doc.MCPServers {
		servers[k] = v
	}
	for k, v := range doc.MCP {
		servers[k] = v
	}
	if doc.Command != "" {
		servers[doc.Name] = mcpServerEntry{Command: doc.Command, Args: doc.Args, Env: doc.Env}
	}

	var tools []string
	envSet := map[string]bool{}
	var env []string
	binSet := map[string]bool{}
	var bins []string

	for name, entry := range servers {
		if name != "" {
			tools = append(tools, name)
		}
		if entry.Command != "" && !binSet[entry.Command] {
			binSet[entry.Command] = true
			bins = append(bins, entry.Command)
		}
		if prog, ok := firstProgramArg(entry.Args); ok && !binSet[prog] {
			binSet[prog] = true
			bins = append(bins, prog)
		}
		for key := range entry.Env {
			if !envSet[key] {
				envSet[key] = true
				env = append(env, key)
			}
		}
	}
	for key := range doc.Env {
		if !envSet[key] {
			envSet[key] = true
			env = append(env, key)
		}
	}

	return model.Manifest{
		Name:         doc.Name,
		Description:  doc.Description,
		Version:      doc.Version,
		Env:          env,
		Bins:         bins,
		Capabilities: tools,
	}, true, nil
}

// firstProgramArg returns the first argument that doesn't look like a
// CLI flag, picking up cases like `"command": "python3", "args":
// ["-m", "server"]` where the real invoked program is an args element
// (e.g. `npx`'s package name, or a script path) rather than the command
// itself.
func firstProgramArg(args []string) (string, bool) {
	for _, a := range args {
		if a == "" || strings.HasPrefix(a, "-") {
			continue
		}
		return a, true
	}
	return "", false
}
