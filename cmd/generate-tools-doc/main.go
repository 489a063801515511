// generate-tools-doc regenerates TOOLS.md from the registered tool
// definitions, so the documented parameter tables can never drift from the
// schemas the server actually advertises.
//
// Usage:
//
//	go run ./cmd/generate-tools-doc
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/mcp"
)

func main() {
	tools := mcp.AllTools()

	if err := os.WriteFile("TOOLS.md", []byte(generateMarkdown(tools)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating TOOLS.md: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("TOOLS.md generated, documented %d tools:\n", len(tools))
	for i := range tools {
		fmt.Printf("  - %s\n", tools[i].Name)
	}
}

type fieldInfo struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

func extractParams(tool *mcplib.Tool) []fieldInfo {
	requiredSet := make(map[string]bool)
	for _, r := range tool.InputSchema.Required {
		requiredSet[r] = true
	}

	var params []fieldInfo
	for name, prop := range tool.InputSchema.Properties {
		p := fieldInfo{
			Name:     name,
			Required: requiredSet[name],
		}
		if propMap, ok := prop.(map[string]any); ok {
			if t, ok := propMap["type"].(string); ok {
				p.Type = t
			}
			if d, ok := propMap["description"].(string); ok {
				p.Description = d
			}
		}
		params = append(params, p)
	}

	sort.Slice(params, func(i, j int) bool {
		if params[i].Required != params[j].Required {
			return params[i].Required
		}
		return params[i].Name < params[j].Name
	})

	return params
}

func generateMarkdown(tools []mcplib.Tool) string {
	var sb strings.Builder

	sb.WriteString("<!-- This file is auto-generated. Do not edit manually. -->\n")
	sb.WriteString("<!-- Run 'go run ./cmd/generate-tools-doc' to regenerate. -->\n\n")

	sb.WriteString("# Available Tools\n\n")
	sb.WriteString("This MCP server exposes the following tools for querying Datadog metrics:\n\n")

	for i := range tools {
		tool := &tools[i]
		sb.WriteString(fmt.Sprintf("## `%s`\n\n", tool.Name))

		paragraphs := strings.Split(strings.TrimSpace(tool.Description), "\n\n")
		sb.WriteString(fmt.Sprintf("> %s\n\n", strings.TrimSpace(paragraphs[0])))

		params := extractParams(tool)
		if len(params) == 0 {
			sb.WriteString("_No parameters._\n\n")
			continue
		}

		sb.WriteString("| Parameter | Type | Required | Description |\n")
		sb.WriteString("| :-------- | :--- | :------: | :---------- |\n")
		for _, p := range params {
			required := ""
			if p.Required {
				required = "yes"
			}
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s |\n",
				p.Name, p.Type, required, strings.ReplaceAll(p.Description, "\n", " ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
