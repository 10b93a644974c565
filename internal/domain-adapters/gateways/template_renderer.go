package gateways

import (
	"fmt"
	"os"
	"strings"
)

// TemplateRenderer substitutes {{placeholder}} keys in template files.
// The VHDL variant leaves comment lines untouched so that documentation
// mentioning a placeholder survives rendering.
type TemplateRenderer struct{}

// NewTemplateRenderer creates a new template renderer
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{}
}

// Render replaces every key of the map in content
func (t *TemplateRenderer) Render(content string, replace map[string]string) string {
	for needle, subst := range replace {
		content = strings.ReplaceAll(content, needle, subst)
	}
	return content
}

// RenderVHDL replaces keys line by line, skipping VHDL comments
func (t *TemplateRenderer) RenderVHDL(content string, replace map[string]string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		for needle, subst := range replace {
			lines[i] = strings.ReplaceAll(lines[i], needle, subst)
		}
	}
	return strings.Join(lines, "\n")
}

// RenderFile renders a template file to a destination file
func (t *TemplateRenderer) RenderFile(src, dst string, replace map[string]string) error {
	//nolint:gosec // G304: src is a template inside the firmware tree
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", src, err)
	}
	rendered := t.Render(string(content), replace)
	if err := os.WriteFile(dst, []byte(rendered), 0644); err != nil { //nolint:gosec // G306: generated sources are world readable
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

// RenderVHDLFile renders a VHDL template file, keeping comment lines as-is
func (t *TemplateRenderer) RenderVHDLFile(src, dst string, replace map[string]string) error {
	//nolint:gosec // G304: src is a template inside the firmware tree
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", src, err)
	}
	rendered := t.RenderVHDL(string(content), replace)
	if err := os.WriteFile(dst, []byte(rendered), 0644); err != nil { //nolint:gosec // G306: generated sources are world readable
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
