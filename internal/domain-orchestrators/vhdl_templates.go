package orchestrators

import (
	"fmt"
	"os"
	"path/filepath"
)

// vhdlSnippets are the per-module files the VHDL producer publishes in
// a menu distribution.
var vhdlSnippets = []string{
	"algo_index.vhd",
	"gtl_module_instances.vhd",
	"gtl_module_signals.vhd",
	"ugt_constants.vhd",
}

// snippetReplaceMap reads the fetched snippet files into a placeholder
// map keyed by the markers the firmware templates carry.
func snippetReplaceMap(snippetsDir string) (map[string]string, error) {
	markers := map[string]string{
		"{{algo_index}}":           "algo_index.vhd",
		"{{ugt_constants}}":        "ugt_constants.vhd",
		"{{gtl_module_signals}}":   "gtl_module_signals.vhd",
		"{{gtl_module_instances}}": "gtl_module_instances.vhd",
	}
	replace := make(map[string]string, len(markers))
	for marker, name := range markers {
		//nolint:gosec // G304: snippet files were fetched into the work area
		data, err := os.ReadFile(filepath.Join(snippetsDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read snippet %s: %w", name, err)
		}
		replace[marker] = string(data)
	}
	return replace, nil
}

// spliceVHDLTemplates renders the three algorithm-bearing firmware
// templates with the module's snippets: without this step a build
// carries no menu algorithms at all. srcFwDir is the checked out ugt
// firmware directory, destDir receives the rendered per-module files.
func spliceVHDLTemplates(renderer TemplateRenderer, srcFwDir, snippetsDir, destDir string) error {
	replace, err := snippetReplaceMap(snippetsDir)
	if err != nil {
		return err
	}

	targets := []struct {
		template string
		output   string
	}{
		{filepath.Join(srcFwDir, "hdl", "payload", "fdl", "algo_mapping_rop_tpl.vhd"), filepath.Join(destDir, "algo_mapping_rop.vhd")},
		{filepath.Join(srcFwDir, "hdl", "packages", "fdl_pkg_tpl.vhd"), filepath.Join(destDir, "fdl_pkg.vhd")},
		{filepath.Join(srcFwDir, "hdl", "payload", "gtl_module_tpl.vhd"), filepath.Join(destDir, "gtl_module.vhd")},
	}
	for _, t := range targets {
		if err := renderer.RenderVHDLFile(t.template, t.output, replace); err != nil {
			return err
		}
	}
	return nil
}
