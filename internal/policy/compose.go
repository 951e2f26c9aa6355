package policy

import (
	"fmt"
	"path/filepath"
	"strings"

	"cid/internal/hints"
	"cid/internal/protocol"
)

// maxParamsShown truncates long parameter lists in the summary.
const maxParamsShown = 5

func header(path, lang string, mode Mode, reason string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Code Intelligence Summary: %s\n", filepath.Base(path))
	fmt.Fprintf(&b, "Language: %s | Mode: %s (%s)\n\n", lang, mode, reason)
	return b.String()
}

func trailer(path string) string {
	return fmt.Sprintf(
		"\n---\nThis summary replaced the raw file contents. For exact lines use a "+
			"bounded read of %s with an explicit offset/limit. Test files and other "+
			"allow-listed paths are always returned in full.\n", path)
}

func composeStructure(path, lang string, s *protocol.FileStructure, hint *hints.SessionHint) string {
	var b strings.Builder
	b.WriteString(header(path, lang, ModeStructure, "names and signatures"))
	writeStructureSections(&b, s)
	writeCrossFileUsage(&b, hint)
	b.WriteString(trailer(path))
	return b.String()
}

func composeContext(path, lang string, c *protocol.ContextResult, hint *hints.SessionHint) string {
	var b strings.Builder
	b.WriteString(header(path, lang, ModeContext, fmt.Sprintf("focused on %s, depth %d", c.Symbol, c.Depth)))

	fmt.Fprintf(&b, "## Focused Context: %s\n", c.Symbol)
	writeFunctions(&b, c.Functions)
	writeEdges(&b, c.Edges)
	if len(c.Callers) > 0 {
		b.WriteString("\n### Callers\n")
		for _, loc := range c.Callers {
			fmt.Fprintf(&b, "- %s:%d\n", loc.File, loc.Line)
		}
	}

	writeCrossFileUsage(&b, hint)
	b.WriteString(trailer(path))
	return b.String()
}

// composeExtract renders whatever layers succeeded and reports how many.
func composeExtract(path, lang string, e *protocol.ExtractResult, hint *hints.SessionHint) (string, int) {
	if e == nil {
		return "", 0
	}
	layers := 0
	var b strings.Builder
	b.WriteString(header(path, lang, ModeExtract, "full structural dump"))

	if !structureEmpty(e.Structure) {
		layers++
		writeStructureSections(&b, e.Structure)
	}
	if len(e.Edges) > 0 {
		layers++
		writeEdges(&b, e.Edges)
	}
	if len(e.ControlFlow) > 0 {
		layers++
		b.WriteString("\n## Control Flow\n")
		for _, f := range e.ControlFlow {
			fmt.Fprintf(&b, "- %s: %d blocks, %d edges, complexity %d\n",
				f.Function, f.Blocks, f.Edges, f.Complexity)
		}
	}
	if len(e.DataFlow) > 0 {
		layers++
		b.WriteString("\n## Data Flow\n")
		for _, d := range e.DataFlow {
			fmt.Fprintf(&b, "- %s: %d definition sites, %d use sites\n",
				d.Function, len(d.Defs), len(d.Uses))
		}
	}
	if len(e.Slices) > 0 {
		layers++
		b.WriteString("\n## Program Slices\n")
		for _, s := range e.Slices {
			fmt.Fprintf(&b, "- %s @%d (%s): %d lines, variables: %s\n",
				s.Function, s.Line, s.Direction, len(s.Lines), strings.Join(s.Variables, ", "))
		}
	}

	if layers == 0 {
		return "", 0
	}
	writeCrossFileUsage(&b, hint)
	b.WriteString(trailer(path))
	return b.String(), layers
}

func writeStructureSections(b *strings.Builder, s *protocol.FileStructure) {
	if s == nil {
		return
	}
	if len(s.Imports) > 0 {
		b.WriteString("## Imports\n")
		fmt.Fprintf(b, "%s\n", strings.Join(s.Imports, ", "))
	}
	writeFunctions(b, s.Functions)
	if len(s.Classes) > 0 {
		b.WriteString("\n## Classes\n")
		for _, c := range s.Classes {
			fmt.Fprintf(b, "- %s (line %d)", c.Name, c.Line)
			if len(c.Methods) > 0 {
				fmt.Fprintf(b, ": %s", strings.Join(c.Methods, ", "))
			}
			b.WriteString("\n")
		}
	}
}

func writeFunctions(b *strings.Builder, funcs []protocol.FunctionInfo) {
	if len(funcs) == 0 {
		return
	}
	b.WriteString("\n## Functions\n")
	for _, f := range funcs {
		params := f.Params
		truncated := ""
		if len(params) > maxParamsShown {
			params = params[:maxParamsShown]
			truncated = ", …"
		}
		fmt.Fprintf(b, "- %s(%s%s) (line %d)", f.Name, strings.Join(params, ", "), truncated, f.Line)
		if f.Doc != "" {
			fmt.Fprintf(b, " — %s", firstLine(f.Doc))
		}
		b.WriteString("\n")
	}
}

func writeEdges(b *strings.Builder, edges []protocol.CallEdge) {
	if len(edges) == 0 {
		return
	}
	b.WriteString("\n## Call Graph\n")
	for _, e := range edges {
		fmt.Fprintf(b, "- %s -> %s (%s:%d)\n", e.Caller, e.Callee, e.Site.File, e.Site.Line)
	}
}

// writeCrossFileUsage lists caller locations the hint carried from the
// upstream router's reference lookup.
func writeCrossFileUsage(b *strings.Builder, hint *hints.SessionHint) {
	if hint == nil || len(hint.References) == 0 {
		return
	}
	b.WriteString("\n## Cross-File Usage\n")
	for _, ref := range hint.References {
		fmt.Fprintf(b, "- %s:%d\n", ref.File, ref.Line)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
