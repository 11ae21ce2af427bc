// Package emit renders TypeScript declaration files and GraalJS binding
// files for every type in a resolved graph.
package emit

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/tsgen/filter"
	"github.com/dhamidi/tsgen/graph"
	"github.com/dhamidi/tsgen/java"
	"github.com/dhamidi/tsgen/tsmap"
)

var log = commonlog.GetLogger("tsgen.emit")

const (
	DeclarationExt = ".d.ts"
	BindingExt     = ".js"
)

type Options struct {
	ExportDir string
	SafeNames map[string]string
}

type Emitter struct {
	graph     *graph.Graph
	mapper    *tsmap.Mapper
	blacklist *filter.Blacklist
	opts      Options
}

// New returns an emitter over g. The mapper is narrowed to g so that only
// emitted types are named.
func New(g *graph.Graph, mapper *tsmap.Mapper, blacklist *filter.Blacklist, opts Options) *Emitter {
	return &Emitter{
		graph:     g,
		mapper:    mapper.WithGraph(g),
		blacklist: blacklist,
		opts:      opts,
	}
}

func (e *Emitter) safeName(name string) string {
	if renamed, ok := e.opts.SafeNames[name]; ok {
		return renamed
	}
	return name
}

// FileName is the renamed simple name used for the type's files and its
// declared class.
func (e *Emitter) FileName(td *java.TypeDescriptor) string {
	return e.mapper.ClassName(td.SimpleName)
}

func (e *Emitter) path(td *java.TypeDescriptor, ext string) string {
	dir := filepath.FromSlash(strings.ReplaceAll(td.Package, ".", "/"))
	return filepath.Join(e.opts.ExportDir, dir, e.FileName(td)+ext)
}

func (e *Emitter) DeclarationPath(td *java.TypeDescriptor) string {
	return e.path(td, DeclarationExt)
}

func (e *Emitter) BindingPath(td *java.TypeDescriptor) string {
	return e.path(td, BindingExt)
}

// Declaration renders the full .d.ts source: imports, a blank line, then
// the class declaration.
func (e *Emitter) Declaration(td *java.TypeDescriptor) string {
	return e.Imports(td) + "\n\n" + e.ClassDeclaration(td)
}

// Binding renders the .js source that resolves the declared name to the
// host class at runtime.
func (e *Emitter) Binding(td *java.TypeDescriptor) string {
	return "export default " + e.FileName(td) + " = Java.type('" + td.Name + "');"
}

type importEntry struct {
	pkg  string
	name string
}

// Imports lists one import per emitted type the declaration refers to,
// ordered by package and then name.
func (e *Emitter) Imports(td *java.TypeDescriptor) string {
	var entries []importEntry
	for _, ref := range graph.DirectReferences(td, e.blacklist) {
		if ref == td.Name {
			continue
		}
		target := e.graph.Get(ref)
		if target == nil {
			continue
		}
		entries = append(entries, importEntry{pkg: target.Package, name: e.FileName(target)})
	}
	slices.SortFunc(entries, func(a, b importEntry) int {
		return cmp.Or(strings.Compare(a.pkg, b.pkg), strings.Compare(a.name, b.name))
	})

	var sb strings.Builder
	for _, entry := range entries {
		sb.WriteString("import { ")
		sb.WriteString(entry.name)
		sb.WriteString(" } from '")
		sb.WriteString(ImportPath(td.Package, entry.pkg, entry.name))
		sb.WriteString("';\n")
	}
	return sb.String()
}

// ImportPath computes the module path from a declaration in package from
// to the declaration of name in package to. A target at or below the
// current package directory gets a ./ path; anything else climbs to the
// export root with one ../ per segment of from.
func ImportPath(from, to, name string) string {
	base := strings.ReplaceAll(from, ".", "/")
	target := strings.ReplaceAll(to, ".", "/")
	if base == target {
		return "./" + name
	}
	if rel, ok := strings.CutPrefix(target, base+"/"); ok && base != "" {
		return "./" + rel + "/" + name
	}
	up := 0
	if from != "" {
		up = strings.Count(from, ".") + 1
	}
	return strings.Repeat("../", up) + target + "/" + name
}

// ClassDeclaration renders the kind marker, header and member lines.
func (e *Emitter) ClassDeclaration(td *java.TypeDescriptor) string {
	var sb strings.Builder
	switch td.Kind {
	case java.KindEnum:
		sb.WriteString("/* Enum */\n")
	case java.KindInterface:
		sb.WriteString("/* Interface */\n")
	case java.KindAnnotation:
		sb.WriteString("/* Annotation */\n")
	}

	name := e.FileName(td)
	sb.WriteString("export declare class ")
	sb.WriteString(name)
	if td.SuperClass != nil && e.mapper.IsAdmitted(td.SuperClass.Name) {
		sb.WriteString(" implements ")
		sb.WriteString(e.mapper.Map(*td.SuperClass))
	}

	body := e.body(td, name)
	if body == "" {
		sb.WriteString(" {}\n\n")
		return sb.String()
	}
	sb.WriteString(" {\n")
	sb.WriteString(body)
	sb.WriteString("}\n\n")
	return sb.String()
}

func (e *Emitter) body(td *java.TypeDescriptor, name string) string {
	var sb strings.Builder

	if td.Kind == java.KindEnum {
		for _, constant := range td.EnumConstants {
			sb.WriteString("\tpublic static get " + constant + "(): " + name + "\n")
		}
	}

	ctors := e.allowed(td.PublicConstructors())
	slices.SortStableFunc(ctors, byNameAndArity)
	for _, c := range ctors {
		sb.WriteString("\tconstructor(" + e.parameters(c.Parameters) + ");\n")
	}

	var statics, instance []java.MemberSignature
	for _, m := range e.allowed(td.PublicMethods()) {
		if m.IsStatic {
			statics = append(statics, m)
		} else {
			instance = append(instance, m)
		}
	}
	if td.Companion != nil {
		statics = append(statics, e.allowed(td.Companion.PublicMethods())...)
	}
	slices.SortStableFunc(statics, byNameAndArity)
	slices.SortStableFunc(instance, byNameAndArity)

	for _, m := range statics {
		sb.WriteString("\tpublic static " + e.method(m) + "\n")
	}
	for _, m := range instance {
		sb.WriteString("\tpublic " + e.method(m) + "\n")
	}
	return sb.String()
}

func (e *Emitter) allowed(members []java.MemberSignature) []java.MemberSignature {
	out := make([]java.MemberSignature, 0, len(members))
	for _, m := range members {
		if !e.blacklist.Matches(m.Name) {
			out = append(out, m)
		}
	}
	return out
}

func byNameAndArity(a, b java.MemberSignature) int {
	return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(len(a.Parameters), len(b.Parameters)))
}

func (e *Emitter) method(m java.MemberSignature) string {
	ret := "void"
	if m.ReturnType != nil {
		ret = e.mapper.Map(*m.ReturnType)
	}
	return e.safeName(m.Name) + "(" + e.parameters(m.Parameters) + "): " + ret + ";"
}

func (e *Emitter) parameters(params []java.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		optional := ""
		if p.Optional {
			optional = "?"
		}
		parts[i] = e.safeName(p.Name) + optional + ": " + e.mapper.Map(p.Type)
	}
	return strings.Join(parts, ", ")
}

// WriteDeclarations writes one .d.ts per type in the graph and returns
// how many were written.
func (e *Emitter) WriteDeclarations() (int, error) {
	return e.writeAll(DeclarationExt, e.Declaration)
}

// WriteBindings writes one .js per type in the graph.
func (e *Emitter) WriteBindings() (int, error) {
	return e.writeAll(BindingExt, e.Binding)
}

func (e *Emitter) writeAll(ext string, render func(*java.TypeDescriptor) string) (int, error) {
	count := 0
	for _, td := range e.graph.Sorted() {
		path := e.path(td, ext)
		if err := writeFile(path, render(td)); err != nil {
			return count, errors.Wrapf(err, "write %s", td.Name)
		}
		log.Infof("%s -> %s", td.Name, path)
		count++
	}
	return count, nil
}

// writeFile replaces path with content, creating parent directories.
func writeFile(path, content string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
