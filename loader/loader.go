// Package loader reads type metadata out of jar and jmod archives. Class
// bytes are parsed, never executed.
package loader

import (
	"iter"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zip"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/tsgen/java"
)

var log = commonlog.GetLogger("tsgen.loader")

// anonymousClass matches anonymous and lambda classes such as Foo$1.
var anonymousClass = regexp.MustCompile(`\$[0-9]+`)

var DefaultPlatformPackages = []string{"java.", "javax.", "jdk.", "sun.", "kotlin."}

type Options struct {
	// PlatformPackages lists name prefixes the runtime provides. A supertype
	// under one of them that no archive contains is assumed present.
	PlatformPackages []string

	// MaxClassVersion rejects class files newer than this major version.
	// Zero disables the check.
	MaxClassVersion uint16
}

type located struct {
	archive *archive
	file    *zip.File
}

type result struct {
	td  *java.TypeDescriptor
	err error
}

// Archives is an open set of archives with a per-run metadata cache. It is
// not safe for concurrent use.
type Archives struct {
	archives []*archive
	index    map[string]located
	cache    map[string]result
	loading  map[string]bool
	opts     Options
}

// Open indexes the class entries of every archive. The first archive on
// the list wins when two contain the same class. Platform archives are
// consulted by Load but never enumerated.
func Open(seeds, platform []string, opts Options) (*Archives, error) {
	if opts.PlatformPackages == nil {
		opts.PlatformPackages = DefaultPlatformPackages
	}
	a := &Archives{
		index:   make(map[string]located),
		cache:   make(map[string]result),
		loading: make(map[string]bool),
		opts:    opts,
	}

	add := func(path string, seed bool) error {
		ar, err := openArchive(path, seed)
		if err != nil {
			return err
		}
		a.archives = append(a.archives, ar)
		count := 0
		for _, f := range ar.zip.File {
			name, ok := ar.className(f)
			if !ok {
				continue
			}
			if _, dup := a.index[name]; !dup {
				a.index[name] = located{archive: ar, file: f}
				count++
			}
		}
		log.Infof("indexed %d classes from %s", count, path)
		return nil
	}

	for _, path := range seeds {
		if err := add(path, true); err != nil {
			a.Close()
			return nil, err
		}
	}
	for _, path := range platform {
		if err := add(path, false); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *Archives) Close() error {
	var errs error
	for _, ar := range a.archives {
		errs = errors.CombineErrors(errs, ar.Close())
	}
	a.archives = nil
	return errs
}

// Len is the number of distinct classes across all archives.
func (a *Archives) Len() int {
	return len(a.index)
}

func (a *Archives) Contains(name string) bool {
	_, ok := a.index[name]
	return ok
}

// Enumerate yields every named class of the seed archives in archive
// order, once each. Anonymous and lambda classes are skipped. The sequence
// re-reads the archive directories on every iteration.
func (a *Archives) Enumerate() iter.Seq[java.ClassName] {
	return func(yield func(java.ClassName) bool) {
		seen := make(map[string]bool)
		for _, ar := range a.archives {
			if !ar.seed {
				continue
			}
			for _, f := range ar.zip.File {
				name, ok := ar.className(f)
				if !ok || seen[name] {
					continue
				}
				seen[name] = true
				cn := java.ParseClassName(name)
				if anonymousClass.MatchString(cn.Name) {
					continue
				}
				if !yield(cn) {
					return
				}
			}
		}
	}
}

func (a *Archives) isPlatform(name string) bool {
	for _, prefix := range a.opts.PlatformPackages {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Load returns the metadata for name. Results and failures are cached, so
// each name is read at most once per run.
func (a *Archives) Load(name string) (*java.TypeDescriptor, error) {
	if r, ok := a.cache[name]; ok {
		return r.td, r.err
	}
	if a.loading[name] {
		return nil, java.Incompatiblef("class circularity while loading %s", name)
	}

	a.loading[name] = true
	td, err := a.load(name)
	delete(a.loading, name)

	a.cache[name] = result{td: td, err: err}
	return td, err
}

func (a *Archives) load(name string) (*java.TypeDescriptor, error) {
	loc, ok := a.index[name]
	if !ok {
		return nil, java.NotFoundf("class %s not found in any archive", name)
	}

	rc, err := loc.file.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open %s in %s", loc.file.Name, loc.archive.path)
	}
	td, err := java.DescriptorFromReader(rc)
	rc.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s in %s", loc.file.Name, loc.archive.path)
	}

	if td.Name != name {
		return nil, java.NotFoundf("%s (wrong name: %s)", name, td.Name)
	}
	if limit := a.opts.MaxClassVersion; limit > 0 && td.MajorVersion > limit {
		return nil, errors.Newf("%s has unsupported class file version %d (max %d)", name, td.MajorVersion, limit)
	}

	super, err := a.supertype(name, td.SuperClass)
	if err != nil {
		return nil, err
	}
	if super != nil {
		if super.IsInterface() {
			return nil, java.Incompatiblef("class %s has interface %s as super class", name, super.Name)
		}
		if super.IsFinal {
			return nil, java.Incompatiblef("class %s cannot inherit from final class %s", name, super.Name)
		}
	}

	var ifaces []*java.TypeDescriptor
	for i := range td.Interfaces {
		iface, err := a.supertype(name, &td.Interfaces[i])
		if err != nil {
			return nil, err
		}
		if iface == nil {
			continue
		}
		if !iface.IsInterface() {
			return nil, java.Incompatiblef("class %s can not implement %s, because it is not an interface", name, iface.Name)
		}
		ifaces = append(ifaces, iface)
	}

	td.Inherited = inheritedMethods(td, super, ifaces)

	if !td.IsCompanion {
		companionName := name + "$Companion"
		if a.Contains(companionName) {
			companion, err := a.Load(companionName)
			if err != nil {
				log.Debugf("%s: ignoring companion: %s", name, err)
			} else {
				td.Companion = companion
			}
		}
	}

	return td, nil
}

// supertype loads a superclass or interface of owner. It returns nil
// without error for platform types that no archive provides.
func (a *Archives) supertype(owner string, ref *java.TypeRef) (*java.TypeDescriptor, error) {
	if ref == nil {
		return nil, nil
	}
	if !a.Contains(ref.Name) && a.isPlatform(ref.Name) {
		return nil, nil
	}
	td, err := a.Load(ref.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: load supertype %s", owner, ref.Name)
	}
	return td, nil
}

// inheritedMethods collects the public methods td inherits and does not
// redeclare: everything public on the superclass, then the instance
// methods of each interface. Static interface methods are not inherited.
func inheritedMethods(td, super *java.TypeDescriptor, ifaces []*java.TypeDescriptor) []java.MemberSignature {
	seen := make(map[string]bool, len(td.Methods))
	for _, m := range td.Methods {
		seen[m.OverrideKey()] = true
	}

	var out []java.MemberSignature
	add := func(m java.MemberSignature) {
		key := m.OverrideKey()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, m)
	}

	if super != nil {
		for _, m := range super.PublicMethods() {
			add(m)
		}
	}
	for _, iface := range ifaces {
		for _, m := range iface.PublicMethods() {
			if !m.IsStatic {
				add(m)
			}
		}
	}
	return out
}
