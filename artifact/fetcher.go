// Package artifact downloads Maven artifacts into the plugins folder so
// they can be loaded like any other archive.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-getter"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("tsgen.artifact")

const (
	DefaultMavenRepoURL = "https://repo1.maven.org/maven2"
	EnvMavenRepoURL     = "MAVEN_REPO_URL"
)

var ErrInvalidCoordinate = errors.New("invalid Maven coordinate")

type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
}

// ParseCoordinate accepts group:artifact:version and
// group:artifact:version:classifier.
func ParseCoordinate(coord string) (Coordinate, error) {
	parts := strings.Split(coord, ":")
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, errors.Wrapf(ErrInvalidCoordinate, "%q", coord)
		}
	}
	switch len(parts) {
	case 3:
		return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
	case 4:
		return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2], Classifier: parts[3]}, nil
	}
	return Coordinate{}, errors.Wrapf(ErrInvalidCoordinate,
		"%q (expected groupId:artifactId:version[:classifier])", coord)
}

func (c Coordinate) String() string {
	s := c.GroupID + ":" + c.ArtifactID + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	return s
}

func (c Coordinate) FileName() string {
	if c.Classifier != "" {
		return fmt.Sprintf("%s-%s-%s.jar", c.ArtifactID, c.Version, c.Classifier)
	}
	return fmt.Sprintf("%s-%s.jar", c.ArtifactID, c.Version)
}

// Path is the repository-relative location of the jar.
func (c Coordinate) Path() string {
	groupPath := strings.ReplaceAll(c.GroupID, ".", "/")
	return groupPath + "/" + c.ArtifactID + "/" + c.Version + "/" + c.FileName()
}

type Fetcher struct {
	RepoURL string
	Dir     string
}

// NewFetcher downloads into dir from repoURL, falling back to
// MAVEN_REPO_URL and then Maven Central when repoURL is empty.
func NewFetcher(repoURL, dir string) *Fetcher {
	if repoURL == "" {
		repoURL = os.Getenv(EnvMavenRepoURL)
	}
	if repoURL == "" {
		repoURL = DefaultMavenRepoURL
	}
	return &Fetcher{
		RepoURL: strings.TrimSuffix(repoURL, "/"),
		Dir:     dir,
	}
}

func (f *Fetcher) JarURL(c Coordinate) string {
	return f.RepoURL + "/" + c.Path()
}

// Fetch makes sure the jar for c is present in the target folder and
// returns its path. An existing file is not downloaded again.
func (f *Fetcher) Fetch(ctx context.Context, c Coordinate) (string, bool, error) {
	dest := filepath.Join(f.Dir, c.FileName())
	if info, err := os.Stat(dest); err == nil && !info.IsDir() {
		log.Debugf("%s already present at %s", c, dest)
		return dest, false, nil
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", false, errors.Wrapf(err, "create %s", f.Dir)
	}

	part := dest + ".part"
	client := &getter.Client{
		Ctx:  ctx,
		Src:  f.JarURL(c),
		Dst:  part,
		Mode: getter.ClientModeFile,
		// Jars are zips; keep them as downloaded.
		Decompressors: map[string]getter.Decompressor{},
		Getters:       getter.Getters,
	}
	log.Infof("downloading %s from %s", c, client.Src)
	if err := client.Get(); err != nil {
		os.Remove(part)
		return "", false, errors.Wrapf(err, "download %s", c)
	}
	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return "", false, errors.Wrapf(err, "install %s", c)
	}
	return dest, true, nil
}

// FetchAll fetches every coordinate and returns the local paths in the
// order given. The first failure stops the run.
func (f *Fetcher) FetchAll(ctx context.Context, coords []string) ([]string, error) {
	paths := make([]string, 0, len(coords))
	for _, raw := range coords {
		c, err := ParseCoordinate(raw)
		if err != nil {
			return paths, err
		}
		path, _, err := f.Fetch(ctx, c)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
