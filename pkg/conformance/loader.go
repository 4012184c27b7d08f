package conformance

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed suites/*.yaml
var builtinSuites embed.FS

// LoadedTest is a case together with the suite and file it came from
type LoadedTest struct {
	File  string
	Suite *TestSuite
	Test  TestCase
}

// ID names a test as file/case
func (t LoadedTest) ID() string {
	return t.File + "/" + t.Test.Name
}

// LoadBuiltin loads the suites compiled into the binary
func LoadBuiltin() ([]LoadedTest, error) {
	return LoadFS(builtinSuites, "suites")
}

// LoadDir loads every .yaml and .yml file below dir
func LoadDir(dir string) ([]LoadedTest, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read conformance directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS loads suites from fsys below root. Files are visited in lexical
// order so that runs are reproducible.
func LoadFS(fsys fs.FS, root string) ([]LoadedTest, error) {
	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch path.Ext(p) {
		case ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", root)
	}
	sort.Strings(files)

	var loaded []LoadedTest
	for _, file := range files {
		suite, err := loadSuite(fsys, file)
		if err != nil {
			return nil, err
		}
		rel := file
		if root != "." {
			rel = file[len(root)+1:]
		}
		for _, test := range suite.Tests {
			loaded = append(loaded, LoadedTest{
				File:  rel,
				Suite: suite,
				Test:  test,
			})
		}
	}
	return loaded, nil
}

func loadSuite(fsys fs.FS, file string) (*TestSuite, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", file)
	}
	suite := &TestSuite{}
	if err := yaml.Unmarshal(data, suite); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", file)
	}
	if suite.Name == "" {
		return nil, errors.Errorf("%s: suite has no name", file)
	}
	seen := map[string]bool{}
	for i, test := range suite.Tests {
		if test.Name == "" {
			return nil, errors.Errorf("%s: test #%d has no name", file, i+1)
		}
		if seen[test.Name] {
			return nil, errors.Errorf("%s: duplicate test %q", file, test.Name)
		}
		seen[test.Name] = true
	}
	return suite, nil
}
