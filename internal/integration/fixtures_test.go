package integration

import (
	"path/filepath"
	"testing"

	"gemcook/internal/testutil"
)

const gemspecHeader = "#\n# Copyright 2015, Noah Kantrowitz\n#\n\n"

func test1Gem() testutil.Gem {
	return testutil.Gem{
		Name:         "test1",
		Version:      "1.2.3",
		Summary:      "A test gem",
		Authors:      []string{"Noah Kantrowitz"},
		Email:        []string{"noah@coderanger.net"},
		Licenses:     []string{"Apache 2.0"},
		Dependencies: []testutil.GemDependency{{Name: "halite", Requirements: []string{"~> 1.0"}}},
		Files: map[string]string{
			"lib/test1.rb":         "require 'test1/version'\n\nmodule Test1\n  def self.hello\n    \"hello from #{VERSION}\"\n  end\nend\n",
			"lib/test1/version.rb": "module Test1\n  VERSION = '1.2.3'\nend\n",
			"test1.gemspec":        gemspecHeader + "Gem::Specification.new do |spec|\nend\n",
		},
	}
}

func test2Gem() testutil.Gem {
	return testutil.Gem{
		Name:        "test2",
		Version:     "4.5.6",
		Description: "Depends on test1",
		Homepage:    "https://github.com/example/test2",
		Dependencies: []testutil.GemDependency{
			{Name: "halite", Requirements: []string{"~> 1.0"}},
			{Name: "test1", Requirements: []string{"~> 1.0"}},
			{Name: "rspec", Type: "development", Requirements: []string{"~> 3.0"}},
		},
		Files: map[string]string{
			"lib/test2.rb":            "require 'test1'\nrequire 'test2/version'\n\nmodule Test2\n  def self.greeting\n    Test1.hello\n  end\nend\n",
			"lib/test2/version.rb":    "module Test2\n  VERSION = '4.5.6'\nend\n",
			"chef/recipes/default.rb": "log Test2.greeting\n",
			"README.md":               "# test2\n\nAn example cookbook.\n",
			"LICENSE":                 "Apache 2.0\n",
		},
	}
}

func test3Gem() testutil.Gem {
	return testutil.Gem{
		Name:         "test3",
		Version:      "2.3.1.rc.1",
		Requirements: []string{"apt"},
		Metadata: map[string]string{
			"halite_entry_point":  "test3/dsl",
			"halite_dependencies": "ntp ~> 1.2, yum",
		},
		Dependencies: []testutil.GemDependency{
			{Name: "halite", Requirements: []string{"~> 1.0"}},
			{Name: "test2", Requirements: []string{"~> 4.5.1"}},
			{Name: "rake"},
		},
		Files: map[string]string{
			"lib/test3/dsl.rb":     "require 'test2'\nrequire 'test3/version'\n",
			"lib/test3/version.rb": "module Test3\n  VERSION = '2.3.1.rc.1'\nend\n",
		},
	}
}

func mygemGem() testutil.Gem {
	return testutil.Gem{
		Name:         "mygem",
		Version:      "1.0.0",
		Dependencies: []testutil.GemDependency{{Name: "halite"}},
		Files: map[string]string{
			"lib/mygem.rb":         "require 'mygem/version'\n",
			"lib/mygem/version.rb": "VERSION = '1.0.0'\n",
		},
	}
}

func rakeGem() testutil.Gem {
	return testutil.Gem{
		Name:    "rake",
		Version: "10.4.2",
		Files:   map[string]string{"lib/rake.rb": "module Rake\nend\n"},
	}
}

// gemHome installs test1 and rake into a GEM_HOME tree and leaves test2 and
// test3 as cached archives.
func gemHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	testutil.InstallGem(t, home, test1Gem())
	testutil.InstallGem(t, home, rakeGem())
	testutil.BuildGemArchive(t, filepath.Join(home, "cache"), test2Gem())
	testutil.BuildGemArchive(t, filepath.Join(home, "cache"), test3Gem())
	return home
}
