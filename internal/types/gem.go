package types

// Well-known names shared by every converted cookbook. They form a runtime
// contract between independently converted gems and must not change.
const (
	// MarkerGem is the gem a cookbook gem depends on to identify itself.
	MarkerGem = "halite"
	// GuardFlag is the environment variable consulted by the load guards.
	GuardFlag = "HALITE_LOAD"

	MetadataName         = "halite_name"
	MetadataEntryPoint   = "halite_entry_point"
	MetadataDependencies = "halite_dependencies"
	MetadataChefVersion  = "halite_chef_version"
	MetadataIgnore       = "halite_ignore"
	MetadataIssuesURL    = "issues_url"

	// SourceExt is the extension of library files and load targets.
	SourceExt = ".rb"
	// DefaultChefVersion is emitted when a gem does not declare one.
	DefaultChefVersion = "~> 12"
)

// GemSpec is the subset of a Gem::Specification the converter reads.
type GemSpec struct {
	Name         string
	Version      string
	Summary      string
	Description  string
	Authors      []string
	Email        []string
	Homepage     string
	Licenses     []string
	Metadata     map[string]string
	Requirements []string
	RequirePaths []string
	Dependencies []GemDependency
}

// FullName is the RubyGems "name-version" directory name.
func (s GemSpec) FullName() string {
	return s.Name + "-" + s.Version
}

// GemDependency is a dependency declared in a gemspec. Requirements holds
// raw host requirements such as "~> 1.0"; empty means ">= 0".
type GemDependency struct {
	Name         string
	Type         GemDependencyType
	Requirements []string
}

// RequirementList returns the requirements with the RubyGems default
// applied.
func (d GemDependency) RequirementList() []string {
	if len(d.Requirements) == 0 {
		return []string{DefaultConstraint.String()}
	}
	return append([]string(nil), d.Requirements...)
}
