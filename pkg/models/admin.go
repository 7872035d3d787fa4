package models

// Admin documents are small operator-owned records kept alongside the log.
// Each kind has a fixed schema; unknown fields are rejected on write.

// AdminKind names a typed admin document.
type AdminKind string

const (
	AdminErrors        AdminKind = "errors"
	AdminTests         AdminKind = "tests"
	AdminPersonalTasks AdminKind = "personal-tasks"
	AdminSkills        AdminKind = "skills"
	AdminConfig        AdminKind = "config"
	AdminFeatureFlags  AdminKind = "feature-flags"
)

var adminKinds = map[AdminKind]struct{}{
	AdminErrors: {}, AdminTests: {}, AdminPersonalTasks: {},
	AdminSkills: {}, AdminConfig: {}, AdminFeatureFlags: {},
}

func (k AdminKind) Valid() bool {
	_, ok := adminKinds[k]
	return ok
}

// ErrorNote is a single operator-recorded incident.
type ErrorNote struct {
	At      string `json:"at,omitempty"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
}

type ErrorsDoc struct {
	Notes []ErrorNote `json:"notes"`
}

// TestCase is a scripted conversational check an operator can replay.
type TestCase struct {
	Name     string `json:"name"`
	Input    string `json:"input"`
	Expected string `json:"expected,omitempty"`
}

type TestsDoc struct {
	Cases []TestCase `json:"cases"`
}

type PersonalTask struct {
	Title string `json:"title"`
	Done  bool   `json:"done,omitempty"`
	Due   string `json:"due,omitempty"`
}

type PersonalTasksDoc struct {
	Tasks []PersonalTask `json:"tasks"`
}

type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

type SkillsDoc struct {
	Skills []Skill `json:"skills"`
}

// ConfigDoc holds runtime overrides that take precedence over static
// configuration but below explicit request parameters.
type ConfigDoc struct {
	MergeWindowSeconds int `json:"merge_window_seconds,omitempty"`
	KeepLive           int `json:"keep_live,omitempty"`
	MaxPerRun          int `json:"max_per_run,omitempty"`
}

type FeatureFlagsDoc struct {
	Flags map[string]bool `json:"flags"`
}
