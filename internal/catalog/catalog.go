// Package catalog loads the versioned challenge, achievement, learning path and
// assessment tables.
//
// The embedded catalog.yaml is the default; CATALOG_PATH points at a
// replacement file with the same schema.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/practice-backend/internal/domain/rewards"
)

const catalogPathEnv = "CATALOG_PATH"

const supportedVersion = 1

//go:embed catalog.yaml
var catalogFS embed.FS

type AchievementKind string

const (
	KindFirstChallenge AchievementKind = "first_challenge"
	KindStreak         AchievementKind = "streak"
	KindPoints         AchievementKind = "points"
	KindManual         AchievementKind = "manual"
)

type Challenge struct {
	ID          string                `yaml:"id" json:"id"`
	Title       string                `yaml:"title" json:"title"`
	Description string                `yaml:"description" json:"description"`
	Tool        string                `yaml:"tool" json:"tool"`
	Requirement int                   `yaml:"requirement" json:"requirement"`
	Points      int                   `yaml:"points" json:"points"`
	Type        rewards.ChallengeType `yaml:"type" json:"type"`
}

type Achievement struct {
	ID          string          `yaml:"id" json:"id"`
	Title       string          `yaml:"title" json:"title"`
	Description string          `yaml:"description" json:"description"`
	Icon        string          `yaml:"icon" json:"icon"`
	Points      int             `yaml:"points" json:"points"`
	Kind        AchievementKind `yaml:"kind" json:"kind"`
	Threshold   int             `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

type PathTool struct {
	Name                string   `yaml:"name" json:"name"`
	MinimumPracticeTime int      `yaml:"minimum_practice_time" json:"minimum_practice_time"`
	Requirements        []string `yaml:"requirements" json:"requirements"`
}

type Stage struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Tools       []PathTool `yaml:"tools" json:"tools"`
}

// Path is an ordered list of stages.
type Path struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Stages      []Stage `yaml:"stages" json:"stages"`
}

type Question struct {
	Type       string `yaml:"type" json:"type"`
	Difficulty string `yaml:"difficulty" json:"difficulty"`
	Points     int    `yaml:"points" json:"points"`
}

type AssessmentType struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Questions   []Question `yaml:"questions" json:"questions"`
}

// MaxScore is the sum of question points.
func (a AssessmentType) MaxScore() int {
	total := 0
	for _, q := range a.Questions {
		total += q.Points
	}
	return total
}

type yamlCatalog struct {
	Catalog      string           `yaml:"catalog"`
	Version      int              `yaml:"version"`
	Challenges   []Challenge      `yaml:"challenges"`
	Achievements []Achievement    `yaml:"achievements"`
	Paths        []Path           `yaml:"paths"`
	Assessments  []AssessmentType `yaml:"assessments"`
	Tools        map[string]int   `yaml:"tools"`
}

// Catalog is immutable after Load.
type Catalog struct {
	Version       int
	challenges    []Challenge
	challengeIdx  map[string]int
	achievements  []Achievement
	achieveIdx    map[string]int
	paths         []Path
	pathIdx       map[string]int
	stagePath     map[string]string
	assessments   []AssessmentType
	assessmentIdx map[string]int
	tools         map[string]int
}

// Load reads CATALOG_PATH when set, otherwise the embedded default.
func Load() (*Catalog, error) {
	data, err := readCatalog()
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Default returns the embedded catalog. It panics if the embedded file is invalid.
func Default() *Catalog {
	data, err := catalogFS.ReadFile("catalog.yaml")
	if err != nil {
		panic(fmt.Sprintf("catalog: read embedded: %v", err))
	}
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("catalog: parse embedded: %v", err))
	}
	return c
}

func readCatalog() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(catalogPathEnv)); path != "" {
		return os.ReadFile(path)
	}
	return catalogFS.ReadFile("catalog.yaml")
}

func Parse(data []byte) (*Catalog, error) {
	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := validate(&raw); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c := &Catalog{
		Version:       raw.Version,
		challenges:    raw.Challenges,
		challengeIdx:  make(map[string]int, len(raw.Challenges)),
		achievements:  raw.Achievements,
		achieveIdx:    make(map[string]int, len(raw.Achievements)),
		paths:         raw.Paths,
		pathIdx:       make(map[string]int, len(raw.Paths)),
		stagePath:     map[string]string{},
		assessments:   raw.Assessments,
		assessmentIdx: make(map[string]int, len(raw.Assessments)),
		tools:         make(map[string]int, len(raw.Tools)),
	}
	for i, ch := range raw.Challenges {
		c.challengeIdx[ch.ID] = i
	}
	for i, a := range raw.Achievements {
		c.achieveIdx[a.ID] = i
	}
	for i, p := range raw.Paths {
		c.pathIdx[p.ID] = i
		for _, st := range p.Stages {
			c.stagePath[st.ID] = p.ID
		}
	}
	for i, a := range raw.Assessments {
		c.assessmentIdx[a.ID] = i
	}
	for k, v := range raw.Tools {
		c.tools[k] = v
	}
	return c, nil
}

func validate(raw *yamlCatalog) error {
	if raw == nil {
		return errors.New("missing catalog")
	}
	if strings.TrimSpace(raw.Catalog) != "practice" {
		return fmt.Errorf("unexpected catalog: %q", raw.Catalog)
	}
	if raw.Version != supportedVersion {
		return fmt.Errorf("unsupported version %d", raw.Version)
	}
	if len(raw.Challenges) == 0 {
		return errors.New("no challenges defined")
	}
	seen := map[string]bool{}
	for _, ch := range raw.Challenges {
		id := strings.TrimSpace(ch.ID)
		if id == "" {
			return errors.New("challenge id is required")
		}
		if seen[id] {
			return fmt.Errorf("duplicate challenge id: %s", id)
		}
		seen[id] = true
		if strings.TrimSpace(ch.Title) == "" || strings.TrimSpace(ch.Tool) == "" {
			return fmt.Errorf("challenge %s: title and tool are required", id)
		}
		if ch.Requirement <= 0 {
			return fmt.Errorf("challenge %s: requirement must be > 0", id)
		}
		if ch.Points < 0 {
			return fmt.Errorf("challenge %s: points must be >= 0", id)
		}
		switch ch.Type {
		case rewards.ChallengeAccuracy, rewards.ChallengeDuration, rewards.ChallengeCompletion:
		default:
			return fmt.Errorf("challenge %s: unknown type %q", id, ch.Type)
		}
	}
	seen = map[string]bool{}
	for _, a := range raw.Achievements {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			return errors.New("achievement id is required")
		}
		if seen[id] {
			return fmt.Errorf("duplicate achievement id: %s", id)
		}
		seen[id] = true
		if a.Points < 0 {
			return fmt.Errorf("achievement %s: points must be >= 0", id)
		}
		switch a.Kind {
		case KindFirstChallenge, KindManual:
		case KindStreak, KindPoints:
			if a.Threshold <= 0 {
				return fmt.Errorf("achievement %s: %s threshold must be > 0", id, a.Kind)
			}
		default:
			return fmt.Errorf("achievement %s: unknown kind %q", id, a.Kind)
		}
	}
	if err := validatePaths(raw.Paths); err != nil {
		return err
	}
	if err := validateAssessments(raw.Assessments); err != nil {
		return err
	}
	for tool, minutes := range raw.Tools {
		if strings.TrimSpace(tool) == "" || minutes <= 0 {
			return fmt.Errorf("tool %q: default minutes must be > 0", tool)
		}
	}
	return nil
}

// validatePaths requires stage ids to be unique across all paths; completed stages
// are stored by stage id alone.
func validatePaths(paths []Path) error {
	seen := map[string]bool{}
	stages := map[string]bool{}
	for _, p := range paths {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return errors.New("path id is required")
		}
		if seen[id] {
			return fmt.Errorf("duplicate path id: %s", id)
		}
		seen[id] = true
		if len(p.Stages) == 0 {
			return fmt.Errorf("path %s: at least one stage is required", id)
		}
		for _, st := range p.Stages {
			sid := strings.TrimSpace(st.ID)
			if sid == "" {
				return fmt.Errorf("path %s: stage id is required", id)
			}
			if stages[sid] {
				return fmt.Errorf("duplicate stage id: %s", sid)
			}
			stages[sid] = true
			for _, tool := range st.Tools {
				if strings.TrimSpace(tool.Name) == "" || tool.MinimumPracticeTime < 0 {
					return fmt.Errorf("stage %s: tool name is required and minimum_practice_time must be >= 0", sid)
				}
			}
		}
	}
	return nil
}

func validateAssessments(defs []AssessmentType) error {
	seen := map[string]bool{}
	for _, a := range defs {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			return errors.New("assessment id is required")
		}
		if seen[id] {
			return fmt.Errorf("duplicate assessment id: %s", id)
		}
		seen[id] = true
		if len(a.Questions) == 0 {
			return fmt.Errorf("assessment %s: at least one question is required", id)
		}
		for _, q := range a.Questions {
			if strings.TrimSpace(q.Type) == "" || q.Points <= 0 {
				return fmt.Errorf("assessment %s: question type is required and points must be > 0", id)
			}
		}
	}
	return nil
}

// Challenges returns the challenge table in file order.
func (c *Catalog) Challenges() []Challenge {
	out := make([]Challenge, len(c.challenges))
	copy(out, c.challenges)
	return out
}

func (c *Catalog) Challenge(id string) (Challenge, bool) {
	i, ok := c.challengeIdx[id]
	if !ok {
		return Challenge{}, false
	}
	return c.challenges[i], true
}

func (c *Catalog) Achievements() []Achievement {
	out := make([]Achievement, len(c.achievements))
	copy(out, c.achievements)
	return out
}

func (c *Catalog) Achievement(id string) (Achievement, bool) {
	i, ok := c.achieveIdx[id]
	if !ok {
		return Achievement{}, false
	}
	return c.achievements[i], true
}

// AchievementsOfKind returns achievements of kind ordered by ascending threshold.
func (c *Catalog) AchievementsOfKind(kind AchievementKind) []Achievement {
	var out []Achievement
	for _, a := range c.achievements {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}

func (c *Catalog) Paths() []Path {
	out := make([]Path, len(c.paths))
	copy(out, c.paths)
	return out
}

func (c *Catalog) Path(id string) (Path, bool) {
	i, ok := c.pathIdx[id]
	if !ok {
		return Path{}, false
	}
	return c.paths[i], true
}

// StagePath returns the id of the path that owns stageID.
func (c *Catalog) StagePath(stageID string) (string, bool) {
	p, ok := c.stagePath[stageID]
	return p, ok
}

func (c *Catalog) AssessmentTypes() []AssessmentType {
	out := make([]AssessmentType, len(c.assessments))
	copy(out, c.assessments)
	return out
}

func (c *Catalog) AssessmentType(id string) (AssessmentType, bool) {
	i, ok := c.assessmentIdx[id]
	if !ok {
		return AssessmentType{}, false
	}
	return c.assessments[i], true
}

// ToolMinutes returns the default routine-step minutes for tool.
func (c *Catalog) ToolMinutes(tool string) (int, bool) {
	m, ok := c.tools[tool]
	return m, ok
}

// NewDailyChallenge materializes a catalog entry for a user.
func (ch Challenge) NewDailyChallenge(base rewards.DailyChallenge) *rewards.DailyChallenge {
	base.CatalogID = ch.ID
	base.Type = ch.Type
	base.Title = ch.Title
	base.Description = ch.Description
	base.Tool = ch.Tool
	base.Requirement = ch.Requirement
	base.Points = ch.Points
	base.Progress = 0
	base.Completed = false
	base.CompletedAt = nil
	return &base
}
