package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/helixtrack/core/internal/services"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Defaults is the built-in catalog: the usual statuses, ticket types,
// relationship types, access levels and one linear workflow.
//
//go:embed defaults.yaml
var Defaults []byte

// File is the YAML layout of a seed file
type File struct {
	TicketStatuses     []Entry            `yaml:"ticket_statuses"`
	TicketTypes        []Entry            `yaml:"ticket_types"`
	RelationshipTypes  []RelationshipType `yaml:"relationship_types"`
	PermissionContexts []Context          `yaml:"permission_contexts"`
	Permissions        []Permission       `yaml:"permissions"`
	Priorities         []Priority         `yaml:"priorities"`
	Resolutions        []Entry            `yaml:"resolutions"`
	ProjectRoles       []Role             `yaml:"project_roles"`
	Workflows          []Workflow         `yaml:"workflows"`
	Projects           []Project          `yaml:"projects"`
	Grants             []Grant            `yaml:"grants"`
}

// Entry is a titled catalog row with a fixed id
type Entry struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type RelationshipType struct {
	Entry        `yaml:",inline"`
	Hierarchical bool `yaml:"hierarchical"`
}

type Context struct {
	ID      string `yaml:"id"`
	Context string `yaml:"context"`
}

type Permission struct {
	Entry `yaml:",inline"`
	Value int `yaml:"value"`
}

type Priority struct {
	Entry `yaml:",inline"`
	Level int    `yaml:"level"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
}

// Role without a project is usable in every project
type Role struct {
	Entry        `yaml:",inline"`
	ProjectID    string `yaml:"project"`
	PermissionID string `yaml:"permission"`
}

type Step struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	TicketStatusID string `yaml:"status"`
	Next           string `yaml:"next"`
}

// Workflow steps are chained in order when Linear is set
type Workflow struct {
	Entry  `yaml:",inline"`
	Linear bool   `yaml:"linear"`
	Steps  []Step `yaml:"steps"`
}

type Project struct {
	Entry      `yaml:",inline"`
	Identifier string `yaml:"identifier"`
	WorkflowID string `yaml:"workflow"`
}

// Grant gives an existing user a permission in a context. It is how the
// first node administrator is created when permissions are enforced.
type Grant struct {
	Username     string `yaml:"user"`
	PermissionID string `yaml:"permission"`
	ContextID    string `yaml:"context"`
}

// Result counts what Apply wrote and what was already present
type Result struct {
	Created int
	Skipped int
}

// Parse decodes a seed file. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses the seed file at path
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Seeder writes seed files into the database. Rows whose id already exists,
// tombstones included, are left alone so Apply can run on every start.
type Seeder struct {
	db        *gorm.DB
	workflows *services.WorkflowService
	log       zerolog.Logger
}

func NewSeeder(db *gorm.DB, workflows *services.WorkflowService, log zerolog.Logger) *Seeder {
	return &Seeder{db: db, workflows: workflows, log: log}
}

// Apply inserts the missing rows of f. Catalog rows go first so workflows
// can reference statuses and projects can reference workflows.
func (s *Seeder) Apply(f *File) (Result, error) {
	var res Result

	for _, e := range f.TicketStatuses {
		row := &models.TicketStatus{Base: models.Base{ID: e.ID}, Title: e.Title, Description: e.Description}
		if err := ensure(repository.NewStore[models.TicketStatus](s.db), row, &res); err != nil {
			return res, err
		}
	}
	for _, e := range f.TicketTypes {
		row := &models.TicketType{Base: models.Base{ID: e.ID}, Title: e.Title, Description: e.Description}
		if err := ensure(repository.NewStore[models.TicketType](s.db), row, &res); err != nil {
			return res, err
		}
	}
	for _, e := range f.RelationshipTypes {
		row := &models.TicketRelationshipType{
			Base:         models.Base{ID: e.ID},
			Title:        e.Title,
			Description:  e.Description,
			Hierarchical: e.Hierarchical,
		}
		if err := ensure(repository.NewStore[models.TicketRelationshipType](s.db), row, &res); err != nil {
			return res, err
		}
	}
	for _, e := range f.PermissionContexts {
		row := &models.PermissionContext{Base: models.Base{ID: e.ID}, Context: e.Context}
		if err := ensure(repository.NewStore[models.PermissionContext](s.db), row, &res); err != nil {
			return res, err
		}
	}
	for _, e := range f.Permissions {
		row := &models.Permission{Base: models.Base{ID: e.ID}, Title: e.Title, Description: e.Description, Value: e.Value}
		if err := ensure(repository.NewStore[models.Permission](s.db), row, &res); err != nil {
			return res, err
		}
	}
	for _, e := range f.Priorities {
		row := &models.Priority{
			Base:        models.Base{ID: e.ID},
			Title:       e.Title,
			Description: e.Description,
			Level:       e.Level,
			Icon:        e.Icon,
			Color:       e.Color,
		}
		if err := ensure(repository.NewStore[models.Priority](s.db), row, &res); err != nil {
			return res, err
		}
	}
	for _, e := range f.Resolutions {
		row := &models.Resolution{Base: models.Base{ID: e.ID}, Title: e.Title, Description: e.Description}
		if err := ensure(repository.NewStore[models.Resolution](s.db), row, &res); err != nil {
			return res, err
		}
	}
	for _, e := range f.ProjectRoles {
		row := &models.ProjectRole{
			Base:         models.Base{ID: e.ID},
			Title:        e.Title,
			Description:  e.Description,
			ProjectID:    e.ProjectID,
			PermissionID: e.PermissionID,
		}
		if err := ensure(repository.NewStore[models.ProjectRole](s.db), row, &res); err != nil {
			return res, err
		}
	}

	for _, w := range f.Workflows {
		if err := s.applyWorkflow(w, &res); err != nil {
			return res, err
		}
	}
	for _, p := range f.Projects {
		if err := s.applyProject(p, &res); err != nil {
			return res, err
		}
	}
	for _, g := range f.Grants {
		if err := s.applyGrant(g, &res); err != nil {
			return res, err
		}
	}

	s.log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("seed applied")
	return res, nil
}

func (s *Seeder) applyWorkflow(w Workflow, res *Result) error {
	if w.ID == "" {
		return apierrors.NewValidationError(models.EntityWorkflow, "id", "seeded workflows need a fixed id")
	}
	found, err := present[models.Workflow](s.db, w.ID)
	if err != nil {
		return err
	}
	if found {
		res.Skipped++
		return nil
	}

	steps := make([]services.StepInput, len(w.Steps))
	for i, step := range w.Steps {
		steps[i] = services.StepInput{
			ID:             step.ID,
			Title:          step.Title,
			TicketStatusID: step.TicketStatusID,
			NextStepID:     step.Next,
		}
	}
	if _, _, err := s.workflows.CreateWorkflow(services.CreateWorkflowInput{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Steps:       steps,
		Linear:      w.Linear,
	}); err != nil {
		return fmt.Errorf("failed to seed workflow %q: %w", w.ID, err)
	}
	res.Created++
	return nil
}

func (s *Seeder) applyProject(p Project, res *Result) error {
	row := &models.Project{
		Base:        models.Base{ID: p.ID},
		Identifier:  p.Identifier,
		Title:       p.Title,
		Description: p.Description,
	}
	created := res.Created
	if err := ensure(repository.NewStore[models.Project](s.db), row, res); err != nil {
		return err
	}
	if res.Created == created || p.WorkflowID == "" {
		return nil
	}
	if err := s.workflows.BindProject(row.ID, p.WorkflowID, ""); err != nil {
		return fmt.Errorf("failed to bind project %q: %w", p.Identifier, err)
	}
	return nil
}

// applyGrant skips users that have not signed up yet; the next run picks them up.
func (s *Seeder) applyGrant(g Grant, res *Result) error {
	if g.Username == "" || g.PermissionID == "" || g.ContextID == "" {
		return apierrors.NewValidationError(models.EntityPermissionUserMapping, "grant", "user, permission and context are required")
	}
	user, err := repository.NewUserRepository(s.db).FindByUsername(g.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Warn().Str("username", g.Username).Msg("seed grant skipped, user does not exist")
		res.Skipped++
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find user %q: %w", g.Username, err)
	}

	_, created, err := repository.NewPermissionRepository(s.db).GrantUser(g.PermissionID, user.ID, g.ContextID)
	if err != nil {
		return fmt.Errorf("failed to seed grant for %q: %w", g.Username, err)
	}
	if created {
		res.Created++
	} else {
		res.Skipped++
	}
	return nil
}

// present reports whether a row with id exists, tombstones included
func present[T any, PT interface {
	*T
	models.Entity
}](db *gorm.DB, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	_, err := repository.NewStore[T, PT](db).FindByID(id)
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func ensure[T any, PT interface {
	*T
	models.Entity
}](store *repository.Store[T, PT], row PT, res *Result) error {
	id := row.GetBase().ID
	if id == "" {
		return apierrors.NewValidationError(row.EntityName(), "id", "seeded rows need a fixed id")
	}
	if _, err := store.FindByID(id); err == nil {
		res.Skipped++
		return nil
	} else if !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to check %s %q: %w", row.EntityName(), id, err)
	}
	if err := store.Create(row); err != nil {
		return fmt.Errorf("failed to seed %s %q: %w", row.EntityName(), id, err)
	}
	res.Created++
	return nil
}
