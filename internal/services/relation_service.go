package services

import (
	"fmt"
	"sort"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ResolveLinked returns the distinct targets linked to sourceID through live rows.
// Targets keep the order of their first live row.
func ResolveLinked[PM models.Entity](rows []PM, sourceID string, endpoints func(PM) (string, string)) []string {
	seen := make(map[string]bool)
	targets := []string{}
	for _, row := range rows {
		if row.GetBase().IsDeleted() {
			continue
		}
		source, target := endpoints(row)
		if source != sourceID || seen[target] {
			continue
		}
		seen[target] = true
		targets = append(targets, target)
	}
	return targets
}

// Linker is the non-generic view of one mapping kind handed to the HTTP layer.
type Linker interface {
	Name() string
	SourceEntity() string
	TargetEntity() string
	Link(sourceID, targetID, actorID string) (models.Entity, bool, error)
	Unlink(sourceID, targetID, actorID string) error
	Linked(sourceID string) ([]string, error)
}

type mappingLinker[M any, PM interface {
	*M
	models.Entity
}] struct {
	repo  *repository.MappingRepository[M, PM]
	locks *keyedMutex
	audit *AuditService
	log   zerolog.Logger
}

func (l *mappingLinker[M, PM]) Name() string         { return l.repo.Kind().Name }
func (l *mappingLinker[M, PM]) SourceEntity() string { return l.repo.Kind().SourceEntity }
func (l *mappingLinker[M, PM]) TargetEntity() string { return l.repo.Kind().TargetEntity }

// lockKey names the underlying (table, left, right) pair so both directions of a kind share it.
func (l *mappingLinker[M, PM]) lockKey(sourceID, targetID string) string {
	kind := l.repo.Kind()
	row := kind.New(sourceID, targetID)
	left, right := kind.Endpoints(row)
	if kind.SourceColumn > kind.TargetColumn {
		left, right = right, left
	}
	return fmt.Sprintf("%s|%s|%s", row.EntityName(), left, right)
}

func (l *mappingLinker[M, PM]) Link(sourceID, targetID, actorID string) (models.Entity, bool, error) {
	if err := requireIDs(l.Name(), sourceID, targetID); err != nil {
		return nil, false, err
	}
	unlock := l.locks.Lock(l.lockKey(sourceID, targetID))
	defer unlock()

	row, created, err := l.repo.Link(sourceID, targetID)
	if err != nil {
		return nil, false, err
	}
	if created {
		l.audit.Record(row.EntityName(), row.GetBase().ID, models.OperationLink, actorID, map[string]string{
			"kind":   l.Name(),
			"source": sourceID,
			"target": targetID,
		})
		l.log.Debug().Str("kind", l.Name()).Str("source", sourceID).Str("target", targetID).Msg("linked")
	}
	return row, created, nil
}

func (l *mappingLinker[M, PM]) Unlink(sourceID, targetID, actorID string) error {
	if err := requireIDs(l.Name(), sourceID, targetID); err != nil {
		return err
	}
	unlock := l.locks.Lock(l.lockKey(sourceID, targetID))
	defer unlock()

	if _, err := l.repo.Unlink(sourceID, targetID); err != nil {
		return err
	}
	l.audit.Record(l.repo.Kind().New(sourceID, targetID).EntityName(), sourceID, models.OperationUnlink, actorID, map[string]string{
		"kind":   l.Name(),
		"target": targetID,
	})
	l.log.Debug().Str("kind", l.Name()).Str("source", sourceID).Str("target", targetID).Msg("unlinked")
	return nil
}

func (l *mappingLinker[M, PM]) Linked(sourceID string) ([]string, error) {
	if err := requireIDs(l.Name(), sourceID); err != nil {
		return nil, err
	}
	rows, err := l.repo.ListBySource(sourceID)
	if err != nil {
		return nil, err
	}
	return ResolveLinked(rows, sourceID, l.repo.Kind().Endpoints), nil
}

// RelationService resolves and edits every registered mapping kind.
type RelationService struct {
	db      *gorm.DB
	linkers map[string]Linker
	locks   *keyedMutex
	audit   *AuditService
	log     zerolog.Logger
}

// NewRelationService creates a RelationService with the default mapping kinds registered
func NewRelationService(db *gorm.DB, audit *AuditService, log zerolog.Logger) *RelationService {
	s := &RelationService{
		db:      db,
		linkers: make(map[string]Linker),
		locks:   newKeyedMutex(),
		audit:   audit,
		log:     log,
	}
	registerDefaultKinds(s)
	return s
}

// Register adds a mapping kind. The kind name must be unique.
func Register[M any, PM interface {
	*M
	models.Entity
}](s *RelationService, kind repository.LinkKind[M, PM]) {
	if _, dup := s.linkers[kind.Name]; dup {
		panic("services: duplicate relation kind " + kind.Name)
	}
	s.linkers[kind.Name] = &mappingLinker[M, PM]{
		repo:  repository.NewMappingRepository(s.db, kind),
		locks: s.locks,
		audit: s.audit,
		log:   s.log,
	}
}

// Kind returns the linker registered under name
func (s *RelationService) Kind(name string) (Linker, error) {
	linker, ok := s.linkers[name]
	if !ok {
		return nil, apierrors.NewNotFoundError("relation_kind", name)
	}
	return linker, nil
}

// Kinds lists the registered kind names, sorted
func (s *RelationService) Kinds() []string {
	names := make([]string, 0, len(s.linkers))
	for name := range s.linkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Link joins source and target through the named kind. Linking twice is a no-op.
func (s *RelationService) Link(kind, sourceID, targetID, actorID string) (models.Entity, bool, error) {
	linker, err := s.Kind(kind)
	if err != nil {
		return nil, false, err
	}
	return linker.Link(sourceID, targetID, actorID)
}

// Unlink tombstones the live rows joining source and target
func (s *RelationService) Unlink(kind, sourceID, targetID, actorID string) error {
	linker, err := s.Kind(kind)
	if err != nil {
		return err
	}
	return linker.Unlink(sourceID, targetID, actorID)
}

// Linked lists the distinct live targets of sourceID
func (s *RelationService) Linked(kind, sourceID string) ([]string, error) {
	linker, err := s.Kind(kind)
	if err != nil {
		return nil, err
	}
	return linker.Linked(sourceID)
}

func requireIDs(entity string, ids ...string) error {
	for _, id := range ids {
		if id == "" {
			return apierrors.NewValidationError(entity, "id", "must not be empty")
		}
	}
	return nil
}
