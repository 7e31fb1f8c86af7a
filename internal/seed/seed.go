package seed

import (
	"context"
	"fmt"
	"log/slog"

	"truthfeed/internal/models"
	"truthfeed/internal/observability"
	"truthfeed/internal/repository"
	"truthfeed/internal/service"

	"gorm.io/gorm"
)

// Result is what SeedStudy created.
type Result struct {
	Admin        *models.AdminUser
	Study        *models.Study
	Sources      []*models.Source
	Participants []*models.Participant
}

// Seeder writes presets through the services.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	log     *slog.Logger
}

// NewSeeder wires a Seeder to db. factory may be nil for presets without
// fake sources or participants.
func NewSeeder(db *gorm.DB, factory *Factory, log *slog.Logger) *Seeder {
	return &Seeder{db: db, factory: factory, log: log}
}

// writers are the repositories and services of one seeding transaction.
type writers struct {
	admins       repository.AdminUserRepository
	sources      repository.SourceRepository
	studies      *service.StudyService
	participants *service.ParticipantService
}

func (s *Seeder) writersFor(tx *gorm.DB) writers {
	opts := []repository.Option{repository.WithLogger(s.log)}
	studyRepo := repository.NewStudyRepository(tx, opts...)
	return writers{
		admins:  repository.NewAdminUserRepository(tx, opts...),
		sources: repository.NewSourceRepository(tx, opts...),
		studies: service.NewStudyService(tx, studyRepo, repository.NewSettingsRepository(tx, opts...), s.log),
		participants: service.NewParticipantService(
			repository.NewParticipantRepository(tx, opts...), studyRepo, s.log),
	}
}

// SeedStudy creates an admin, the preset's settings, the study, its sources
// and participants, in that order, in one transaction. A failing step leaves
// nothing behind.
func (s *Seeder) SeedStudy(ctx context.Context, p *Preset) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if (p.FakeSources > 0 || p.Participants.Count > 0) && s.factory == nil {
		return nil, fmt.Errorf("preset %q needs a factory", p.Name)
	}

	var res *Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = s.seed(ctx, s.writersFor(tx), p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(observability.WithStudyID(ctx, res.Study.ID), "Study seeded",
		slog.String("preset", p.Name),
		slog.Int("sources", len(res.Sources)),
		slog.Int("participants", len(res.Participants)),
	)
	return res, nil
}

func (s *Seeder) seed(ctx context.Context, w writers, p *Preset) (*Result, error) {
	res := &Result{Admin: &models.AdminUser{AccessRight: p.Admin.AccessRight}}
	if err := w.admins.Create(ctx, res.Admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	ui, basic, advanced := p.UI, p.Basic, p.Advanced
	bundle, err := w.studies.CreateSettings(ctx, service.SettingsBundle{
		UI:       &ui,
		Basic:    &basic,
		Advanced: &advanced,
		Pages:    copyPages(p.Pages),
	})
	if err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}

	in := service.ComposeStudyInput{
		UISettingsID:       bundle.UI.ID,
		BasicSettingsID:    bundle.Basic.ID,
		AdvancedSettingsID: bundle.Advanced.ID,
		OpenedByID:         res.Admin.ID,
		ClosedByID:         res.Admin.ID,
	}
	if bundle.Pages != nil {
		in.PagesSettingsID = &bundle.Pages.ID
	}
	res.Study, err = w.studies.ComposeStudy(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("compose study: %w", err)
	}
	if p.Open {
		res.Study, err = w.studies.OpenStudy(ctx, res.Study.ID, res.Admin.ID)
		if err != nil {
			return nil, fmt.Errorf("open study: %w", err)
		}
	}
	ctx = observability.WithStudyID(ctx, res.Study.ID)

	for _, sp := range p.Sources {
		source := &models.Source{
			Name:               sp.Name,
			Style:              sp.Style,
			MaxPosts:           sp.MaxPosts,
			TruePostPercentage: sp.TruePostPercentage,
			Avatar:             sp.Avatar,
		}
		if err := w.sources.Create(ctx, source); err != nil {
			return nil, fmt.Errorf("create source %q: %w", sp.Name, err)
		}
		res.Sources = append(res.Sources, source)
	}
	for i := 0; i < p.FakeSources; i++ {
		source := s.factory.Source()
		if err := w.sources.Create(ctx, source); err != nil {
			return nil, fmt.Errorf("create fake source: %w", err)
		}
		res.Sources = append(res.Sources, source)
	}

	for i := 0; i < p.Participants.Count; i++ {
		join := s.factory.Participant(res.Study.ID, i+1, p.Participants.InitialFollowers, p.Participants.InitialCredibility)
		participant, err := w.participants.JoinStudy(ctx, join)
		if err != nil {
			return nil, fmt.Errorf("create participant %d: %w", i+1, err)
		}
		res.Participants = append(res.Participants, participant)
	}
	return res, nil
}

func copyPages(p *models.StudyPagesSettings) *models.StudyPagesSettings {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
