package backup

import (
	"context"
	"fmt"
	"time"

	"apivengers/internal/store"

	"go.uber.org/zap"
)

const fileTimeFormat = "20060102_150405"

// Service backs the store up to a target and restores from it. Before a
// restore the current state is archived to the local target.
type Service struct {
	store  store.Store
	target Target
	local  *LocalTarget
	now    func() time.Time
	log    *zap.Logger
}

// NewService returns a service shipping archives to target. A nil target
// means local.
func NewService(st store.Store, target Target, local *LocalTarget) *Service {
	if target == nil {
		target = local
	}
	return &Service{store: st, target: target, local: local, now: time.Now, log: zap.L()}
}

// TargetName names where archives go.
func (s *Service) TargetName() string {
	return s.target.Name()
}

// Run archives the store and uploads it, returning the archive name.
func (s *Service) Run(ctx context.Context) (string, error) {
	now := s.now()
	data, m, err := Archive(ctx, s.store, now)
	if err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	name := fmt.Sprintf("apivengers_backup_%s%s", now.Format(fileTimeFormat), ArchiveSuffix)
	if err := s.target.Upload(ctx, name, data); err != nil {
		return "", err
	}
	s.log.Info("Backup uploaded",
		zap.String("target", s.target.Name()),
		zap.String("file", name),
		zap.Int("schemas", len(m.Schemas)),
		zap.Int("endpoints", len(m.Endpoints)),
	)
	return name, nil
}

// List returns the archives on the target.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.target.List(ctx)
}

// Restore downloads name from the target and loads it into the store.
func (s *Service) Restore(ctx context.Context, name string) (RestoreStats, error) {
	data, err := s.target.Download(ctx, name)
	if err != nil {
		return RestoreStats{}, err
	}
	if _, err := ReadManifest(data); err != nil {
		return RestoreStats{}, err
	}

	if s.local != nil {
		snapshot, _, err := Archive(ctx, s.store, s.now())
		if err == nil {
			snapName := fmt.Sprintf("apivengers_pre_restore_backup_%s%s", s.now().Format(fileTimeFormat), ArchiveSuffix)
			if err := s.local.Upload(ctx, snapName, snapshot); err != nil {
				s.log.Warn("Pre-restore snapshot failed", zap.Error(err))
			}
		} else {
			s.log.Warn("Pre-restore snapshot failed", zap.Error(err))
		}
	}

	stats, err := Restore(ctx, s.store, data)
	if err != nil {
		return stats, fmt.Errorf("failed to restore backup: %w", err)
	}
	s.log.Info("Backup restored", zap.String("file", name), zap.Int("schemas", stats.Schemas), zap.Int("endpoints", stats.Endpoints))
	return stats, nil
}
