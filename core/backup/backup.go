package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Layr-Labs/eigensdk-go/logging"

	"github.com/AvaProtocol/avax-workflow/pkg/logger"
	"github.com/AvaProtocol/avax-workflow/storage"
)

const backupFileName = "runs-backup.db"

// Service writes badger backups of the run history into timestamped
// directories under backupDir
type Service struct {
	logger    logging.Logger
	db        storage.Storage
	backupDir string
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func NewService(log logging.Logger, db storage.Storage, backupDir string) *Service {
	return &Service{
		logger:    logger.EnsureLogger(log),
		db:        db,
		backupDir: backupDir,
		now:       time.Now,
	}
}

func (s *Service) StartPeriodicBackup(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("backup interval must be positive, got %v", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("backup service already running")
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.backupLoop(interval, s.stop, s.done)

	s.logger.Info("started periodic backup", "interval", interval, "dir", s.backupDir)
	return nil
}

// StopPeriodicBackup waits for a backup in progress to finish
func (s *Service) StopPeriodicBackup() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info("stopped periodic backup")
}

func (s *Service) backupLoop(interval time.Duration, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.PerformBackup(context.Background()); err != nil {
				s.logger.Error("periodic backup failed", "error", err)
			}
		case <-stop:
			return
		}
	}
}

// PerformBackup writes a full backup and returns the file path
func (s *Service) PerformBackup(ctx context.Context) (string, error) {
	backupPath := filepath.Join(s.backupDir, s.now().UTC().Format("20060102-150405"))
	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup timestamp directory: %w", err)
	}

	backupFile := filepath.Join(backupPath, backupFileName)
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if _, err := s.db.Backup(ctx, f, 0); err != nil {
		return "", fmt.Errorf("backup operation failed: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("failed to flush backup file: %w", err)
	}

	s.logger.Info("backup completed", "file", backupFile)
	return backupFile, nil
}

// Restore loads a backup file written by PerformBackup into the storage
func (s *Service) Restore(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open backup %s: %w", path, err)
	}
	defer f.Close()

	if err := s.db.Load(f); err != nil {
		return fmt.Errorf("restore from %s failed: %w", path, err)
	}

	s.logger.Info("backup restored", "file", path)
	return nil
}
