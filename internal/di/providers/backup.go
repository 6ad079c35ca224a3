package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/albumatlas/albumatlas-server/internal/backup"
	"github.com/albumatlas/albumatlas-server/internal/config"
	"github.com/albumatlas/albumatlas-server/internal/logger"
)

// engineVersion is stamped into backup manifests.
const engineVersion = "0.1.0"

// ProvideBackupService provides vocabulary snapshot backups.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	vocabStore := do.MustInvoke[*VocabStoreHandle](i)

	backupDir := filepath.Join(cfg.Data.BasePath, "backups")
	return backup.NewService(vocabStore.Store, backupDir, engineVersion, log.Logger), nil
}
