// ABOUTME: Repository interface for player graph storage.
// ABOUTME: Defines the contract the restore service and CLI depend on.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/models"
)

// Repository defines the storage interface for player graphs.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Graph operations
	SaveGraph(ctx context.Context, p *models.Player) error
	LoadPlayer(ctx context.Context, idOrPrefix string) (*models.Player, error)
	FindPlayerByAuthID(ctx context.Context, authID string) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	DeletePlayer(ctx context.Context, idOrPrefix string) error

	// Reconciliation
	UpdateGamification(ctx context.Context, playerID uuid.UUID, g models.Gamification, syncedAt time.Time) error
	AddOwnedItems(ctx context.Context, playerID uuid.UUID, items []*models.OwnedAvatarItem) (int, error)

	// Inspection
	CountGraph(ctx context.Context, playerID uuid.UUID) (GraphCounts, error)
	CountAll(ctx context.Context) (GraphCounts, error)

	// Export/Import
	GetAllData(ctx context.Context) (*ExportData, error)
	ImportData(ctx context.Context, data *ExportData) error
	ImportJSON(ctx context.Context, data []byte) error
	ExportJSON(ctx context.Context, idOrPrefix string) ([]byte, error)
	ExportYAML(ctx context.Context, idOrPrefix string) ([]byte, error)
	ExportMarkdown(ctx context.Context, idOrPrefix string) (string, error)

	// Lifecycle
	Close() error
}

var _ Repository = (*DB)(nil)
