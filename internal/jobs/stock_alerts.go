package jobs

import (
	"context"
	"log"

	"crately/internal/repositories"

	"github.com/google/uuid"
)

// StockAlertService scans items against their low-stock thresholds.
type StockAlertService struct {
	itemRepo      repositories.ItemRepository
	containerRepo repositories.ContainerRepository
}

// StockAlert describes one item at or below its threshold.
type StockAlert struct {
	ItemID        uuid.UUID
	ItemName      string
	ContainerID   uuid.UUID
	ContainerName string
	Quantity      int
	Threshold     int
}

func NewStockAlertService(itemRepo repositories.ItemRepository, containerRepo repositories.ContainerRepository) *StockAlertService {
	return &StockAlertService{
		itemRepo:      itemRepo,
		containerRepo: containerRepo,
	}
}

// CheckLowStock returns alerts for every item whose quantity has fallen to
// or below its min quantity. A zero threshold disables alerting for that
// item.
func (s *StockAlertService) CheckLowStock(ctx context.Context) ([]StockAlert, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		log.Printf("Failed to list items for stock scan: %v", err)
		return nil, err
	}

	containers, err := s.containerRepo.List(ctx)
	if err != nil {
		log.Printf("Failed to list containers for stock scan: %v", err)
		return nil, err
	}
	containerNames := make(map[uuid.UUID]string, len(containers))
	for _, c := range containers {
		containerNames[c.ID] = c.Name
	}

	var alerts []StockAlert
	for _, item := range items {
		if item.MinQuantity <= 0 || item.Quantity > item.MinQuantity {
			continue
		}
		alerts = append(alerts, StockAlert{
			ItemID:        item.ID,
			ItemName:      item.Name,
			ContainerID:   item.ContainerID,
			ContainerName: containerNames[item.ContainerID],
			Quantity:      item.Quantity,
			Threshold:     item.MinQuantity,
		})
	}
	return alerts, nil
}

// ScheduledLowStockCheck is the scheduler entry point; it logs each alert.
func (s *StockAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	alerts, err := s.CheckLowStock(ctx)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		log.Println("Stock scan: no low-stock items")
		return nil
	}

	log.Printf("Stock scan: %d low-stock item(s)", len(alerts))
	for _, alert := range alerts {
		log.Printf("- '%s' in container '%s' has %d units (threshold: %d)",
			alert.ItemName, alert.ContainerName, alert.Quantity, alert.Threshold)
	}
	return nil
}
