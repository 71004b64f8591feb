package sync

import (
	"go.uber.org/zap"

	"pos-sync-service/internal/logger"
	"pos-sync-service/internal/store"
)

// substituteSeeds fills empty users, menu and inventory with the built-in
// dataset. Empty sales, expenses and audit logs are a valid steady state and
// are left alone. It reports which tables were seeded.
func (o *Orchestrator) substituteSeeds(d *Data) map[store.Table]bool {
	seeded := map[store.Table]bool{}
	if !o.cfg.SeedOnEmpty {
		return seeded
	}
	if len(d.Users) == 0 {
		d.Users = append([]store.User(nil), seedUsers...)
		seeded[store.TableUsers] = true
	}
	if len(d.MenuItems) == 0 {
		d.MenuItems = append([]store.MenuItem(nil), seedMenu...)
		seeded[store.TableMenuItems] = true
	}
	if len(d.Inventory) == 0 {
		d.Inventory = append([]store.InventoryItem(nil), seedInventory...)
		seeded[store.TableInventory] = true
	}
	for table := range seeded {
		logger.Log.Info("Substituting seed data", zap.String("table", string(table)))
	}
	return seeded
}
