// Command seed loads the grimorio catalog and optionally fake requests.
package main

import (
	"context"
	"flag"
	"log"

	"grimoire/internal/assignment"
	"grimoire/internal/bootstrap"
	"grimoire/internal/cache"
	"grimoire/internal/config"
	"grimoire/internal/models"
	"grimoire/internal/repository"
	"grimoire/internal/seed"
	"grimoire/internal/service"
)

func main() {
	count := flag.Int("count", 20, "number of fake requests to create")
	approve := flag.Float64("approve", 0.4, "share of pending requests to approve")
	reject := flag.Float64("reject", 0.2, "share of pending requests to reject")
	fakerSeed := flag.Int64("seed", 0, "faker seed (0 is random)")
	catalogOnly := flag.Bool("catalog-only", false, "only upsert the grimorio catalog")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() {
		if sqlDB, err := rt.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if rt.Redis != nil {
			_ = rt.Redis.Close()
		}
	}()

	log.Println("Seeding grimorio catalog...")
	if err := seed.Grimorios(rt.DB, rt.Catalog); err != nil {
		log.Fatalf("Failed to seed grimorios: %v", err)
	}
	ctx := context.Background()
	cache.Invalidate(ctx, cache.GrimoriosKey)
	log.Printf("Catalog ready with %d tiers", len(rt.Catalog))

	if *catalogOnly || *count <= 0 {
		return
	}

	svc := service.NewRequestService(
		repository.NewRequestRepository(rt.DB),
		repository.NewGrimorioRepository(rt.DB),
		assignment.NewSeededPicker(cfg.RandomSeed),
		cache.NewNotifier(rt.Redis),
	)

	summary, err := seed.NewFactory(*fakerSeed).Populate(ctx, svc, seed.Options{
		Count:        *count,
		ApproveRatio: *approve,
		RejectRatio:  *reject,
	})
	if err != nil {
		log.Fatalf("Failed to populate requests: %v", err)
	}

	log.Printf("Created %d requests: %d pending, %d approved, %d rejected",
		*count,
		summary[models.RequestStatusPending],
		summary[models.RequestStatusApproved],
		summary[models.RequestStatusRejected],
	)
}
