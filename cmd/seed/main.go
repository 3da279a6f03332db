package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spotvibe/internal/config"
	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
	pg "spotvibe/internal/infra/db/postgres"
)

// Seeds the subscription plan catalog. Prices are XOF.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool := pg.MustConnectPostgres(cfg.Database.URL)
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)

	if plans, err := planRepo.ListActive(ctx, repository.NoTX); err == nil && len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (%s/%s, %s XOF)\n", p.Name, p.Tier, p.Duration, p.Price)
		}
		return
	} else if err != nil && err != domain.ErrNotFound {
		log.Fatalf("list plans: %v", err)
	}

	type planSpec struct {
		name     string
		tier     model.PlanTier
		duration model.PlanDuration
		price    int64
		events   string // monthly event cap, "" means unlimited
		rate     string // reduced commission rate, "" means none
		badge    bool
		sort     int
	}

	seed := []planSpec{
		{"Standard Mensuel", model.PlanTierStandard, model.PlanDurationMonthly, 5_000, "5", "", false, 1},
		{"Standard Trimestriel", model.PlanTierStandard, model.PlanDurationQuarterly, 13_500, "5", "", false, 2},
		{"Premium Mensuel", model.PlanTierPremium, model.PlanDurationMonthly, 15_000, "20", "7.5", false, 3},
		{"Premium Trimestriel", model.PlanTierPremium, model.PlanDurationQuarterly, 40_000, "20", "7.5", false, 4},
		{"Gold Mensuel", model.PlanTierGold, model.PlanDurationMonthly, 35_000, "", "5", true, 5},
		{"Gold Annuel", model.PlanTierGold, model.PlanDurationYearly, 350_000, "", "5", true, 6},
	}

	for _, s := range seed {
		p, err := model.NewSubscriptionPlan(uuid.NewString(), s.name, s.tier, decimal.NewFromInt(s.price), s.duration)
		if err != nil {
			log.Fatalf("plan %q: %v", s.name, err)
		}
		p.SortOrder = s.sort

		if s.events != "" {
			p.Features = append(p.Features, model.PlanFeature{
				Name:        model.FeatureMaxEventsPerMonth,
				Description: "Événements publiables par mois",
				Included:    true,
				Limit:       s.events,
				SortOrder:   1,
			})
		}
		if s.rate != "" {
			p.Features = append(p.Features, model.PlanFeature{
				Name:        model.FeatureReducedCommission,
				Description: "Commission réduite sur la billetterie",
				Included:    true,
				Limit:       s.rate,
				SortOrder:   2,
			})
		}
		if s.badge {
			p.Features = append(p.Features, model.PlanFeature{
				Name:        model.FeatureVerifiedBadge,
				Description: "Badge organisateur vérifié",
				Included:    true,
				SortOrder:   3,
			})
		}

		if err := planRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("save plan %q: %v", s.name, err)
		}
		fmt.Printf("seeded: %s (id=%s, %s XOF)\n", p.Name, p.ID, p.Price)
	}

	fmt.Println("Seeding complete.")
}
