package main

import (
	"context"
	"os"

	"github.com/shopspring/decimal"

	"lokalrunner/config"
	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/pkg/pincode"
	"lokalrunner/storage"
	"lokalrunner/storage/postgres"
)

// Seeds demo data: cities, a provider with products, a runner with an active
// profile in Madrid, and a client with PIN 1234.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName+"-seed", cfg.LoggerLevel)

	ctx := context.Background()

	stg, err := postgres.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer stg.Close()

	if err := seed(ctx, stg, log); err != nil {
		log.Error("seed failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info("seed completed")
}

func seed(ctx context.Context, stg storage.IStorage, log logger.ILogger) error {
	cities := []struct{ name, slug string }{
		{"Madrid", "madrid"},
		{"Barcelona", "barcelona"},
		{"Valencia", "valencia"},
	}

	var madrid *models.City
	for _, c := range cities {
		city, err := stg.City().Create(ctx, c.name, c.slug)
		if err != nil {
			return err
		}
		log.Info("city ready", logger.String("slug", city.Slug))
		if city.Slug == "madrid" {
			madrid = city
		}
	}

	provider, err := stg.User().GetOrCreate(ctx, "provider@example.com", "Demo Provider")
	if err != nil {
		return err
	}
	if _, err := stg.User().AddRole(ctx, provider.ID, models.RoleProvider); err != nil {
		return err
	}

	products := []struct {
		name  string
		price string
		stock int
	}{
		{"Cafe de especialidad 250g", "2.50", 40},
		{"Pan de masa madre", "1.20", 25},
		{"Miel local 500g", "6.90", 12},
	}
	for _, p := range products {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return err
		}
		product, err := stg.Product().Create(ctx, &models.Product{
			ProviderID: provider.ID,
			CityID:     madrid.ID,
			Name:       p.name,
			Price:      price,
			Stock:      p.stock,
		})
		if err != nil {
			return err
		}
		log.Info("product ready", logger.Int64("id", product.ID), logger.String("name", product.Name))
	}

	runner, err := stg.User().GetOrCreate(ctx, "runner@example.com", "Demo Runner")
	if err != nil {
		return err
	}
	if _, err := stg.User().AddRole(ctx, runner.ID, models.RoleRunner); err != nil {
		return err
	}
	profile, err := stg.Runner().CreateProfile(ctx, runner.ID)
	if err != nil {
		return err
	}
	baseLat, baseLng := 40.4168, -3.7038
	profile.BaseLat = &baseLat
	profile.BaseLng = &baseLng
	profile.IsActive = true
	if _, err := stg.Runner().UpdateProfile(ctx, profile); err != nil {
		return err
	}

	client, err := stg.User().GetOrCreate(ctx, "client@example.com", "Demo Client")
	if err != nil {
		return err
	}
	pinHash, err := pincode.Hash("1234")
	if err != nil {
		return err
	}
	if err := stg.User().SetPinHash(ctx, client.ID, pinHash); err != nil {
		return err
	}

	admin, err := stg.User().GetOrCreate(ctx, "admin@example.com", "Demo Admin")
	if err != nil {
		return err
	}
	if _, err := stg.User().AddRole(ctx, admin.ID, models.RoleAdmin); err != nil {
		return err
	}

	return nil
}
