package main

import (
	availabilityhandler "verleih/internal/availability/handler"
	availabilityservice "verleih/internal/availability/service"
	depotsrepository "verleih/internal/depots/repository"
	rentalshandler "verleih/internal/rentals/handler"
	rentalsrepository "verleih/internal/rentals/repository"
	rentalsservice "verleih/internal/rentals/service"
	"verleih/internal/rentals/validator"
	"verleih/pkg/app"
	"verleih/pkg/config"
	"verleih/pkg/events"
)

const ServiceName = "rentals"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	publisher, err := events.NewPublisherFromConfig(cfg, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to set up event publisher", "error", err)
	}

	cfg.Log.Info("Starting Rentals service")
	availability, rentals := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		availabilityhandler.NewAvailabilityHandler(availability, cfg.Log, cfg.AvailabilityDefaultWindow),
		rentalshandler.NewRentalHandler(rentals, cfg.Log),
	)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) (availabilityservice.AvailabilityService, rentalsservice.RentalService) {
	depotRepo := depotsrepository.NewMongoDepotRepository(cfg)
	itemRepo := depotsrepository.NewMongoItemRepository(cfg)
	rentalRepo := rentalsrepository.NewMongoRentalRepository(cfg)
	lockRepo := rentalsrepository.NewMongoDepotLockRepository(cfg)

	availability := availabilityservice.NewAvailabilityService(
		rentalRepo,
		itemRepo,
		depotRepo,
		cfg.Log,
		availabilityservice.WithConflictingStatuses(cfg.ConflictingStatuses...),
	)

	rentals := rentalsservice.NewRentalService(
		rentalRepo,
		lockRepo,
		depotRepo,
		itemRepo,
		availability,
		validator.NewRentalValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Rental services initialized", "database", cfg.MongoDatabaseName)
	return availability, rentals
}
