package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"festivaltickets/internal/clients"
	"festivaltickets/internal/events"
	"festivaltickets/internal/holds"
	"festivaltickets/internal/hosts"
	"festivaltickets/internal/jobs"
	"festivaltickets/internal/shared/config"
	"festivaltickets/internal/shared/constants"
	"festivaltickets/internal/shared/database"
	"festivaltickets/internal/tickets"
	"festivaltickets/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db  *database.DB
	log *logger.Logger
}

func main() {
	fmt.Println("🌱 Starting Festival Tickets Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()
	appLogger := logger.GetDefault()

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, log: appLogger}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")
}

// CleanDatabase truncates all tables, dependents first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"client_favourite_events",
		"tickets",
		"ticket_types",
		"event_details",
		"events",
		"genres",
		"event_types",
		"host_hall_details",
		"locations",
		"hosts",
		"host_types",
		"clients",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds lookups, hosts, clients and a few planned events
func (s *Seeder) SeedAll(ctx context.Context) error {
	hostList, err := s.SeedHosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed hosts: %w", err)
	}

	genres, err := s.SeedEventTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed event types: %w", err)
	}

	if err := s.SeedClients(ctx); err != nil {
		return fmt.Errorf("failed to seed clients: %w", err)
	}

	return s.SeedEvents(ctx, hostList, genres)
}

func (s *Seeder) SeedHosts(ctx context.Context) ([]hosts.Host, error) {
	types := []hosts.HostType{{Name: "Concert hall"}, {Name: "Open air"}, {Name: "Club"}}
	if err := s.db.PostgreSQL.WithContext(ctx).Create(&types).Error; err != nil {
		return nil, err
	}

	hostList := []hosts.Host{
		{
			Name:        "Kyiv Philharmonic",
			Description: "Column hall on European Square",
			HostTypeID:  types[0].ID,
			Location:    &hosts.Location{CityName: "Kyiv", StreetName: "Volodymyrskyi Uzviz", BuildingNumber: "2", Latitude: 50.4536, Longitude: 30.5264},
			Hall:        &hosts.HallDetail{RowAmount: 10, SeatsInRow: 20, IsDividedBySeats: true},
		},
		{
			Name:        "Lviv Open Air Stage",
			Description: "Summer stage in Stryiskyi Park",
			HostTypeID:  types[1].ID,
			Location:    &hosts.Location{CityName: "Lviv", StreetName: "Stryiska", BuildingNumber: "15", Latitude: 49.8236, Longitude: 24.0248},
			Hall:        &hosts.HallDetail{RowAmount: 1, SeatsInRow: 500, IsDividedBySeats: false},
		},
		{
			Name:        "Closer",
			Description: "Club by the Dnipro",
			HostTypeID:  types[2].ID,
			Location:    &hosts.Location{CityName: "Kyiv", StreetName: "Nyzhnoiurkivska", BuildingNumber: "31", Latitude: 50.4717, Longitude: 30.4929},
			Hall:        &hosts.HallDetail{RowAmount: 1, SeatsInRow: 300, IsDividedBySeats: false},
		},
	}

	for i := range hostList {
		if err := s.db.PostgreSQL.WithContext(ctx).Create(&hostList[i]).Error; err != nil {
			return nil, err
		}
		fmt.Printf("  Host: %s\n", hostList[i].Name)
	}
	return hostList, nil
}

func (s *Seeder) SeedEventTypes(ctx context.Context) (map[string]uint, error) {
	types := []events.EventType{
		{Name: "Concert", Genres: []events.Genre{{Name: "Jazz"}, {Name: "Classical"}, {Name: "Rock"}}},
		{Name: "Party", Genres: []events.Genre{{Name: "Techno"}, {Name: "House"}}},
		{Name: "Theatre", Genres: []events.Genre{{Name: "Drama"}, {Name: "Comedy"}}},
	}
	if err := s.db.PostgreSQL.WithContext(ctx).Create(&types).Error; err != nil {
		return nil, err
	}

	genres := make(map[string]uint)
	for _, t := range types {
		for _, g := range t.Genres {
			genres[g.Name] = g.ID
		}
	}
	return genres, nil
}

func (s *Seeder) SeedClients(ctx context.Context) error {
	service := clients.NewService(clients.NewRepository(s.db.PostgreSQL), s.log)

	seed := []struct {
		client   clients.NewClient
		password string
	}{
		{clients.NewClient{Name: "Olena", Surname: "Organizer", Email: "organizer@festival.local", Phone: "+380501112233", Subject: "seed|organizer", Role: constants.RoleOrganizer}, "organizer123"},
		{clients.NewClient{Name: "Taras", Surname: "Buyer", Email: "buyer@festival.local", Phone: "+380671112233", Subject: "seed|buyer", Role: constants.RoleUser}, "buyer123"},
	}

	for _, c := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		c.client.PasswordHash = string(hash)
		if _, err := service.CreateClient(ctx, c.client); err != nil {
			return err
		}
		fmt.Printf("  Client: %s (%s)\n", c.client.Email, c.client.Role)
	}
	return nil
}

// SeedEvents plans events through the events service so tickets and
// archive jobs are created the same way as through the API.
func (s *Seeder) SeedEvents(ctx context.Context, hostList []hosts.Host, genres map[string]uint) error {
	pg := s.db.PostgreSQL
	ticketRepo := tickets.NewRepository(pg)
	ticketService := tickets.NewService(ticketRepo, holds.NewMemoryStore(0), time.Minute, s.log)
	hostService := hosts.NewService(hosts.NewRepository(pg))

	eventService := events.NewService(events.NewRepository(pg), ticketRepo, hostService, ticketService, s.log)
	eventService.SetScheduler(jobs.NewRedisScheduler(s.db.GetRedisClient()))

	start := time.Now().UTC().Truncate(24 * time.Hour).Add(19 * time.Hour)
	price := func(v string) decimal.Decimal { return decimal.RequireFromString(v) }

	rows := make([]string, 10)
	for i := range rows {
		rows[i] = "Parterre"
		if i < 3 {
			rows[i] = "VIP"
		}
	}

	plans := []events.PlanEventInput{
		{
			Title:       "Autumn Jazz Night",
			Description: "Three quartets, one evening.",
			Duration:    150,
			StartDate:   start.AddDate(0, 0, 14),
			GenreID:     genres["Jazz"],
			HostID:      hostList[0].ID,
			TicketTypes: []tickets.TicketTypeSpec{{Name: "VIP", Price: price("1500.00")}, {Name: "Parterre", Price: price("700.00")}},
			RowMapping:  rows,
		},
		{
			Title:       "Stryiskyi Rock Fest",
			Description: "Open air with local bands.",
			Duration:    300,
			StartDate:   start.AddDate(0, 0, 30),
			GenreID:     genres["Rock"],
			HostID:      hostList[1].ID,
			TicketTypes: []tickets.TicketTypeSpec{{Name: "Fan zone", Price: price("450.00")}},
		},
		{
			Title:       "Warehouse Techno",
			Description: "All night long.",
			Duration:    480,
			StartDate:   start.AddDate(0, 0, 7),
			GenreID:     genres["Techno"],
			HostID:      hostList[2].ID,
			TicketTypes: []tickets.TicketTypeSpec{{Name: "Entry", Price: price("600.00")}},
		},
	}

	for _, plan := range plans {
		planned, err := eventService.PlanEvent(ctx, plan)
		if err != nil {
			return fmt.Errorf("failed to plan %q: %w", plan.Title, err)
		}
		fmt.Printf("  Event: %s (%d tickets)\n", planned.Title, planned.TicketsCreated)
	}
	return nil
}
