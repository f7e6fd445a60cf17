package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/pricing"
	"github.com/warungops/warungops/internal/repositories"
)

var fake = faker.New()

// dishes per category; enough variety for a believable warung menu
var dishCatalog = map[string][]string{
	"makanan": {
		"Nasi Goreng", "Mie Goreng", "Ayam Bakar", "Ayam Geprek", "Sate Ayam",
		"Gado-Gado", "Nasi Uduk", "Soto Ayam", "Bakso", "Rendang",
		"Ikan Bakar", "Capcay", "Nasi Campur", "Mie Ayam",
	},
	"minuman": {
		"Es Teh Manis", "Es Jeruk", "Kopi Susu", "Teh Tarik", "Jus Alpukat",
		"Jus Mangga", "Es Campur", "Air Mineral",
	},
	"snack": {
		"Pisang Goreng", "Tahu Isi", "Tempe Mendoan", "Kerupuk", "Martabak Mini",
	},
}

var dishVariants = []string{"pedas", "tidak pedas", "extra pedas"}

// Seeder fills a fresh database with a demo tenant: a menu and a history of
// shaped orders the decision engine can immediately analyze.
type Seeder struct {
	orders repositories.OrderRepository
	menu   repositories.MenuItemRepository
	rng    *rand.Rand
}

func New(orders repositories.OrderRepository, menu repositories.MenuItemRepository, seed int64) *Seeder {
	return &Seeder{
		orders: orders,
		menu:   menu,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Run creates the menu and `days` days of historical orders ending
// yesterday. Weekends run about 50% busier and order times cluster around
// lunch and dinner, so the pattern extractor has something real to find.
func (s *Seeder) Run(ctx context.Context, storeID string, outletID *string, days int) error {
	menu := s.buildMenu(storeID, outletID)
	if err := s.menu.BulkCreate(ctx, menu); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	log.Info().Int("items", len(menu)).Msg("seeded menu")

	bar := progressbar.Default(int64(days), "seeding orders")
	today := time.Now().Truncate(24 * time.Hour)

	var total int
	for d := days; d >= 1; d-- {
		day := today.AddDate(0, 0, -d)
		orders := s.buildDay(storeID, outletID, day, menu)
		if err := s.orders.BulkCreate(ctx, orders); err != nil {
			return fmt.Errorf("seed orders for %s: %w", day.Format("2006-01-02"), err)
		}
		total += len(orders)
		_ = bar.Add(1)
	}
	log.Info().Int("orders", total).Int("days", days).Msg("seeded order history")
	return nil
}

func (s *Seeder) buildMenu(storeID string, outletID *string) []*models.MenuItem {
	var items []*models.MenuItem
	for category, names := range dishCatalog {
		for _, name := range names {
			price := pricing.RoundPsychological(int64(s.rng.Intn(40)+8) * 1000)
			item := &models.MenuItem{
				ID:       cuid.New(),
				StoreID:  storeID,
				OutletID: outletID,
				Name:     name,
				Category: category,
				Price:    price,
			}
			// most owners only know cost price for food items
			if category == "makanan" && s.rng.Float64() < 0.7 {
				cost := int64(float64(price) * (0.4 + s.rng.Float64()*0.3))
				item.CostPrice = &cost
			}
			if category == "makanan" && s.rng.Float64() < 0.5 {
				item.Variants = dishVariants
			}
			items = append(items, item)
		}
	}
	return items
}

func (s *Seeder) buildDay(storeID string, outletID *string, day time.Time, menu []*models.MenuItem) []*models.Order {
	count := 15 + s.rng.Intn(11)
	if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		count = int(float64(count) * 1.5)
	}

	orders := make([]*models.Order, 0, count)
	for i := 0; i < count; i++ {
		placedAt := day.Add(time.Duration(s.pickHour())*time.Hour +
			time.Duration(s.rng.Intn(60))*time.Minute)

		order := &models.Order{
			ID:        cuid.New(),
			StoreID:   storeID,
			OutletID:  outletID,
			Status:    s.pickStatus(),
			CreatedAt: placedAt,
		}
		if s.rng.Float64() < 0.4 {
			name := fake.Person().Name()
			order.CustomerName = &name
		}
		lines := 1 + s.rng.Intn(3)
		for l := 0; l < lines; l++ {
			item := menu[s.rng.Intn(len(menu))]
			qty := 1 + s.rng.Intn(2)
			order.Items = append(order.Items, models.OrderItem{
				MenuItemID: item.ID,
				Quantity:   qty,
				UnitPrice:  item.Price,
			})
			order.Total += int64(qty) * item.Price
		}
		orders = append(orders, order)
	}
	return orders
}

// pickHour clusters orders around lunch and dinner with a thin tail across
// the rest of the opening hours.
func (s *Seeder) pickHour() int {
	r := s.rng.Float64()
	switch {
	case r < 0.35:
		return 11 + s.rng.Intn(3) // lunch rush
	case r < 0.70:
		return 18 + s.rng.Intn(3) // dinner rush
	default:
		return 9 + s.rng.Intn(13)
	}
}

func (s *Seeder) pickStatus() string {
	r := s.rng.Float64()
	switch {
	case r < 0.85:
		return models.OrderStatusCompleted
	case r < 0.92:
		return models.OrderStatusConfirmed
	case r < 0.96:
		return models.OrderStatusCancelled
	default:
		return models.OrderStatusPending
	}
}
