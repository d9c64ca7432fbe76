// Command seed provisions a demo tenant and a block of seats for local
// development.  It is idempotent only in the sense that rerunning it
// against a seeded database fails on the unique indexes instead of
// duplicating rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/booking-backend/internal/config"
	"github.com/iliyamo/booking-backend/internal/database"
	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/repository"
	"github.com/iliyamo/booking-backend/internal/utils"
)

func main() {
	tenantID := flag.String("tenant", "tnt_demo", "tenant id to create")
	secret := flag.String("secret", "demo-secret", "tenant API secret (stored hashed)")
	entityID := flag.String("entity", "show-1", "entity to seed seats for")
	rows := flag.Int("rows", 5, "seat rows (A..)")
	cols := flag.Int("cols", 10, "seats per row")
	priceCents := flag.Uint("price", 2500, "price per seat in cents")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("mysql connect failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(*secret, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash tenant secret: %v", err)
	}
	tenants := repository.NewTenantRepo(db)
	if err := tenants.Create(ctx, &model.Tenant{
		ID:         *tenantID,
		Name:       "Demo Tenant",
		SecretHash: hash,
		Domain:     "events",
		IsActive:   true,
	}); err != nil {
		log.Fatalf("create tenant: %v", err)
	}

	seats := make([]model.Seat, 0, (*rows)*(*cols))
	for r := 0; r < *rows; r++ {
		for c := 1; c <= *cols; c++ {
			seats = append(seats, model.Seat{
				TenantID:   *tenantID,
				EntityID:   *entityID,
				SeatNumber: fmt.Sprintf("%c-%d", 'A'+r, c),
				PriceCents: uint32(*priceCents),
				Domain:     "events",
				Metadata:   "{}",
			})
		}
	}
	if err := repository.NewSeatRepo(db).CreateBulk(ctx, seats); err != nil {
		log.Fatalf("create seats: %v", err)
	}

	log.Printf("seeded tenant %s with %d seats for %s (secret: %s)",
		*tenantID, len(seats), *entityID, *secret)
}
