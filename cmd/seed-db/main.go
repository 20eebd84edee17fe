// Command seed-db loads the demo catalog, a pair of launch offers, and an
// admin account into a fresh database. Everything is upserted, so re-running
// it against an existing database is safe.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/karyanastore/storefront/internal/repository"
)

const (
	upsertProductSQL = `INSERT INTO products (id, name, price, category, stock, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price, category = EXCLUDED.category,
			stock = EXCLUDED.stock, image_url = EXCLUDED.image_url, updated_at = now()`

	upsertOfferSQL = `INSERT INTO offers
			(id, title, description, discount_type, value, mode, code,
			 min_purchase, max_discount, starts_at, ends_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, description = EXCLUDED.description,
			discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
			mode = EXCLUDED.mode, code = EXCLUDED.code,
			min_purchase = EXCLUDED.min_purchase, max_discount = EXCLUDED.max_discount,
			starts_at = EXCLUDED.starts_at, ends_at = EXCLUDED.ends_at,
			active = EXCLUDED.active, updated_at = now()`

	upsertAdminSQL = `INSERT INTO users (id, name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, NULL, $4, 'admin')
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`
)

type seedProduct struct {
	id       int64
	name     string
	price    int64
	category string
	image    string
	stock    int64
}

// The demo catalog mirrors the storefront's launch inventory.
var seedProducts = []seedProduct{
	{1, "Lux International Soap", 83, "soaps", "https://i.ibb.co/SXTVLFc0/Screenshot-2025-05-04-233546.jpg", 100},
	{2, "Dove Cream Beauty Bar", 60, "soaps", "https://i.ibb.co/1tnsrsCG/Screenshot-2025-05-04-233853.jpg", 100},
	{3, "Tata Salt (1kg)", 27, "food", "https://i.ibb.co/0Vjxb9BW/Screenshot-2025-05-04-233959.jpg", 200},
	{4, "Fortune Sunflower Oil (1L)", 157, "food", "https://i.ibb.co/8LQ47qtQ/Screenshot-2025-05-04-234101.jpg", 80},
	{5, "Tata Tea Gold (500g)", 215, "beverages", "https://i.ibb.co/jk5rjgnx/Screenshot-2025-05-04-234155.jpg", 60},
	{6, "Nescafe Classic Coffee (100g)", 285, "beverages", "https://i.ibb.co/zTgPrhJ0/Screenshot-2025-05-04-234245.jpg", 60},
	{7, "Head & Shoulders Shampoo (180ml)", 138, "personal-care", "https://i.ibb.co/5XkCdLn6/Screenshot-2025-05-04-234334.jpg", 90},
	{8, "Colgate Toothpaste (100g)", 73, "personal-care", "https://i.ibb.co/ksmMDzB2/Screenshot-2025-05-04-234423.jpg", 120},
	{9, "Surf Excel Matic Powder (1kg)", 175, "soaps", "https://i.ibb.co/xKPBGhYs/Screenshot-2025-05-04-234625.jpg", 70},
	{10, "Aashirvaad Atta (5kg)", 250, "food", "https://i.ibb.co/fz1BHxGH/Screenshot-2025-05-04-234719.jpg", 50},
	{11, "Maggi Noodles (Pack of 4)", 56, "food", "https://i.ibb.co/wxX6H6K/Screenshot-2025-05-04-234752.jpg", 150},
	{12, "Patanjali Dant Kanti (100g)", 60, "personal-care", "https://i.ibb.co/Qvbsst5t/Screenshot-2025-05-04-234828.jpg", 110},
}

func main() {
	var (
		databaseURL   string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminEmail, "admin-email", "admin@karyanastore.in", "admin account email")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or STORE_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("STORE_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or STORE_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedOffers(ctx, pool); err != nil {
		return errors.Wrap(err, "seed offers")
	}
	if err := seedAdmin(ctx, pool, adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}
	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("upserting products", slog.Int("count", len(seedProducts)))

	for _, p := range seedProducts {
		stock := p.stock
		if _, err := pool.Exec(ctx, upsertProductSQL,
			decimal.NewFromInt(p.id).String(), p.name, decimal.NewFromInt(p.price),
			p.category, &stock, p.image,
		); err != nil {
			return errors.Wrapf(err, "upsert product %d", p.id)
		}

		slog.Info("upserted product", slog.Int64("id", p.id), slog.String("name", p.name))
	}
	return nil
}

func seedOffers(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding launch offers")

	now := time.Now().UTC().Truncate(time.Hour)
	offers := []struct {
		id, title, description string
		discountType           string
		value                  decimal.Decimal
		mode, code             string
		minPurchase            decimal.Decimal
		maxDiscount            decimal.Decimal
	}{
		{
			id: "launch-save10", title: "Save 10%",
			description:  "10% off orders above 299, capped at 100",
			discountType: "percentage", value: decimal.NewFromInt(10),
			mode: "promo_code", code: "SAVE10",
			minPurchase: decimal.NewFromInt(299), maxDiscount: decimal.NewFromInt(100),
		},
		{
			id: "launch-flat50", title: "Flat 50 off",
			description:  "Automatic 50 off on orders above 499",
			discountType: "fixed", value: decimal.NewFromInt(50),
			mode: "automatic", minPurchase: decimal.NewFromInt(499),
		},
	}

	for _, o := range offers {
		var code *string
		if o.code != "" {
			code = &o.code
		}
		if _, err := pool.Exec(ctx, upsertOfferSQL,
			o.id, o.title, o.description, o.discountType, o.value,
			o.mode, code, o.minPurchase, o.maxDiscount, now, nil, true,
		); err != nil {
			return errors.Wrapf(err, "upsert offer %s", o.id)
		}

		slog.Info("upserted offer", slog.String("id", o.id), slog.String("title", o.title))
	}
	return nil
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	slog.Info("seeding admin account", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	if _, err := pool.Exec(ctx, upsertAdminSQL, uuid.NewString(), "Store Admin", email, hash); err != nil {
		return errors.Wrap(err, "upsert admin user")
	}
	return nil
}
