// Command promo-ingest loads partner promo code dumps into the offers table.
// Partners export huge newline-delimited gzip files of candidate codes; a
// code is only honored when at least two independent dumps agree on it.
// Each dump is far too large to hold in memory, so the tool makes two
// streaming passes: the first builds a bloom filter per file, the second
// re-streams each file testing codes against the other files' filters.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/karyanastore/storefront/internal/repository"
)

const (
	bloomCapacity = 120_000_000
	bloomFPR      = 0.001
	progressEvery = 10_000_000
	minCodeLen    = 8
	maxCodeLen    = 10
)

const upsertPromoSQL = `INSERT INTO offers
		(id, title, description, discount_type, value, mode, code,
		 min_purchase, max_discount, starts_at, active)
	VALUES ($1, $2, $3, $4, $5, 'promo_code', $6, $7, $8, $9, TRUE)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title, description = EXCLUDED.description,
		discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
		min_purchase = EXCLUDED.min_purchase, max_discount = EXCLUDED.max_discount,
		active = TRUE, updated_at = now()`

// promoRule is the offer definition attached to an ingested code.
type promoRule struct {
	title        string
	discountType string
	value        int64
	minPurchase  int64
	maxDiscount  int64
}

// Known partner campaigns get their published terms; anything else falls
// back to the standard partner rate.
var promoRules = map[string]promoRule{
	"HAPPYHRS": {title: "Happy Hours: 18% off", discountType: "percentage", value: 18},
	"FIFTYOFF": {title: "50% off your order", discountType: "percentage", value: 50, maxDiscount: 500},
	"FESTIVE5": {title: "Festive flat 50 off", discountType: "fixed", value: 50, minPurchase: 299},
	"OVER9000": {title: "Flat 90 off big baskets", discountType: "fixed", value: 90, minPurchase: 900},
}

var defaultRule = promoRule{
	title:        "Partner promo: 10% off",
	discountType: "percentage",
	value:        10,
	minPurchase:  199,
	maxDiscount:  100,
}

func main() {
	var (
		dataDir     string
		pattern     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing partner dump files")
	flag.StringVar(&pattern, "pattern", "promocodes*.gz", "glob pattern for dump files within data-dir")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, pattern, databaseURL); err != nil {
		slog.Error("promo ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("promo ingest completed successfully")
}

func run(ctx context.Context, dataDir, pattern, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, pattern))
	if err != nil {
		return errors.Wrap(err, "expand dump pattern")
	}
	if len(files) < 2 {
		return errors.Errorf("need at least 2 dump files to cross-check, found %d", len(files))
	}

	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	slog.Info("pass 2: cross-checking codes")

	codes, err := crossCheck(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "cross-check codes")
	}

	slog.Info("confirmed codes", slog.Int("count", len(codes)))
	if len(codes) == 0 {
		return nil
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return writeOffers(ctx, pool, codes)
}

// buildFilters makes one streaming pass per file, in parallel, recording
// every plausible code in that file's bloom filter.
func buildFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var seen uint64

			err := streamDump(ctx, path, func(code string) {
				filter.AddString(code)
				if seen++; seen%progressEvery == 0 {
					slog.Info("pass 1 progress", slog.Int("file", i+1), slog.Uint64("codes", seen))
				}
			})
			if err != nil {
				return errors.Wrapf(err, "filter file %d", i+1)
			}

			slog.Info("pass 1 complete", slog.Int("file", i+1), slog.Uint64("total_codes", seen))
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// crossCheck re-streams every file and keeps codes that another file's
// filter also claims. Per-file hits are merged as bitmasks so a code found
// in two or more dumps survives.
func crossCheck(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]string, error) {
	hits := make([]map[string]uint, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			candidates := make(map[string]uint)
			fileBit := uint(1) << uint(i)
			var seen uint64

			err := streamDump(ctx, path, func(code string) {
				if seen++; seen%progressEvery == 0 {
					slog.Info("pass 2 progress", slog.Int("file", i+1), slog.Uint64("codes", seen))
				}
				for j, f := range filters {
					if j == i {
						continue
					}
					if f.TestString(code) {
						candidates[code] |= fileBit
						break
					}
				}
			})
			if err != nil {
				return errors.Wrapf(err, "cross-check file %d", i+1)
			}

			slog.Info("pass 2 complete",
				slog.Int("file", i+1),
				slog.Uint64("total_codes", seen),
				slog.Int("candidates", len(candidates)),
			)
			hits[i] = candidates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, m := range hits {
		for code, mask := range m {
			merged[code] |= mask
		}
	}

	var confirmed []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			confirmed = append(confirmed, code)
		}
	}
	return confirmed, nil
}

// streamDump reads a gzip-compressed dump line by line, passing codes of
// plausible length to fn.
func streamDump(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		code := scanner.Text()
		if len(code) >= minCodeLen && len(code) <= maxCodeLen {
			fn(code)
		}
	}
	return errors.Wrapf(scanner.Err(), "scan %s", path)
}

// writeOffers upserts one promo-code offer per confirmed code.
func writeOffers(ctx context.Context, pool *pgxpool.Pool, codes []string) error {
	slog.Info("writing offers", slog.Int("count", len(codes)))

	startsAt := time.Now().UTC().Truncate(time.Hour)
	for i, code := range codes {
		rule, ok := promoRules[code]
		if !ok {
			rule = defaultRule
		}

		if _, err := pool.Exec(ctx, upsertPromoSQL,
			"partner-"+code, rule.title, rule.title, rule.discountType,
			decimal.NewFromInt(rule.value), code,
			decimal.NewFromInt(rule.minPurchase), decimal.NewFromInt(rule.maxDiscount),
			startsAt,
		); err != nil {
			return errors.Wrapf(err, "upsert offer for code %s", code)
		}

		if (i+1)%100 == 0 || i+1 == len(codes) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(codes)))
		}
	}
	return nil
}
