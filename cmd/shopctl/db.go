package main

import (
	"context"
	"fmt"
	"time"

	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the products, orders and order_items tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := repository.OpenMySQL(&cfg.MySQL)
			if err != nil {
				return err
			}
			repo := repository.NewMySQLRepository(db)
			defer repo.Close()

			if err := repo.AutoMigrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema migrated")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert or refresh the demo catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := repository.OpenMySQL(&cfg.MySQL)
			if err != nil {
				return err
			}
			repo := repository.NewMySQLRepository(db)
			defer repo.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			products := demoCatalog()
			if err := repo.SaveProducts(ctx, products); err != nil {
				return fmt.Errorf("failed to seed products: %w", err)
			}

			if cfg.Redis.Addr != "" {
				cache := repository.NewRedisRepository(&cfg.Redis)
				defer cache.Close()
				if err := cache.InvalidateCatalog(ctx); err != nil {
					log.Warn("Failed to invalidate catalog cache", zap.Error(err))
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", len(products))
			return nil
		},
	}
}

// demoCatalog covers the three stock layouts: flat, per-size counts and
// per-size entries carrying their own price.
func demoCatalog() []models.Product {
	price := func(n int64) *decimal.Decimal {
		d := decimal.NewFromInt(n)
		return &d
	}
	stock := func(n int) *int { return &n }

	return []models.Product{
		{
			ID:          "empanada-carne",
			Name:        "Empanada de carne",
			Description: "Carne cortada a cuchillo, horneada.",
			Category:    "empanadas",
			Price:       decimal.NewFromInt(900),
			Active:      true,
		},
		{
			ID:          "flan-casero",
			Name:        "Flan casero",
			Description: "Con dulce de leche.",
			Category:    "postres",
			Price:       decimal.NewFromInt(2500),
			SalePrice:   decimal.NewNullDecimal(decimal.NewFromInt(2000)),
			Stock:       stock(12),
			Active:      true,
		},
		{
			ID:       "pizza-muzzarella",
			Name:     "Pizza muzzarella",
			Category: "pizzas",
			Price:    decimal.NewFromInt(8000),
			StockBySize: models.SizeStockMap{
				"Chica":  models.CountEntry(10),
				"Grande": models.CountEntry(6),
			},
			Active: true,
		},
		{
			ID:       "milanesa-napolitana",
			Name:     "Milanesa napolitana",
			Category: "platos",
			Price:    decimal.NewFromInt(9500),
			StockBySize: models.SizeStockMap{
				"Individual": {Kind: models.SizeEntryDetail, Stock: stock(8), Price: price(9500)},
				"Para dos":   {Kind: models.SizeEntryDetail, Stock: stock(4), Price: price(17000), SalePrice: price(15500)},
			},
			Active: true,
		},
	}
}
