package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	types "github.com/teecraft/storefront/internal/domain"
	domaincatalog "github.com/teecraft/storefront/internal/domain/catalog"
	"github.com/teecraft/storefront/internal/gate"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/services"
)

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	VariantStock  int
}

type SeedResult struct {
	Products int
	Variants int
	Admin    string
}

var demoProducts = []types.Product{
	{Name: "Classic Crew Tee", Description: "Heavyweight cotton crew neck.", Price: 24.00, Category: "Unisex", ImageURL: "products/classic-crew.png"},
	{Name: "Relaxed Pocket Tee", Description: "Boxy fit with a chest pocket.", Price: 28.00, Category: "Men's", ImageURL: "products/relaxed-pocket.png"},
	{Name: "Fitted V-Neck", Description: "Soft slub jersey, fitted cut.", Price: 26.00, Category: "Women's", ImageURL: "products/fitted-vneck.png"},
	{Name: "Long Sleeve Raglan", Description: "Two-tone raglan sleeves.", Price: 32.00, Category: "Unisex", ImageURL: "products/raglan.png"},
}

// Seed inserts the demo catalog when no products exist, giving each product
// every color and size variant, and optionally creates or promotes an admin.
func (a *App) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	var res SeedResult
	dbc := dbctx.New(ctx)

	existing, err := a.Repos.Product.ListActive(dbc, "")
	if err != nil {
		return res, fmt.Errorf("list products: %w", err)
	}
	if len(existing) == 0 {
		stock := opts.VariantStock
		if stock <= 0 {
			stock = 25
		}
		err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txc := dbctx.Context{Ctx: ctx, Tx: tx}
			products := make([]*types.Product, 0, len(demoProducts))
			for i := range demoProducts {
				p := demoProducts[i]
				p.IsActive = true
				products = append(products, &p)
			}
			created, err := a.Repos.Product.Create(txc, products)
			if err != nil {
				return err
			}
			var variants []*types.ProductVariant
			for _, p := range created {
				for _, color := range domaincatalog.Colors {
					for _, size := range domaincatalog.Sizes {
						variants = append(variants, &types.ProductVariant{ProductID: p.ID, Color: color, Size: size, Stock: stock})
					}
				}
			}
			if _, err := a.Repos.ProductVariant.Create(txc, variants); err != nil {
				return err
			}
			res.Products = len(created)
			res.Variants = len(variants)
			return nil
		})
		if err != nil {
			return SeedResult{}, fmt.Errorf("seed catalog: %w", err)
		}
		a.Log.Info("Seeded demo catalog", "products", res.Products, "variants", res.Variants)
	} else {
		a.Log.Info("Catalog already present, skipping product seed", "products", len(existing))
	}

	email := strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	if email == "" {
		return res, nil
	}
	if err := a.seedAdmin(ctx, email, opts.AdminPassword); err != nil {
		return res, err
	}
	res.Admin = email
	return res, nil
}

func (a *App) seedAdmin(ctx context.Context, email, password string) error {
	dbc := dbctx.New(ctx)
	_, err := a.Services.Auth.Signup(ctx, "", services.SignupInput{
		FullName:        "Store Admin",
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		verr, ok := services.AsValidation(err)
		if !ok || verr.Message != services.MsgEmailRegistered {
			return fmt.Errorf("create admin: %w", err)
		}
	}
	profile, err := a.Repos.Profile.GetByEmail(dbc, email)
	if err != nil {
		return fmt.Errorf("load admin profile: %w", err)
	}
	if profile == nil {
		return errors.New("admin profile missing after signup")
	}
	if err := a.Repos.Profile.UpdateFields(dbc, profile.ID, map[string]interface{}{"role": gate.RoleAdmin}); err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	a.Log.Info("Admin account ready", "email", email)
	return nil
}
