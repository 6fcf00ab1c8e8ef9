package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/infrastructure/mock"
	"stockdesk/console-service/internal/app/console/store"
)

func assignProduct(p entity.Product, id int64, _ time.Time) entity.Product {
	p.ID = id
	return p
}

// update(R.id, P) == {...R, ...P}
func TestProperty_UpdateIsShallowMerge(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("fields absent from the patch are preserved", prop.ForAll(
		func(name, sku string, qty int, price int64, newName string, newQty int, patchName, patchQty bool) bool {
			ctx := context.Background()
			seed := entity.Product{
				ID: 1, Name: name, SKU: sku, Quantity: qty,
				CostPrice: decimal.NewFromInt(price), SellingPrice: decimal.NewFromInt(price * 2),
			}
			backend := mock.NewCollection("products", entity.Product.GetID, assignProduct, mock.WithSeed(seed))
			s := store.New(store.Config[entity.Product]{Resource: "products", ID: entity.Product.GetID, Backend: backend})
			if _, err := s.FetchAll(ctx); err != nil {
				return false
			}

			patch := store.Patch{}
			want := seed
			if patchName {
				patch["name"] = newName
				want.Name = newName
			}
			if patchQty {
				patch["quantity"] = newQty
				want.Quantity = newQty
			}

			got, err := s.Update(ctx, 1, patch)
			if err != nil {
				t.Logf("FAIL: update error: %v", err)
				return false
			}
			stored, _ := s.Find(1)

			return got.ID == want.ID &&
				got.Name == want.Name &&
				got.SKU == want.SKU &&
				got.Quantity == want.Quantity &&
				got.CostPrice.Equal(want.CostPrice) &&
				got.SellingPrice.Equal(want.SellingPrice) &&
				stored.Name == got.Name && stored.Quantity == got.Quantity
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, 10_000),
		gen.Int64Range(0, 1_000_000),
		gen.AlphaString(),
		gen.IntRange(0, 10_000),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_RemoveIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("second remove succeeds and the id stays absent", prop.ForAll(
		func(count int, pick int) bool {
			ctx := context.Background()
			seed := make([]entity.Category, 0, count)
			for i := 1; i <= count; i++ {
				seed = append(seed, entity.Category{ID: int64(i), Name: "c"})
			}
			backend := mock.NewCollection("categories", entity.Category.GetID, assignCategory, mock.WithSeed(seed...))
			s := newCategoryStore(backend, nil)
			if _, err := s.FetchAll(ctx); err != nil {
				return false
			}

			target := int64(pick%count + 1)
			if _, err := s.Remove(ctx, target); err != nil {
				return false
			}
			if _, err := s.Remove(ctx, target); err != nil {
				return false
			}

			_, found := s.Find(target)
			return !found && len(s.Items()) == count-1
		},
		gen.IntRange(1, 30),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_AddThenFetchKeepsIDsUnique(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("items length equals server count after add and fetch", prop.ForAll(
		func(names []string) bool {
			ctx := context.Background()
			// часы стоят: id всё равно должны быть уникальны
			backend := mock.NewCollection("categories", entity.Category.GetID, assignCategory,
				mock.WithClock[entity.Category](func() time.Time { return time.UnixMilli(1_700_000_000_000) }))
			s := newCategoryStore(backend, nil)

			for _, name := range names {
				if _, err := s.Add(ctx, entity.Category{Name: name}); err != nil {
					return false
				}
			}
			if len(s.Items()) != len(names) {
				return false
			}
			if _, err := s.FetchAll(ctx); err != nil {
				return false
			}

			seen := map[int64]bool{}
			for _, item := range s.Items() {
				if seen[item.ID] {
					return false
				}
				seen[item.ID] = true
			}
			return len(s.Items()) == backend.Len()
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
