package production

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"plateful/models"
)

type fakeStore struct {
	mu            sync.Mutex
	orders        []models.Order
	pkgOrders     []models.PackageOrder
	catalog       []models.Meal
	recipes       map[string]MealRecipe
	recipeErr     error
	recipeErrOnce int // fail this many fetches, then succeed
	recipeGate    map[string]chan struct{}
	fetchCount    int
}

func (s *fakeStore) FetchOrders(ctx context.Context, statuses []string) ([]models.Order, error) {
	return s.orders, nil
}

func (s *fakeStore) FetchPackageOrders(ctx context.Context, statuses []string) ([]models.PackageOrder, error) {
	return s.pkgOrders, nil
}

func (s *fakeStore) FetchMealCatalog(ctx context.Context) ([]models.Meal, error) {
	return s.catalog, nil
}

func (s *fakeStore) FetchRecipes(ctx context.Context, mealNames []string) (map[string]MealRecipe, error) {
	s.mu.Lock()
	s.fetchCount++
	gate := s.recipeGate[mealNames[0]]
	failures := s.recipeErrOnce
	if s.recipeErrOnce > 0 {
		s.recipeErrOnce--
	}
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.recipeErr != nil && failures > 0 {
		return nil, s.recipeErr
	}

	out := make(map[string]MealRecipe)
	for _, name := range mealNames {
		if r, ok := s.recipes[name]; ok {
			out[name] = r
		}
	}
	return out, nil
}

func order(id, customer, date, meal string, n int) models.Order {
	return models.Order{
		OrderID:        id,
		CustomerName:   customer,
		Status:         models.OrderConfirmed,
		CollectionDate: date,
		Items:          []models.OrderLine{{MealID: meal, MealName: meal, Quantity: n}},
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func TestRunnerMealStageSynchronous(t *testing.T) {
	store := &fakeStore{
		orders: []models.Order{
			order("1", "Alice", "2026-03-02", "Chicken Wrap", 3),
			order("2", "Bob", "2026-03-02", "Chicken Wrap", 2),
			order("3", "Cara", "2026-03-09", "Chicken Wrap", 9), // other date, filtered
		},
		recipes: map[string]MealRecipe{
			"Chicken Wrap": {MealName: "Chicken Wrap", Ingredients: []RecipeIngredient{
				{Name: "Tortilla", Quantity: qty(1), Unit: "pcs"},
			}},
		},
	}
	runner := NewRunner(store, false, nil)
	defer runner.Close()

	summary, err := runner.StartRun(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatal(err)
	}

	// meal counts are available before ingredients resolve
	if summary.TotalMeals != 5 || summary.DistinctMeals != 1 {
		t.Fatalf("got %d meals / %d distinct, want 5 / 1", summary.TotalMeals, summary.DistinctMeals)
	}
	if len(summary.MealLineItems) != 1 || len(summary.MealLineItems[0].Orders) != 2 {
		t.Fatalf("unexpected meal line items: %+v", summary.MealLineItems)
	}

	waitFor(t, "ingredients", func() bool {
		return runner.Snapshot().State == StateIngredientsReady
	})

	final := runner.Snapshot()
	if final.DistinctIngredients != 1 || final.IngredientLineItems[0].TotalQuantity != 5 {
		t.Fatalf("unexpected ingredient totals: %+v", final.IngredientLineItems)
	}
}

func TestRunnerRejectsInvalidDate(t *testing.T) {
	runner := NewRunner(&fakeStore{}, false, nil)
	defer runner.Close()

	if _, err := runner.StartRun(context.Background(), "not-a-date"); err == nil {
		t.Fatal("expected an error for an invalid date")
	}
	if runner.Snapshot().State != StateIdle {
		t.Fatal("invalid input must not mutate state")
	}
}

func TestRunnerSupersededRunDiscarded(t *testing.T) {
	gateA := make(chan struct{})
	store := &fakeStore{
		orders: []models.Order{
			order("1", "Alice", "2026-03-02", "Meal A", 1),
			order("2", "Bob", "2026-03-03", "Meal B", 1),
		},
		recipes: map[string]MealRecipe{
			"Meal A": {MealName: "Meal A", Ingredients: []RecipeIngredient{{Name: "Apple", Quantity: qty(1), Unit: "pcs"}}},
			"Meal B": {MealName: "Meal B", Ingredients: []RecipeIngredient{{Name: "Banana", Quantity: qty(1), Unit: "pcs"}}},
		},
		recipeGate: map[string]chan struct{}{"Meal A": gateA},
	}
	runner := NewRunner(store, false, nil)
	defer runner.Close()

	// run A stalls inside its recipe fetch
	if _, err := runner.StartRun(context.Background(), "2026-03-02"); err != nil {
		t.Fatal(err)
	}

	// run B supersedes it and completes
	if _, err := runner.StartRun(context.Background(), "2026-03-03"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "run B ingredients", func() bool {
		s := runner.Snapshot()
		return s.Date == "2026-03-03" && s.State == StateIngredientsReady
	})

	// releasing A must not overwrite B's published summary
	close(gateA)
	time.Sleep(50 * time.Millisecond)

	final := runner.Snapshot()
	if final.Date != "2026-03-03" {
		t.Fatalf("superseded run overwrote the summary: %+v", final)
	}
	if len(final.IngredientLineItems) != 1 || final.IngredientLineItems[0].IngredientName != "Banana" {
		t.Fatalf("expected only run B's ingredients, got %+v", final.IngredientLineItems)
	}
}

func TestRunnerRetryAfterFailure(t *testing.T) {
	store := &fakeStore{
		orders: []models.Order{order("1", "Alice", "2026-03-02", "Meal A", 2)},
		recipes: map[string]MealRecipe{
			"Meal A": {MealName: "Meal A", Ingredients: []RecipeIngredient{{Name: "Apple", Quantity: qty(1), Unit: "pcs"}}},
		},
		recipeErr:     errors.New("store unavailable"),
		recipeErrOnce: 3, // initial attempt + both retries fail
	}
	runner := NewRunner(store, false, nil)
	runner.backoff = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	defer runner.Close()

	if _, err := runner.StartRun(context.Background(), "2026-03-02"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "terminal failure", func() bool {
		return runner.Snapshot().State == StateIngredientsFailed
	})

	failed := runner.Snapshot()
	if failed.IngredientsError == "" {
		t.Fatal("expected a terminal ingredient error")
	}
	// meal data survives the ingredient failure
	if failed.TotalMeals != 2 {
		t.Fatalf("meal data lost on ingredient failure: %+v", failed)
	}

	// manual retry reuses the computed meal line items and succeeds
	if err := runner.RetryIngredients(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "retry success", func() bool {
		return runner.Snapshot().State == StateIngredientsReady
	})

	final := runner.Snapshot()
	if final.IngredientsError != "" {
		t.Fatalf("error not cleared after retry: %q", final.IngredientsError)
	}
	if len(final.IngredientLineItems) != 1 || final.IngredientLineItems[0].TotalQuantity != 2 {
		t.Fatalf("unexpected ingredients after retry: %+v", final.IngredientLineItems)
	}
}

func TestRunnerRetryBudget(t *testing.T) {
	store := &fakeStore{
		orders:        []models.Order{order("1", "Alice", "2026-03-02", "Meal A", 1)},
		recipes:       map[string]MealRecipe{},
		recipeErr:     errors.New("flaky"),
		recipeErrOnce: 2, // initial attempt and first retry fail, second retry succeeds
	}
	runner := NewRunner(store, false, nil)
	runner.backoff = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	defer runner.Close()

	if _, err := runner.StartRun(context.Background(), "2026-03-02"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "eventual success", func() bool {
		return runner.Snapshot().State == StateIngredientsReady
	})

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.fetchCount != 3 {
		t.Fatalf("fetch count = %d, want 3", store.fetchCount)
	}
}

func TestRunnerPackageOrderResolution(t *testing.T) {
	store := &fakeStore{
		pkgOrders: []models.PackageOrder{{
			OrderID:        "pkg-1",
			CustomerName:   "Dana",
			Status:         models.OrderConfirmed,
			CollectionDate: "2026-03-02",
			Selections: []models.MealSelection{
				{MealID: "m1", Quantity: 2},
				{MealID: "ghost", Quantity: 4}, // unknown meal id
			},
		}},
		catalog: []models.Meal{{MealID: "m1", Name: "Veggie Bowl", IsActive: true}},
		recipes: map[string]MealRecipe{
			"Veggie Bowl": {MealName: "Veggie Bowl", Ingredients: []RecipeIngredient{{Name: "Rice", Quantity: qty(80), Unit: "g"}}},
		},
	}
	runner := NewRunner(store, false, nil)
	defer runner.Close()

	summary, err := runner.StartRun(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatal(err)
	}

	if summary.TotalMeals != 2 {
		t.Fatalf("got %d meals, want 2 (unknown selection excluded)", summary.TotalMeals)
	}
	if len(summary.Warnings) != 1 {
		t.Fatalf("expected one unknown-meal warning, got %v", summary.Warnings)
	}

	waitFor(t, "ingredients", func() bool {
		return runner.Snapshot().State == StateIngredientsReady
	})
	final := runner.Snapshot()
	if final.IngredientLineItems[0].TotalQuantity != 160 {
		t.Fatalf("Rice total = %v, want 160", final.IngredientLineItems[0].TotalQuantity)
	}
	// the normalization warning survives the ingredient publish
	if len(final.Warnings) != 1 {
		t.Fatalf("meal-stage warnings lost: %v", final.Warnings)
	}
}

func TestRunnerNotifyHook(t *testing.T) {
	var mu sync.Mutex
	var states []string

	store := &fakeStore{
		orders: []models.Order{order("1", "Alice", "2026-03-02", "Meal A", 1)},
		recipes: map[string]MealRecipe{
			"Meal A": {MealName: "Meal A", Ingredients: []RecipeIngredient{{Name: "Apple", Quantity: qty(1), Unit: "pcs"}}},
		},
	}
	runner := NewRunner(store, false, func(s Summary) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})
	defer runner.Close()

	if _, err := runner.StartRun(context.Background(), "2026-03-02"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "ready notification", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) >= 3 && states[len(states)-1] == StateIngredientsReady
	})

	mu.Lock()
	defer mu.Unlock()
	if states[0] != StateMealsLoaded || states[1] != StateIngredientsLoading {
		t.Fatalf("unexpected publish order: %v", states)
	}
}
