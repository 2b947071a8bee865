package production

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"plateful/models"
)

// Run states for one aggregation run.
const (
	StateIdle               = "idle"
	StateMealsLoaded        = "meals-loaded"
	StateIngredientsLoading = "ingredients-loading"
	StateIngredientsReady   = "ingredients-ready"
	StateIngredientsFailed  = "ingredients-failed"
)

// Summary is the production report for one collection date. The meal portion
// and the ingredient portion are published at different times by the same
// run, so a reader may see meals populated while ingredients still load.
type Summary struct {
	Date                    string               `json:"date"`
	State                   string               `json:"state"`
	TotalMeals              int                  `json:"totalMeals"`
	DistinctMeals           int                  `json:"distinctMeals"`
	MealLineItems           []MealLineItem       `json:"mealLineItems"`
	IngredientLineItems     []IngredientLineItem `json:"ingredientLineItems"`
	TotalIngredientQuantity float64              `json:"totalIngredientQuantity"` // unit-heterogeneous, display only
	DistinctIngredients     int                  `json:"distinctIngredients"`
	Warnings                []string             `json:"warnings"`
	IngredientsError        string               `json:"ingredientsError,omitempty"`
}

var errSuperseded = errors.New("run superseded")

// recipeBackoff delays applied before retrying the recipe fetch.
var recipeBackoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

const recipeRetries = 2

// Runner coordinates production aggregation runs. At most one run's results
// are live: starting a run for a new date supersedes the previous one, and a
// superseded run's eventual completion never mutates published state. The
// token guards publication; the per-run context stops pending backoff timers.
type Runner struct {
	store   Store
	strict  bool
	notify  func(Summary) // optional, called with a copy after each publish
	backoff []time.Duration

	mu        sync.Mutex
	token     uint64
	cancel    context.CancelFunc
	closed    bool
	summary   Summary
	lineItems []MealLineItem // meal stage output, reused by ingredient retries
	mealWarns []string
}

func NewRunner(store Store, strict bool, notify func(Summary)) *Runner {
	return &Runner{
		store:   store,
		strict:  strict,
		notify:  notify,
		backoff: recipeBackoff,
		summary: Summary{State: StateIdle},
	}
}

// Snapshot returns a copy of the latest published summary.
func (r *Runner) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// StartRun aggregates production for a YYYY-MM-DD collection date. The meal
// stage completes before StartRun returns; ingredient resolution continues
// asynchronously and is observable via Snapshot or the notify hook.
func (r *Runner) StartRun(ctx context.Context, date string) (Summary, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Summary{}, fmt.Errorf("invalid production date %q", date)
	}

	token, runCtx, err := r.issueToken(ctx)
	if err != nil {
		return Summary{}, err
	}

	// Order and package-order fetches run concurrently, joined before the
	// meal stage proceeds.
	type ordersResult struct {
		orders []KitchenOrder
		warns  []string
		err    error
	}
	resCh := make(chan ordersResult, 1)
	go func() {
		orders, pkgOrders, catalog, err := r.fetchOrderData(runCtx)
		if err != nil {
			resCh <- ordersResult{err: err}
			return
		}
		normalized, warns := NormalizeOrders(
			FilterOrdersByCollectionDate(orders, date),
			FilterPackageOrdersByCollectionDate(pkgOrders, date),
			catalog,
		)
		resCh <- ordersResult{orders: normalized, warns: warns}
	}()

	var res ordersResult
	select {
	case res = <-resCh:
	case <-runCtx.Done():
		return Summary{}, errSuperseded
	}
	if res.err != nil {
		return Summary{}, fmt.Errorf("fetching orders: %w", res.err)
	}

	lineItems := BuildMealLineItems(res.orders)

	totalMeals := 0
	for _, item := range lineItems {
		totalMeals += item.TotalQuantity
	}

	published := r.publish(token, func(s *Summary) {
		*s = Summary{
			Date:          date,
			State:         StateMealsLoaded,
			TotalMeals:    totalMeals,
			DistinctMeals: len(lineItems),
			MealLineItems: lineItems,
			Warnings:      res.warns,
		}
		r.lineItems = lineItems
		r.mealWarns = res.warns
	})
	if !published {
		return Summary{}, errSuperseded
	}

	go r.resolveIngredients(runCtx, token, lineItems, res.warns)

	return r.Snapshot(), nil
}

// RetryIngredients re-runs only the ingredient stage against the already
// computed meal line items, under a fresh token.
func (r *Runner) RetryIngredients(ctx context.Context) error {
	r.mu.Lock()
	if r.summary.Date == "" {
		r.mu.Unlock()
		return errors.New("no production run to retry")
	}
	lineItems := r.lineItems
	mealWarns := r.mealWarns
	r.mu.Unlock()

	token, runCtx, err := r.issueToken(ctx)
	if err != nil {
		return err
	}

	go r.resolveIngredients(runCtx, token, lineItems, mealWarns)
	return nil
}

// Close tears the runner down: the current run is cancelled and no further
// state writes occur.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
	}
}

// issueToken supersedes any in-flight run: the previous context is cancelled
// so its pending backoff timers stop, and a new token is handed out.
func (r *Runner) issueToken(parent context.Context) (uint64, context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, nil, errors.New("runner closed")
	}
	if r.cancel != nil {
		r.cancel()
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(parent))
	r.cancel = cancel
	r.token++
	return r.token, runCtx, nil
}

// publish applies fn to the shared summary only while token is still the
// latest one and the runner is alive. Superseded runs become no-ops here.
func (r *Runner) publish(token uint64, fn func(*Summary)) bool {
	r.mu.Lock()
	if r.closed || token != r.token {
		r.mu.Unlock()
		return false
	}
	fn(&r.summary)
	copied := r.summary
	notify := r.notify
	r.mu.Unlock()

	if notify != nil {
		notify(copied)
	}
	return true
}

// fetchOrderData issues the order, package-order and catalog fetches
// concurrently and joins them.
func (r *Runner) fetchOrderData(ctx context.Context) ([]models.Order, []models.PackageOrder, []models.Meal, error) {
	var (
		wg        sync.WaitGroup
		orders    []models.Order
		pkgOrders []models.PackageOrder
		catalog   []models.Meal
	)
	errs := make([]error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		orders, errs[0] = r.store.FetchOrders(ctx, ProductionStatuses)
	}()
	go func() {
		defer wg.Done()
		pkgOrders, errs[1] = r.store.FetchPackageOrders(ctx, ProductionStatuses)
	}()
	go func() {
		defer wg.Done()
		catalog, errs[2] = r.store.FetchMealCatalog(ctx)
	}()
	wg.Wait()

	return orders, pkgOrders, catalog, errors.Join(errs...)
}

// resolveIngredients runs the ingredient stage: batched recipe fetch with
// retries, then the join, publishing only while its token is current.
func (r *Runner) resolveIngredients(ctx context.Context, token uint64, lineItems []MealLineItem, mealWarns []string) {
	r.publish(token, func(s *Summary) {
		s.State = StateIngredientsLoading
		s.IngredientsError = ""
	})

	names := make([]string, len(lineItems))
	for i, item := range lineItems {
		names[i] = item.MealName
	}

	recipes, err := r.fetchRecipesWithRetry(ctx, names)
	if err != nil {
		if ctx.Err() != nil {
			// superseded run, vanish silently
			return
		}
		log.Printf("[production] recipe fetch failed after retries: %v", err)
		r.publish(token, func(s *Summary) {
			s.State = StateIngredientsFailed
			s.IngredientsError = "failed to load recipe data: " + err.Error()
		})
		return
	}

	items, warns := ResolveIngredients(lineItems, recipes, r.strict)

	var totalQty float64
	for _, item := range items {
		totalQty += item.TotalQuantity
	}

	r.publish(token, func(s *Summary) {
		s.State = StateIngredientsReady
		s.IngredientLineItems = items
		s.TotalIngredientQuantity = totalQty
		s.DistinctIngredients = len(items)
		s.Warnings = append(append([]string(nil), mealWarns...), warns...)
	})
}

// fetchRecipesWithRetry attempts the batched recipe fetch up to recipeRetries
// extra times, sleeping per the backoff schedule. The sleep aborts as soon as
// the run context is cancelled so a superseded run leaves no pending timers.
func (r *Runner) fetchRecipesWithRetry(ctx context.Context, names []string) (map[string]MealRecipe, error) {
	var lastErr error
	for attempt := 0; attempt <= recipeRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(r.backoff[attempt-1])
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
			log.Printf("[production] retrying recipe fetch (attempt %d)", attempt+1)
		}

		recipes, err := r.store.FetchRecipes(ctx, names)
		if err == nil {
			return recipes, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, lastErr
}
