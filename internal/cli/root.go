package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/skinlog/internal/backup"
	"github.com/julianstephens/skinlog/internal/catalog"
	"github.com/julianstephens/skinlog/internal/config"
	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/daylog"
	"github.com/julianstephens/skinlog/internal/keyring"
	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/notify"
	"github.com/julianstephens/skinlog/internal/session"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/utils"
	"github.com/julianstephens/skinlog/internal/validation"
)

type Context struct {
	Store       storage.Provider
	Config      *config.Config
	ConfigPath  string
	Hub         *notify.Hub
	Resolver    *daylog.Resolver
	Credentials keyring.Credentials
}

// New wires a command context around store. The resolver uses cfg's
// timezone.
func New(store storage.Provider, cfg *config.Config) (*Context, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return &Context{
		Store:    store,
		Config:   cfg,
		Hub:      notify.NewHub(),
		Resolver: daylog.NewResolver(store, loc),
	}, nil
}

// Open authenticates and loads the store, opening the hub's ready gate.
func (c *Context) Open(ctx context.Context) error {
	return session.Open(ctx, c.Store, c.Credentials, c.Hub)
}

func (c *Context) Close() {
	if c.Hub != nil {
		c.Hub.Close()
	}
	if err := c.Store.Close(); err != nil {
		logger.Warn("Failed to close store", "error", err)
	}
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if c.Config != nil && !c.Config.Backup.Enabled {
		return
	}
	if c.Config != nil && c.Config.IsPostgres() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// FindProduct resolves ref as a product id, then as a case-insensitive
// name. An ambiguous name is an error.
func (c *Context) FindProduct(ref string) (models.Product, error) {
	if p, err := c.Store.GetProduct(ref); err == nil {
		return p, nil
	}
	products, err := c.Store.GetAllProducts()
	if err != nil {
		return models.Product{}, err
	}
	var matches []models.Product
	for _, p := range products {
		if strings.EqualFold(p.Name, strings.TrimSpace(ref)) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return models.Product{}, fmt.Errorf("product %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Product{}, fmt.Errorf("%d products are named %q, use the id instead", len(matches), ref)
	}
}

// FindRoutine resolves ref as a routine id or name.
func (c *Context) FindRoutine(ref string) (models.Routine, error) {
	if r, err := c.Store.GetRoutine(ref); err == nil {
		return r, nil
	}
	routines, err := c.Store.GetAllRoutines()
	if err != nil {
		return models.Routine{}, err
	}
	for _, r := range routines {
		if strings.EqualFold(r.Name, strings.TrimSpace(ref)) {
			return r, nil
		}
	}
	return models.Routine{}, fmt.Errorf("routine %q: %w", ref, storage.ErrNotFound)
}

// Day parses a YYYY-MM-DD date in the configured timezone, defaulting to
// today, then moves it by offset days.
func (c *Context) Day(date string, offset int) (time.Time, error) {
	day := c.Resolver.Today()
	if date != "" {
		d, err := utils.ParseDateInLocation(date, c.Resolver.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", date)
		}
		day = d
	}
	if offset == 0 {
		return day, nil
	}
	return c.Resolver.ChangeDay(day, offset)
}

// At combines day with an optional HH:MM time. A blank time means now when
// day is today and midday otherwise.
func (c *Context) At(day time.Time, clock string) (time.Time, error) {
	if clock != "" {
		t, err := utils.AtTimeOfDay(day, clock)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q (expected HH:MM)", clock)
		}
		return t, nil
	}
	now := c.Resolver.Today()
	if utils.DayKey(day, c.Resolver.Location()) == utils.DayKey(now, c.Resolver.Location()) {
		return now, nil
	}
	return utils.AtTimeOfDay(day, "12:00")
}

// Position converts a 1-based list position to an index.
func Position(pos int) int {
	return pos - 1
}

// DescribeProduct renders a one-line summary.
func DescribeProduct(p models.Product) string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Brand != "" {
		fmt.Fprintf(&b, " (%s)", p.Brand)
	}
	fmt.Fprintf(&b, " [%s]", p.Category)
	if p.PriceCents != nil {
		fmt.Fprintf(&b, " $%s", validation.FormatPrice(*p.PriceCents))
	}
	if p.Rating != nil && *p.Rating >= 0 && *p.Rating <= 5 {
		fmt.Fprintf(&b, " %s", strings.Repeat("★", *p.Rating)+strings.Repeat("☆", 5-*p.Rating))
	}
	if p.ExpirationDate != nil {
		fmt.Fprintf(&b, " exp %s", p.ExpirationDate.Format(constants.DateFormat))
	}
	return b.String()
}

// PrintProducts prints products as a numbered list.
func PrintProducts(products []models.Product) {
	width := len(strconv.Itoa(len(products)))
	for i, p := range products {
		fmt.Printf("  %*d. %s\n", width, i+1, DescribeProduct(p))
	}
}

// PrintSections prints products grouped by category, filtered by term.
func PrintSections(products []models.Product, term string) error {
	sections := catalog.Sections(products, term)
	if len(sections) == 0 {
		fmt.Println("No products found.")
		return nil
	}
	for i, s := range sections {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s (%d)\n", s.Title, len(s.Products))
		for _, p := range s.Products {
			fmt.Printf("  - %s\n", DescribeProduct(p))
		}
	}
	return nil
}
