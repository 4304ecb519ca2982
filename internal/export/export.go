// Package export writes the whole catalog to a YAML document and reads it
// back into a store.
package export

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/utils"
)

// FormatVersion is bumped whenever Document changes incompatibly.
const FormatVersion = 1

type Document struct {
	Version     int              `yaml:"version"`
	ExportedAt  time.Time        `yaml:"exportedAt"`
	Products    []models.Product `yaml:"products"`
	Stash       []string         `yaml:"stash"`
	WishList    []string         `yaml:"wishlist"`
	Routines    []Routine        `yaml:"routines"`
	Logs        []models.Log     `yaml:"logs"`
	RoutineLogs []RoutineLog     `yaml:"routineLogs"`
}

// Routine carries its products by id.
type Routine struct {
	models.Routine `yaml:",inline"`
	ProductIDs     []string `yaml:"products"`
}

type RoutineLog struct {
	models.RoutineLog `yaml:",inline"`
	ProductIDs        []string `yaml:"products"`
}

// Summary counts what an import wrote and what it had to drop.
type Summary struct {
	Products    int
	Routines    int
	Logs        int
	RoutineLogs int
	Skipped     int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d products, %d routines, %d logs, %d routine logs (%d references skipped)",
		s.Products, s.Routines, s.Logs, s.RoutineLogs, s.Skipped)
}

// Export snapshots store. Deleted products are included so their history
// survives a round trip.
func Export(store storage.Provider) (*Document, error) {
	doc := &Document{Version: FormatVersion, ExportedAt: time.Now().UTC()}

	var err error
	if doc.Products, err = store.GetAllProductsIncludingDeleted(); err != nil {
		return nil, fmt.Errorf("failed to export products: %w", err)
	}
	for _, kind := range []models.CollectionKind{models.CollectionStash, models.CollectionWishList} {
		c, err := store.GetCollection(kind)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", kind, err)
		}
		if kind == models.CollectionStash {
			doc.Stash = c.ProductIDs()
		} else {
			doc.WishList = c.ProductIDs()
		}
	}

	routines, err := store.GetAllRoutines()
	if err != nil {
		return nil, fmt.Errorf("failed to export routines: %w", err)
	}
	for _, r := range routines {
		doc.Routines = append(doc.Routines, Routine{Routine: r, ProductIDs: r.ProductIDs()})
	}

	if doc.Logs, err = store.GetAllLogs(); err != nil {
		return nil, fmt.Errorf("failed to export logs: %w", err)
	}

	routineLogs, err := store.GetAllRoutineLogs()
	if err != nil {
		return nil, fmt.Errorf("failed to export routine logs: %w", err)
	}
	for _, rl := range routineLogs {
		doc.RoutineLogs = append(doc.RoutineLogs, RoutineLog{RoutineLog: rl, ProductIDs: rl.ProductIDs()})
	}
	return doc, nil
}

func Write(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return enc.Close()
}

func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported export version %d (expected %d)", doc.Version, FormatVersion)
	}
	return &doc, nil
}

// Import upserts products by id and then rebuilds list membership. A log
// whose day already has a log in store is merged into that log. References
// to products or routines that do not exist are dropped with a warning.
func Import(store storage.Provider, doc *Document, loc *time.Location) (Summary, error) {
	var sum Summary
	for _, p := range doc.Products {
		if err := store.AddProduct(p); err != nil {
			return sum, fmt.Errorf("failed to import product %s: %w", p.ID, err)
		}
		sum.Products++
	}

	live, err := store.GetAllProducts()
	if err != nil {
		return sum, err
	}
	known := make(map[string]bool, len(live))
	for _, p := range live {
		known[p.ID] = true
	}
	keep := func(owner string, ids []string) []models.Product {
		out := make([]models.Product, 0, len(ids))
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if !known[id] || seen[id] {
				logger.Warn("Skipping product reference", "owner", owner, "product", id)
				sum.Skipped++
				continue
			}
			seen[id] = true
			out = append(out, models.Product{ID: id})
		}
		return out
	}

	if err := store.SetCollectionProducts(models.CollectionStash, productIDs(keep("stash", doc.Stash))); err != nil {
		return sum, fmt.Errorf("failed to import stash: %w", err)
	}
	if err := store.SetCollectionProducts(models.CollectionWishList, productIDs(keep("wishlist", doc.WishList))); err != nil {
		return sum, fmt.Errorf("failed to import wishlist: %w", err)
	}

	routines := make(map[string]bool, len(doc.Routines))
	for _, r := range doc.Routines {
		routine := r.Routine
		routine.Products = keep("routine "+r.Name, r.ProductIDs)
		if err := store.AddRoutine(routine); err != nil {
			return sum, fmt.Errorf("failed to import routine %s: %w", r.ID, err)
		}
		routines[r.ID] = true
		sum.Routines++
	}
	existing, err := store.GetAllRoutines()
	if err != nil {
		return sum, err
	}
	for _, r := range existing {
		routines[r.ID] = true
	}

	for _, l := range doc.Logs {
		start, end, err := utils.DayBounds(l.Date, loc)
		if err != nil {
			logger.Warn("Skipping log with invalid date", "log", l.ID, "error", err)
			sum.Skipped++
			continue
		}
		l.DayKey = utils.DayKey(l.Date, loc)
		resolved, err := store.ResolveLog(start, end, models.Log{ID: l.ID, Date: l.Date, DayKey: l.DayKey})
		if err != nil {
			return sum, fmt.Errorf("failed to import log %s: %w", l.ID, err)
		}
		l.ID = resolved.ID
		for i := range l.Applications {
			if id := l.Applications[i].RoutineID; id != nil && !routines[*id] {
				logger.Warn("Dropping unknown routine from application", "application", l.Applications[i].ID, "routine", *id)
				l.Applications[i].RoutineID = nil
				sum.Skipped++
			}
		}
		if err := store.SaveLog(l); err != nil {
			return sum, fmt.Errorf("failed to import log %s: %w", l.ID, err)
		}
		sum.Logs++
	}

	for _, rl := range doc.RoutineLogs {
		entry := rl.RoutineLog
		entry.Products = keep("routine log "+rl.Name, rl.ProductIDs)
		if err := store.SaveRoutineLog(entry); err != nil {
			return sum, fmt.Errorf("failed to import routine log %s: %w", rl.ID, err)
		}
		sum.RoutineLogs++
	}

	logger.Info("Import complete", "summary", sum.String())
	return sum, nil
}

func productIDs(products []models.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
