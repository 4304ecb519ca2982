package tui

import (
	"sync"
	"time"

	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/notify"
)

type collectionMsg struct {
	kind   models.CollectionKind
	change notify.Change[models.Product]
}

type productsMsg struct {
	change notify.Change[models.Product]
}

type routinesMsg struct {
	change notify.Change[models.Routine]
}

// Day-scoped messages carry their date so deliveries queued before a day
// switch can be told apart from the current day's.
type applicationsMsg struct {
	date   time.Time
	change notify.Change[models.Application]
}

type routineLogsMsg struct {
	date   time.Time
	change notify.Change[models.RoutineLog]
}

type productEventMsg struct {
	id    string
	event notify.ProductEvent
}

type dayChangedMsg struct {
	date time.Time
}

// subscriptions is shared by every copy of Model.
type subscriptions struct {
	mu         sync.Mutex
	catalog    []*notify.Token
	day        []*notify.Token
	product    *notify.Token
	stopCursor func()
}

func (s *subscriptions) setCatalog(tokens ...*notify.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = tokens
}

func (s *subscriptions) replaceDay(tokens ...*notify.Token) {
	s.mu.Lock()
	old := s.day
	s.day = tokens
	s.mu.Unlock()
	for _, t := range old {
		t.Stop()
	}
}

func (s *subscriptions) replaceProduct(t *notify.Token) {
	s.mu.Lock()
	old := s.product
	s.product = t
	s.mu.Unlock()
	old.Stop()
}

func (s *subscriptions) stopAll() {
	s.mu.Lock()
	tokens := append(append([]*notify.Token{}, s.catalog...), s.day...)
	tokens = append(tokens, s.product)
	stopCursor := s.stopCursor
	s.catalog, s.day, s.product, s.stopCursor = nil, nil, nil, nil
	s.mu.Unlock()

	if stopCursor != nil {
		stopCursor()
	}
	for _, t := range tokens {
		t.Stop()
	}
}

func productKey(p models.Product) string { return p.ID }

func productEqual(a, b models.Product) bool { return a.Equal(b) }

func routineKey(r models.Routine) string { return r.ID }

func routineEqual(a, b models.Routine) bool {
	if a.Name != b.Name || len(a.Products) != len(b.Products) {
		return false
	}
	for i := range a.Products {
		if a.Products[i].ID != b.Products[i].ID || a.Products[i].Name != b.Products[i].Name {
			return false
		}
	}
	return true
}

func applicationKey(a models.Application) string { return a.ID }

func applicationEqual(a, b models.Application) bool {
	if a.Notes != b.Notes || !a.Time.Equal(b.Time) {
		return false
	}
	if (a.RoutineID == nil) != (b.RoutineID == nil) {
		return false
	}
	return a.RoutineID == nil || *a.RoutineID == *b.RoutineID
}

func routineLogKey(l models.RoutineLog) string { return l.ID }

func routineLogEqual(a, b models.RoutineLog) bool {
	if a.Name != b.Name || a.Notes != b.Notes || !a.Time.Equal(b.Time) || len(a.Products) != len(b.Products) {
		return false
	}
	for i := range a.Products {
		if a.Products[i].ID != b.Products[i].ID || a.Products[i].Name != b.Products[i].Name {
			return false
		}
	}
	return true
}

// subscribe registers the catalog-wide watches and the cursor observer.
func (m Model) subscribe() {
	hub, store, bridge := m.hub, m.store, m.bridge

	watchCollection := func(kind models.CollectionKind) *notify.Token {
		return notify.Watch(hub, []models.Scope{kind.Scope(), models.ScopeProducts},
			func() ([]models.Product, error) {
				c, err := store.GetCollection(kind)
				if err != nil {
					return nil, err
				}
				return c.Products, nil
			},
			productKey, productEqual,
			func(c notify.Change[models.Product]) { bridge.Post(collectionMsg{kind: kind, change: c}) },
		)
	}

	m.subs.setCatalog(
		watchCollection(models.CollectionStash),
		watchCollection(models.CollectionWishList),
		notify.Watch(hub, []models.Scope{models.ScopeProducts}, store.GetAllProducts,
			productKey, productEqual,
			func(c notify.Change[models.Product]) { bridge.Post(productsMsg{change: c}) },
		),
		notify.Watch(hub, []models.Scope{models.ScopeRoutines, models.ScopeProducts}, store.GetAllRoutines,
			routineKey, routineEqual,
			func(c notify.Change[models.Routine]) { bridge.Post(routinesMsg{change: c}) },
		),
	)

	stop := m.cursor.Observe(func(date time.Time) { bridge.Post(dayChangedMsg{date: date}) })
	m.subs.mu.Lock()
	m.subs.stopCursor = stop
	m.subs.mu.Unlock()

	m.watchDay(m.cursor.Get())
}

// watchDay points the day view's subscriptions at date. Each switch
// queries afresh.
func (m Model) watchDay(date time.Time) {
	hub, resolver, bridge := m.hub, m.resolver, m.bridge

	m.subs.replaceDay(
		notify.Watch(hub, []models.Scope{models.ScopeLogs},
			func() ([]models.Application, error) {
				log, err := resolver.ResolveDay(date)
				if err != nil {
					return nil, err
				}
				return log.Applications, nil
			},
			applicationKey, applicationEqual,
			func(c notify.Change[models.Application]) { bridge.Post(applicationsMsg{date: date, change: c}) },
		),
		notify.Watch(hub, []models.Scope{models.ScopeRoutineLogs, models.ScopeProducts},
			func() ([]models.RoutineLog, error) { return resolver.RoutineLogsForDay(date) },
			routineLogKey, routineLogEqual,
			func(c notify.Change[models.RoutineLog]) { bridge.Post(routineLogsMsg{date: date, change: c}) },
		),
	)
}

// observeProduct follows the product shown in the detail view.
func (m Model) observeProduct(id string) {
	bridge := m.bridge
	m.subs.replaceProduct(notify.ObserveProduct(m.hub, m.store, id, func(ev notify.ProductEvent) {
		bridge.Post(productEventMsg{id: id, event: ev})
	}))
}
