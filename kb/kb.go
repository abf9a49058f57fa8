package kb

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/signalsfoundry/laserhazard/model"
)

var (
	// ErrProductExists is returned when adding a duplicate product ID.
	ErrProductExists = errors.New("product already exists")
	// ErrProductNotFound is returned for unknown product IDs.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct is returned for products that fail validation.
	ErrInvalidProduct = errors.New("invalid product")
)

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventProductAdded EventType = iota
	EventProductUpdated
	EventProductRemoved
)

func (t EventType) String() string {
	switch t {
	case EventProductAdded:
		return "added"
	case EventProductUpdated:
		return "updated"
	case EventProductRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is emitted to subscribers after a catalog change.
type Event struct {
	Type    EventType
	Product model.LaserProduct
}

// Catalog is an in-memory, thread-safe store of laser products. Products
// are stored and returned by value so callers cannot mutate the catalog.
type Catalog struct {
	mu sync.RWMutex

	products map[string]model.LaserProduct

	subs   map[int]func(Event)
	nextID int
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		products: make(map[string]model.LaserProduct),
		subs:     make(map[int]func(Event)),
	}
}

// Validate normalizes p in place and checks the fields every engine call
// relies on.
func Validate(p *model.LaserProduct) error {
	if p == nil {
		return fmt.Errorf("%w: nil product", ErrInvalidProduct)
	}
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProduct)
	}
	if p.Mode == model.EmissionUnknown {
		p.Mode = model.ParseEmissionMode(p.ModeName)
	}
	if p.Mode == model.EmissionUnknown {
		if p.Pulse != nil {
			p.Mode = model.EmissionPulsed
		} else {
			p.Mode = model.EmissionContinuous
		}
	}
	p.ModeName = p.Mode.String()

	switch {
	case !(p.WavelengthNm > 0):
		return fmt.Errorf("%w: %s: wavelength %g nm must be positive", ErrInvalidProduct, p.ID, p.WavelengthNm)
	case !(p.PowerW > 0):
		return fmt.Errorf("%w: %s: power %g W must be positive", ErrInvalidProduct, p.ID, p.PowerW)
	case p.BeamDiameterM < 0 || p.BeamDivergenceRad < 0:
		return fmt.Errorf("%w: %s: beam diameter and divergence must not be negative", ErrInvalidProduct, p.ID)
	case p.ExposureTimeS < 0 || p.AngularSubtenseMrad < 0:
		return fmt.Errorf("%w: %s: exposure time and angular subtense must not be negative", ErrInvalidProduct, p.ID)
	case p.Mode == model.EmissionPulsed && !p.IsPulsed():
		return fmt.Errorf("%w: %s: pulsed product needs a pulse width and repetition rate", ErrInvalidProduct, p.ID)
	}
	if p.DeclaredClass != "" {
		if _, ok := model.ParseEmissionClass(p.DeclaredClass); !ok {
			return fmt.Errorf("%w: %s: unknown declared class %q", ErrInvalidProduct, p.ID, p.DeclaredClass)
		}
	}
	return nil
}

// AddProduct validates and stores a new product.
func (c *Catalog) AddProduct(p model.LaserProduct) error {
	if err := Validate(&p); err != nil {
		return err
	}
	c.mu.Lock()
	if _, exists := c.products[p.ID]; exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrProductExists, p.ID)
	}
	c.products[p.ID] = p
	subs := c.snapshotSubs()
	c.mu.Unlock()

	notify(subs, Event{Type: EventProductAdded, Product: p})
	return nil
}

// UpdateProduct replaces an existing product.
func (c *Catalog) UpdateProduct(p model.LaserProduct) error {
	if err := Validate(&p); err != nil {
		return err
	}
	c.mu.Lock()
	if _, exists := c.products[p.ID]; !exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrProductNotFound, p.ID)
	}
	c.products[p.ID] = p
	subs := c.snapshotSubs()
	c.mu.Unlock()

	notify(subs, Event{Type: EventProductUpdated, Product: p})
	return nil
}

// RemoveProduct deletes a product.
func (c *Catalog) RemoveProduct(id string) error {
	c.mu.Lock()
	p, exists := c.products[id]
	if !exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}
	delete(c.products, id)
	subs := c.snapshotSubs()
	c.mu.Unlock()

	notify(subs, Event{Type: EventProductRemoved, Product: p})
	return nil
}

// GetProduct returns the product with the given ID.
func (c *Catalog) GetProduct(id string) (model.LaserProduct, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return model.LaserProduct{}, fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}
	return p, nil
}

// ListProducts returns a snapshot of all products ordered by ID.
func (c *Catalog) ListProducts() []model.LaserProduct {
	c.mu.RLock()
	res := make([]model.LaserProduct, 0, len(c.products))
	for _, p := range c.products {
		res = append(res, p)
	}
	c.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// Subscribe registers a callback for catalog events. Callbacks run outside
// the lock. It returns an unsubscribe function.
func (c *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// snapshotSubs must be called with mu held.
func (c *Catalog) snapshotSubs() []func(Event) {
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, c.subs[id])
	}
	return subs
}

func notify(subs []func(Event), ev Event) {
	for _, sub := range subs {
		sub(ev)
	}
}
