package cart

import (
	"context"
	"fmt"
	"log"

	"flashxship-api/utils"
)

// Kind discriminates one-time purchase products from per-day rented equipment.
type Kind string

const (
	KindProduct   Kind = "product"
	KindEquipment Kind = "equipment"
)

// ItemSnapshot is a value copy of a catalog item taken at mutation time.
// Cart lines never hold a live reference to the catalog, so later price
// changes do not rewrite lines that are already in the cart.
type ItemSnapshot struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	Price             float64  `json:"price,omitempty"`
	RentalPricePerDay *float64 `json:"rental_price_per_day,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
}

// ProductItem builds the snapshot for a purchasable product.
func ProductItem(id int, name string, price float64, imageURL string) ItemSnapshot {
	return ItemSnapshot{ID: id, Name: name, Price: price, ImageURL: imageURL}
}

// EquipmentItem builds the snapshot for a rentable equipment item.
func EquipmentItem(id int, name string, pricePerDay float64, imageURL string) ItemSnapshot {
	return ItemSnapshot{ID: id, Name: name, RentalPricePerDay: &pricePerDay, ImageURL: imageURL}
}

// kindOf discriminates on the presence of the per-day rental price.
func kindOf(item ItemSnapshot) Kind {
	if item.RentalPricePerDay != nil {
		return KindEquipment
	}
	return KindProduct
}

// Line is one entry in the cart.
//
// RentalDays == 0 means "not set"; total computation treats the absence as a
// single day. It is only ever zero on the add path: UpdateRentalDays with a
// non-positive value removes the line instead.
type Line struct {
	ID         string       `json:"id"`
	Kind       Kind         `json:"kind"`
	Item       ItemSnapshot `json:"item"`
	Quantity   int          `json:"quantity"`
	RentalDays int          `json:"rental_days,omitempty"`
	LineTotal  float64      `json:"line_total"`
}

// LineID derives the deterministic line identity for a catalog item. Adding
// the same item twice updates one line instead of creating duplicates.
func LineID(kind Kind, itemID int) string {
	return fmt.Sprintf("%s-%d", kind, itemID)
}

// UserOwner is the owner key for a signed-in user's cart.
func UserOwner(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}

// SessionOwner is the owner key for an anonymous visitor's cart. Session
// carts expire; user carts do not.
func SessionOwner(sessionID string) string {
	return "session:" + sessionID
}

func unitPrice(l Line) float64 {
	if l.Kind == KindEquipment {
		perDay := 0.0
		if l.Item.RentalPricePerDay != nil {
			perDay = *l.Item.RentalPricePerDay
		}
		days := l.RentalDays
		if days < 1 {
			days = 1
		}
		return perDay * float64(days)
	}
	return l.Item.Price
}

func lineTotal(l Line) float64 {
	return utils.Round(unitPrice(l) * float64(l.Quantity))
}

// Cart is the in-memory ledger of items an owner intends to purchase or
// rent. Every mutation rewrites the full line set in the backing store.
//
// The aggregate is single-writer: one request mutates one owner's cart at a
// time. Concurrent owners (multiple tabs, multiple devices) last-write-win;
// there is deliberately no cross-writer reconciliation here.
type Cart struct {
	owner string
	lines []Line
	store Store
}

// New hydrates the owner's cart from the store. Corrupt or missing stored
// state yields an empty cart, never an error: a broken cart blob must not
// take the storefront down.
func New(ctx context.Context, store Store, owner string) *Cart {
	lines, err := store.Load(ctx, owner)
	if err != nil {
		log.Printf("Discarding unreadable cart state for %s: %v", owner, err)
		lines = nil
	}
	return &Cart{owner: owner, lines: lines, store: store}
}

// Owner returns the owner key this cart persists under.
func (c *Cart) Owner() string {
	return c.owner
}

// Lines returns the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	return c.lines
}

// AddItem puts a catalog item into the cart. An existing line for the same
// item has its quantity incremented and its snapshot replaced; days is only
// overwritten when a positive value is passed. Item fields are not validated
// here, the catalog is the source of truth for validity.
func (c *Cart) AddItem(ctx context.Context, item ItemSnapshot, quantity, days int) error {
	kind := kindOf(item)
	id := LineID(kind, item.ID)

	found := false
	for i := range c.lines {
		if c.lines[i].ID == id {
			c.lines[i].Quantity += quantity
			c.lines[i].Item = item
			if days > 0 {
				c.lines[i].RentalDays = days
			}
			c.lines[i].LineTotal = lineTotal(c.lines[i])
			found = true
			break
		}
	}

	if !found {
		line := Line{
			ID:         id,
			Kind:       kind,
			Item:       item,
			Quantity:   quantity,
			RentalDays: days,
		}
		if kind == KindProduct {
			line.RentalDays = 0
		}
		line.LineTotal = lineTotal(line)
		c.lines = append(c.lines, line)
	}

	return c.save(ctx)
}

// RemoveItem deletes the line with the given id. Removing an absent line is
// a no-op, not an error.
func (c *Cart) RemoveItem(ctx context.Context, lineID string) error {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			break
		}
	}
	return c.save(ctx)
}

// UpdateQuantity sets the quantity of a line. A non-positive quantity is
// removal intent, not invalid input.
func (c *Cart) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(ctx, lineID)
	}
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines[i].Quantity = quantity
			c.lines[i].LineTotal = lineTotal(c.lines[i])
			break
		}
	}
	return c.save(ctx)
}

// UpdateRentalDays sets the rental day count of a line, with the same
// non-positive-removes policy as UpdateQuantity. Calling it on a product
// line is accepted and leaves the total unchanged, the product formula
// ignores days.
func (c *Cart) UpdateRentalDays(ctx context.Context, lineID string, days int) error {
	if days <= 0 {
		return c.RemoveItem(ctx, lineID)
	}
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines[i].RentalDays = days
			c.lines[i].LineTotal = lineTotal(c.lines[i])
			break
		}
	}
	return c.save(ctx)
}

// Clear empties the cart unconditionally and persists the empty state.
func (c *Cart) Clear(ctx context.Context) error {
	c.lines = nil
	return c.save(ctx)
}

// Merge folds another cart's lines into this one: matching lines sum their
// quantities and keep the larger day count, unknown lines are appended. Used
// when an anonymous visitor logs in and their session cart joins their user
// cart.
func (c *Cart) Merge(ctx context.Context, other []Line) error {
	for _, incoming := range other {
		found := false
		for i := range c.lines {
			if c.lines[i].ID == incoming.ID {
				c.lines[i].Quantity += incoming.Quantity
				if incoming.RentalDays > c.lines[i].RentalDays {
					c.lines[i].RentalDays = incoming.RentalDays
				}
				c.lines[i].LineTotal = lineTotal(c.lines[i])
				found = true
				break
			}
		}
		if !found {
			line := incoming
			line.LineTotal = lineTotal(line)
			c.lines = append(c.lines, line)
		}
	}
	return c.save(ctx)
}

// GrandTotal is the sum of all line totals. It is always recomputed from the
// lines and never stored on its own, so it cannot drift.
func (c *Cart) GrandTotal() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.LineTotal
	}
	return utils.Round(total)
}

// LineCount is the number of distinct lines, used for the cart badge.
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// ItemCount is the sum of quantities across lines. Not interchangeable with
// LineCount.
func (c *Cart) ItemCount() int {
	count := 0
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

func (c *Cart) save(ctx context.Context) error {
	if err := c.store.Save(ctx, c.owner, c.lines); err != nil {
		return fmt.Errorf("failed to persist cart for %s: %v", c.owner, err)
	}
	return nil
}
