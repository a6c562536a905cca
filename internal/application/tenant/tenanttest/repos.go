package tenanttest

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/internal/domain/repository"
)

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

// ─────────────────────────────────────────────────────────────
// ProductRepository
// ─────────────────────────────────────────────────────────────

type productsRepo struct{ m *Mem }

func (r productsRepo) Create(p *entity.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *p
	r.m.products[p.ID] = &cp
	return nil
}

func (r productsRepo) GetByID(id string) (*entity.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r productsRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r productsRepo) Update(p *entity.Product) error {
	return r.Create(p)
}

func (r productsRepo) UpdateStock(id string, stock decimal.Decimal, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil
	}
	p.CurrentStock = stock
	p.UpdatedAt = at
	return nil
}

func (r productsRepo) List(limit, offset int) ([]*entity.Product, error) {
	all, _ := r.ListAll()
	return page(all, limit, offset), nil
}

func (r productsRepo) ListAll() ([]*entity.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.m.products))
	for _, p := range r.m.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r productsRepo) Delete(id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.products, id)
	return nil
}

// ─────────────────────────────────────────────────────────────
// LedgerRepository
// ─────────────────────────────────────────────────────────────

type ledgerRepo struct{ m *Mem }

func (r ledgerRepo) Create(e *entity.LedgerEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.createEntryCalls++
	if r.m.FailCreateEntryAt > 0 && r.m.createEntryCalls == r.m.FailCreateEntryAt {
		return ErrInjected
	}
	cp := *e
	r.m.entries = append(r.m.entries, &cp)
	return nil
}

func (r ledgerRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r ledgerRepo) Update(entry *entity.LedgerEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, e := range r.m.entries {
		if e.ID == entry.ID {
			cp := *entry
			r.m.entries[i] = &cp
			return nil
		}
	}
	return nil
}

func (r ledgerRepo) List(filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*entity.LedgerEntry, 0, len(r.m.entries))
	for _, e := range r.m.entries {
		if filter.ProductID != "" && e.ProductID != filter.ProductID {
			continue
		}
		if filter.From != nil && e.EffectiveDate.Before(entity.DateOnly(*filter.From)) {
			continue
		}
		if filter.To != nil && e.EffectiveDate.After(entity.DateOnly(*filter.To)) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (r ledgerRepo) ListByProductSince(productID string, from time.Time) ([]*entity.LedgerEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*entity.LedgerEntry, 0)
	for _, e := range r.m.entries {
		if e.ProductID != productID || e.EffectiveDate.Before(entity.DateOnly(from)) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r ledgerRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sum := decimal.Zero
	for _, e := range r.m.entries {
		if e.ProductID == productID {
			sum = sum.Add(e.SignedEffect())
		}
	}
	return sum, nil
}

func (r ledgerRepo) CountByProduct(productID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, e := range r.m.entries {
		if e.ProductID == productID {
			n++
		}
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────
// OrderRepository
// ─────────────────────────────────────────────────────────────

type ordersRepo struct{ m *Mem }

func (r ordersRepo) Create(o *entity.OrderRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *o
	r.m.orders[o.ID] = &cp
	return nil
}

func (r ordersRepo) GetByID(id string) (*entity.OrderRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r ordersRepo) Update(o *entity.OrderRequest) error {
	return r.Create(o)
}

func (r ordersRepo) List(status entity.OrderStatus, limit, offset int) ([]*entity.OrderRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*entity.OrderRequest, 0, len(r.m.orders))
	for _, o := range r.m.orders {
		if status != "" && o.Status != status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return page(out, limit, offset), nil
}

// ─────────────────────────────────────────────────────────────
// CountRepository
// ─────────────────────────────────────────────────────────────

type countsRepo struct{ m *Mem }

func (r countsRepo) CreateCount(c *entity.StockCount) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *c
	r.m.counts[c.ID] = &cp
	return nil
}

func (r countsRepo) CreateItem(it *entity.CountItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	byProduct := r.m.items[it.CountID]
	if byProduct == nil {
		byProduct = make(map[string]*entity.CountItem)
		r.m.items[it.CountID] = byProduct
	}
	cp := *it
	byProduct[it.ProductID] = &cp
	return nil
}

func (r countsRepo) GetCount(id string) (*entity.StockCount, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.counts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r countsRepo) GetByDate(date time.Time) (*entity.StockCount, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	day := entity.DateOnly(date)
	for _, c := range r.m.counts {
		if c.CountDate.Equal(day) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r countsRepo) UpdateCount(c *entity.StockCount) error {
	return r.CreateCount(c)
}

func (r countsRepo) GetItem(countID, productID string) (*entity.CountItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	it, ok := r.m.items[countID][productID]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r countsRepo) UpdateItem(it *entity.CountItem) error {
	return r.CreateItem(it)
}

func (r countsRepo) ListItems(countID string) ([]*entity.CountItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*entity.CountItem, 0, len(r.m.items[countID]))
	for _, it := range r.m.items[countID] {
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].ProductID, out[j].ProductID) < 0 })
	return out, nil
}

func (r countsRepo) ListCounts(limit, offset int) ([]*entity.StockCount, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*entity.StockCount, 0, len(r.m.counts))
	for _, c := range r.m.counts {
		cp := *c
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r countsRepo) PendingItems(countID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, it := range r.m.items[countID] {
		if it.ActualQuantity == nil {
			n++
		}
	}
	return n, nil
}

func (r countsRepo) DeleteCount(id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.counts, id)
	delete(r.m.items, id)
	return nil
}
