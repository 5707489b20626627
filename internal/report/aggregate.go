package report

import (
	"slices"

	"github.com/shopspring/decimal"

	"procurement/internal/model"
)

// Mode selects which statuses count toward a rollup.
type Mode string

const (
	// ModeApproved counts only approved requests.
	ModeApproved Mode = "approved"
	// ModeProjection counts everything not rejected, for budget projections.
	ModeProjection Mode = "projection"
)

func (m Mode) Valid() bool { return m == ModeApproved || m == ModeProjection }

// Options restricts an aggregation. A nil Scope means every submitter.
type Options struct {
	Mode  Mode
	Scope map[string]struct{}
}

type ItemTotal struct {
	ItemName      string          `json:"item_name"`
	TotalQuantity int             `json:"total_quantity"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

type CategoryTotal struct {
	Category      model.Category  `json:"category"`
	TotalQuantity int             `json:"total_quantity"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Items         []ItemTotal     `json:"items"`
}

// CostReport is a sparse rollup: categories without matching items are absent.
type CostReport struct {
	Categories []CategoryTotal `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Item looks up an item total by name, returning the first match in
// category order. Use Category when a name appears under several.
func (r CostReport) Item(name string) (ItemTotal, bool) {
	for _, c := range r.Categories {
		for _, it := range c.Items {
			if it.ItemName == name {
				return it, true
			}
		}
	}
	return ItemTotal{}, false
}

// Category looks up a category total.
func (r CostReport) Category(c model.Category) (CategoryTotal, bool) {
	for _, ct := range r.Categories {
		if ct.Category == c {
			return ct, true
		}
	}
	return CategoryTotal{}, false
}

func (o Options) matches(r model.ProcurementRequest) bool {
	switch o.Mode {
	case ModeProjection:
		if r.Status == model.StatusRejected {
			return false
		}
	default:
		if r.Status != model.StatusApproved {
			return false
		}
	}
	if o.Scope != nil {
		if _, ok := o.Scope[r.SubmittedBy]; !ok {
			return false
		}
	}
	return true
}

// AggregateCost sums quantity and cost per item, groups items by category and
// orders items by descending cost. Ties keep first-seen order.
func AggregateCost(requests []model.ProcurementRequest, opts Options) CostReport {
	type key struct {
		cat  model.Category
		item string
	}
	index := map[key]int{}
	var items []ItemTotal
	var cats []model.Category

	for _, r := range requests {
		if !opts.matches(r) {
			continue
		}
		k := key{r.Category, r.ItemName}
		i, ok := index[k]
		if !ok {
			i = len(items)
			index[k] = i
			items = append(items, ItemTotal{ItemName: r.ItemName, TotalCost: decimal.Zero})
			cats = append(cats, r.Category)
		}
		items[i].TotalQuantity += r.Quantity
		items[i].TotalCost = items[i].TotalCost.Add(r.TotalCost())
	}

	byCat := map[model.Category]*CategoryTotal{}
	for i, it := range items {
		c := cats[i]
		ct, ok := byCat[c]
		if !ok {
			ct = &CategoryTotal{Category: c, TotalCost: decimal.Zero}
			byCat[c] = ct
		}
		ct.Items = append(ct.Items, it)
		ct.TotalQuantity += it.TotalQuantity
		ct.TotalCost = ct.TotalCost.Add(it.TotalCost)
	}

	report := CostReport{Categories: []CategoryTotal{}, GrandTotal: decimal.Zero}
	var extra []model.Category
	for c := range byCat {
		if !c.Valid() {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	order := append(append([]model.Category(nil), model.Categories...), extra...)
	for _, c := range order {
		ct, ok := byCat[c]
		if !ok {
			continue
		}
		slices.SortStableFunc(ct.Items, func(a, b ItemTotal) int {
			return b.TotalCost.Cmp(a.TotalCost)
		})
		report.Categories = append(report.Categories, *ct)
		report.GrandTotal = report.GrandTotal.Add(ct.TotalCost)
	}
	return report
}

// RollupByDistrict aggregates each district's subtree separately, keyed by
// district name. Requests whose submitter has no district are skipped.
func RollupByDistrict(requests []model.ProcurementRequest, dir Directory, opts Options) map[string]CostReport {
	grouped := map[string][]model.ProcurementRequest{}
	var names []string
	for _, r := range requests {
		d, ok := dir.NearestAncestor(r.SubmittedBy, model.RoleDistrict)
		if !ok {
			continue
		}
		if _, seen := grouped[d.Name]; !seen {
			names = append(names, d.Name)
		}
		grouped[d.Name] = append(grouped[d.Name], r)
	}
	out := make(map[string]CostReport, len(names))
	for _, name := range names {
		rep := AggregateCost(grouped[name], opts)
		if len(rep.Categories) == 0 {
			continue
		}
		out[name] = rep
	}
	return out
}
