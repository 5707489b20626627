package report

import "procurement/internal/model"

// StateGrouping is district name -> taluka name -> facility name -> requests.
type StateGrouping map[string]map[string]map[string][]model.ProcurementRequest

// TalukaGrouping is facility name -> category -> requests.
type TalukaGrouping map[string]map[model.Category][]model.ProcurementRequest

// DistrictGrouping is facility name -> requests.
type DistrictGrouping map[string][]model.ProcurementRequest

type placement struct {
	facility, taluka, district model.User
}

// place resolves a request's facility and its taluka/district ancestors.
func place(r model.ProcurementRequest, dir Directory) (placement, bool) {
	fac, ok := dir.Get(r.SubmittedBy)
	if !ok || fac.Role != model.RoleBase {
		return placement{}, false
	}
	p := placement{facility: fac}
	if p.taluka, ok = dir.NearestAncestor(fac.ID, model.RoleTaluka); !ok {
		return placement{}, false
	}
	if p.district, ok = dir.NearestAncestor(fac.ID, model.RoleDistrict); !ok {
		return placement{}, false
	}
	return p, true
}

// GroupForState nests requests by district, taluka and facility.
// Requests that cannot be placed are dropped.
func GroupForState(requests []model.ProcurementRequest, dir Directory) StateGrouping {
	out := StateGrouping{}
	for _, r := range requests {
		p, ok := place(r, dir)
		if !ok {
			continue
		}
		talukas, ok := out[p.district.Name]
		if !ok {
			talukas = map[string]map[string][]model.ProcurementRequest{}
			out[p.district.Name] = talukas
		}
		facilities, ok := talukas[p.taluka.Name]
		if !ok {
			facilities = map[string][]model.ProcurementRequest{}
			talukas[p.taluka.Name] = facilities
		}
		facilities[p.facility.Name] = append(facilities[p.facility.Name], r)
	}
	return out
}

// GroupForDistrict groups requests by facility.
func GroupForDistrict(requests []model.ProcurementRequest, dir Directory) DistrictGrouping {
	out := DistrictGrouping{}
	for _, r := range requests {
		p, ok := place(r, dir)
		if !ok {
			continue
		}
		out[p.facility.Name] = append(out[p.facility.Name], r)
	}
	return out
}

// GroupForTaluka groups requests by facility, then category.
func GroupForTaluka(requests []model.ProcurementRequest, dir Directory) TalukaGrouping {
	out := TalukaGrouping{}
	for _, r := range requests {
		p, ok := place(r, dir)
		if !ok {
			continue
		}
		cats, ok := out[p.facility.Name]
		if !ok {
			cats = map[model.Category][]model.ProcurementRequest{}
			out[p.facility.Name] = cats
		}
		cats[r.Category] = append(cats[r.Category], r)
	}
	return out
}

// GroupForRole picks the grouping that matches the viewer's tier.
// Facilities have no grouped view.
func GroupForRole(requests []model.ProcurementRequest, dir Directory, role model.Role) (any, bool) {
	switch role {
	case model.RoleState:
		return GroupForState(requests, dir), true
	case model.RoleDistrict:
		return GroupForDistrict(requests, dir), true
	case model.RoleTaluka:
		return GroupForTaluka(requests, dir), true
	}
	return nil, false
}
