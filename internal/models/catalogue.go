package models

import (
	"sort"
	"strings"
	"unicode"
)

type Category string

const (
	CategoryConveyance  Category = "conveyance"
	CategoryPurchase    Category = "purchase"
	CategoryFood        Category = "food"
	CategoryTea         Category = "tea"
	CategoryHotel       Category = "hotel"
	CategoryLabour      Category = "labour"
	CategoryCourier     Category = "courier"
	CategoryLoading     Category = "loading"
	CategoryPorter      Category = "porter"
	CategoryCartage     Category = "cartage"
	CategoryRider       Category = "rider"
	CategoryDailyWages  Category = "dailyWages"
	CategoryTransport   Category = "transport"
	CategoryMaintenance Category = "maintenance"
	CategoryContractor  Category = "contractor"
	CategoryRecharge    Category = "recharge"
	CategoryOther       Category = "other"
)

// CategorySpec describes a category: its display label and the detail fields
// a submission must carry.
type CategorySpec struct {
	Label    string
	Required []string
}

var categorySpecs = map[Category]CategorySpec{
	CategoryConveyance:  {Label: "Conveyance", Required: []string{"from", "to"}},
	CategoryPurchase:    {Label: "Purchase"},
	CategoryFood:        {Label: "Food"},
	CategoryTea:         {Label: "Tea"},
	CategoryHotel:       {Label: "Hotel", Required: []string{"rent", "days", "startingDate", "endingDate"}},
	CategoryLabour:      {Label: "Labour", Required: []string{"numberOfLabour"}},
	CategoryCourier:     {Label: "Courier"},
	CategoryLoading:     {Label: "Loading"},
	CategoryPorter:      {Label: "Porter"},
	CategoryCartage:     {Label: "Cartage"},
	CategoryRider:       {Label: "Rider"},
	CategoryDailyWages:  {Label: "Daily Wages", Required: []string{"numberOfWorkers"}},
	CategoryTransport:   {Label: "Transport"},
	CategoryMaintenance: {Label: "Maintenance"},
	CategoryContractor:  {Label: "Contractor", Required: []string{"contractorName"}},
	CategoryRecharge:    {Label: "Recharge", Required: []string{"mobileNumber"}},
	CategoryOther:       {Label: "Other"},
}

var familyCategories = map[Family][]Category{
	FamilyOffice: {
		CategoryConveyance, CategoryPurchase, CategoryFood, CategoryTea, CategoryLabour,
		CategoryCourier, CategoryLoading, CategoryPorter, CategoryCartage, CategoryRider,
		CategoryDailyWages, CategoryTransport, CategoryMaintenance, CategoryRecharge, CategoryOther,
	},
	FamilyTravel: {
		CategoryConveyance, CategoryHotel, CategoryFood, CategoryTransport, CategoryOther,
	},
	FamilyToPay: {
		CategoryContractor, CategoryLabour, CategoryPurchase, CategoryTransport,
		CategoryCartage, CategoryLoading, CategoryOther,
	},
}

// ParseCategory normalizes a category name ("Daily Wages", "daily_wages",
// "dailyWages") to its canonical form. It does not check family membership.
func ParseCategory(s string) (Category, bool) {
	key := normalizeKey(s)
	for c := range categorySpecs {
		if normalizeKey(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

// LookupCategory resolves a category within a family.
func LookupCategory(f Family, s string) (Category, CategorySpec, bool) {
	c, ok := ParseCategory(s)
	if !ok {
		return "", CategorySpec{}, false
	}
	for _, member := range familyCategories[f] {
		if member == c {
			return c, categorySpecs[c], true
		}
	}
	return "", CategorySpec{}, false
}

// CategoriesOf lists a family's categories in alphabetical order.
func CategoriesOf(f Family) []Category {
	out := append([]Category(nil), familyCategories[f]...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c Category) Label() string {
	if spec, ok := categorySpecs[c]; ok {
		return spec.Label
	}
	return string(c)
}

// ExpenseReason is the ledger reason written for the self-debit that
// accompanies every expense submission.
func (c Category) ExpenseReason() string {
	return c.Label() + " Expense"
}

// FieldLabel turns a camelCase detail key into a sentence-case label:
// "startingDate" becomes "Starting date".
func FieldLabel(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.TrimSpace(s)))
}
