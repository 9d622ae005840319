package calc

import "github.com/shopspring/decimal"

var twelve = decimal.NewFromInt(12)

// CostCategory prices all the lines of one category. Every implementation is
// a pure function of its inputs: disabled lines contribute zero and an empty
// line list is a zero total, never an error.
type CostCategory interface {
	Category() LineCategory
	MonthlyCost(lines []CostLine, params QuoteParameters, prices PriceIndex) (int64, error)
}

// AllCategories returns the closed set of category calculators in summary
// order.
func AllCategories() []CostCategory {
	return []CostCategory{
		uniformCategory{},
		examCategory{},
		mealCategory{},
		vehicleCategory{},
		infrastructureCategory{},
		itemCategory{category: CategoryItem},
		itemCategory{category: CategoryExtra},
	}
}

// uniformCategory amortizes the annual uniform renewal to a monthly figure:
// guards × changes per year × unit price / 12.
type uniformCategory struct{}

func (uniformCategory) Category() LineCategory { return CategoryUniform }

func (uniformCategory) MonthlyCost(lines []CostLine, params QuoteParameters, prices PriceIndex) (int64, error) {
	total := decimal.Zero
	for _, line := range lines {
		if !line.IsEnabled {
			continue
		}
		price, err := prices.unitPrice(line)
		if err != nil {
			return 0, err
		}
		annual := line.Quantity.
			Mul(params.UniformChangesPerYear).
			Mul(decimal.NewFromInt(price))
		total = total.Add(annual.Div(twelve))
	}
	return total.Round(0).IntPart(), nil
}

// examCategory amortizes per-hire exam cost over the average guard stay.
type examCategory struct{}

func (examCategory) Category() LineCategory { return CategoryExam }

func (examCategory) MonthlyCost(lines []CostLine, params QuoteParameters, prices PriceIndex) (int64, error) {
	stay := params.AvgStayMonths
	if stay.LessThanOrEqual(decimal.Zero) {
		stay = twelve
	}
	total := decimal.Zero
	for _, line := range lines {
		if !line.IsEnabled {
			continue
		}
		price, err := prices.unitPrice(line)
		if err != nil {
			return 0, err
		}
		total = total.Add(line.Quantity.Mul(decimal.NewFromInt(price)).Div(stay))
	}
	return total.Round(0).IntPart(), nil
}

// mealCategory charges rations per working day: quantity × days per month ×
// unit price. A line without an explicit days-per-month uses 30.
type mealCategory struct{}

func (mealCategory) Category() LineCategory { return CategoryMeal }

func (mealCategory) MonthlyCost(lines []CostLine, _ QuoteParameters, prices PriceIndex) (int64, error) {
	total := decimal.Zero
	for _, line := range lines {
		if !line.IsEnabled {
			continue
		}
		price, err := prices.unitPrice(line)
		if err != nil {
			return 0, err
		}
		days := line.DaysPerMonth
		if days.LessThanOrEqual(decimal.Zero) {
			days = decimal.NewFromInt(30)
		}
		total = total.Add(line.Quantity.Mul(days).Mul(decimal.NewFromInt(price)))
	}
	return total.Round(0).IntPart(), nil
}

// vehicleCategory prices each vehicle as rent + fuel estimate + maintenance.
// The fuel estimate is km/day × days/month ÷ km-per-liter × fuel price.
type vehicleCategory struct{}

func (vehicleCategory) Category() LineCategory { return CategoryVehicle }

func (vehicleCategory) MonthlyCost(lines []CostLine, _ QuoteParameters, _ PriceIndex) (int64, error) {
	total := decimal.Zero
	for _, line := range lines {
		if !line.IsEnabled {
			continue
		}
		cost := decimal.NewFromInt(line.MonthlyRentCLP).
			Add(fuelEstimate(line)).
			Add(decimal.NewFromInt(line.MaintenanceCLP))
		total = total.Add(cost)
	}
	return total.Round(0).IntPart(), nil
}

// infrastructureCategory prices site infrastructure as rent + maintenance,
// plus the same fuel term as vehicles when the site runs a generator.
type infrastructureCategory struct{}

func (infrastructureCategory) Category() LineCategory { return CategoryInfrastructure }

func (infrastructureCategory) MonthlyCost(lines []CostLine, _ QuoteParameters, _ PriceIndex) (int64, error) {
	total := decimal.Zero
	for _, line := range lines {
		if !line.IsEnabled {
			continue
		}
		cost := decimal.NewFromInt(line.MonthlyRentCLP).
			Add(decimal.NewFromInt(line.MaintenanceCLP))
		if line.HasFuel {
			cost = cost.Add(fuelEstimate(line))
		}
		total = total.Add(cost)
	}
	return total.Round(0).IntPart(), nil
}

func fuelEstimate(line CostLine) decimal.Decimal {
	if line.KmPerLiter.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return line.KmPerDay.
		Mul(line.DaysPerMonth).
		Div(line.KmPerLiter).
		Mul(decimal.NewFromInt(line.FuelPriceCLP))
}

// itemCategory prices generic catalog lines. It serves both the catalog-item
// and extras buckets, differing only in which category it claims.
type itemCategory struct {
	category LineCategory
}

func (c itemCategory) Category() LineCategory { return c.category }

func (c itemCategory) MonthlyCost(lines []CostLine, params QuoteParameters, prices PriceIndex) (int64, error) {
	total := decimal.Zero
	for _, line := range lines {
		if !line.IsEnabled {
			continue
		}
		price, err := prices.unitPrice(line)
		if err != nil {
			return 0, err
		}
		gross := line.Quantity.Mul(decimal.NewFromInt(price))

		mode := line.CalcMode
		if mode == "" {
			mode = CalcModeMonthly
		}
		switch mode {
		case CalcModeMonthly:
		case CalcModeAnnual:
			gross = gross.Div(twelve)
		case CalcModeAmortizedStay:
			stay := params.AvgStayMonths
			if stay.LessThanOrEqual(decimal.Zero) {
				stay = twelve
			}
			gross = gross.Div(stay)
		default:
			return 0, ErrUnknownCalcMode
		}
		total = total.Add(gross)
	}
	return total.Round(0).IntPart(), nil
}
