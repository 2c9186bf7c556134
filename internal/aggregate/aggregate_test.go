package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
)

var may = core.YearMonth{Year: 2024, Month: 5}

func expense(amount int64, category, date string) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{ID: category + date, Amount: core.Units(amount), Category: category, Date: d}
}

func example() []core.Expense {
	return []core.Expense{
		expense(100, "Food", "2024-05-01"),
		expense(200, "Food", "2024-05-02"),
		expense(50, "Transport", "2024-05-03"),
	}
}

func TestExampleMonth(t *testing.T) {
	list := example()
	assert.Equal(t, core.Units(350), MonthlyTotal(list, may))
	assert.Equal(t, 3, ActiveDays(list, may))
	assert.Equal(t, core.Money{Cents: 11667}, AveragePerActiveDay(list, may))

	top, ok := TopCategory(list, may)
	require.True(t, ok)
	assert.Equal(t, core.CategoryAmount{Name: "Food", Amount: core.Units(300)}, top)
}

func TestAverageCountsDistinctDays(t *testing.T) {
	list := []core.Expense{
		expense(100, "Food", "2024-05-01"),
		expense(50, "Food", "2024-05-01"),
		expense(150, "Rent", "2024-05-20"),
		expense(999, "Rent", "2024-06-01"),
	}
	assert.Equal(t, 2, ActiveDays(list, may))
	assert.Equal(t, core.Units(150), AveragePerActiveDay(list, may))
}

func TestEmptyMonth(t *testing.T) {
	list := example()
	june := core.YearMonth{Year: 2024, Month: 6}
	assert.True(t, MonthlyTotal(list, june).IsZero())
	assert.True(t, AveragePerActiveDay(list, june).IsZero())
	_, ok := TopCategory(list, june)
	assert.False(t, ok)

	k := Compute(list, june)
	assert.Equal(t, 0, k.Count)
	assert.Nil(t, k.TopCategory)
	assert.Empty(t, ByCategory(nil, june))
	assert.Empty(t, ByMonth(nil))
}

func TestTopCategoryTieGoesToFirstSeen(t *testing.T) {
	list := []core.Expense{
		expense(50, "Transport", "2024-05-03"),
		expense(50, "Food", "2024-05-01"),
	}
	top, ok := TopCategory(list, may)
	require.True(t, ok)
	assert.Equal(t, "Transport", top.Name)

	top, _ = TopCategory([]core.Expense{list[1], list[0]}, may)
	assert.Equal(t, "Food", top.Name)
}

func TestByMonthSortedDescending(t *testing.T) {
	list := []core.Expense{
		expense(10, "A", "2023-12-31"),
		expense(20, "A", "2024-05-01"),
		expense(30, "B", "2024-01-15"),
		expense(40, "B", "2024-05-09"),
		expense(5, "C", "2023-12-01"),
	}
	got := ByMonth(list)
	assert.Equal(t, []core.MonthTotal{
		{Month: core.YearMonth{Year: 2024, Month: 5}, Total: core.Units(60)},
		{Month: core.YearMonth{Year: 2024, Month: 1}, Total: core.Units(30)},
		{Month: core.YearMonth{Year: 2023, Month: 12}, Total: core.Units(15)},
	}, got)
}

func TestByCategorySortedByAmount(t *testing.T) {
	list := []core.Expense{
		expense(10, "Coffee", "2024-05-01"),
		expense(500, "Rent", "2024-05-01"),
		expense(40, "Food", "2024-05-02"),
		expense(30, "Coffee", "2024-05-03"),
		expense(1000, "Old", "2024-04-03"),
	}
	assert.Equal(t, []core.CategoryAmount{
		{Name: "Rent", Amount: core.Units(500)},
		{Name: "Coffee", Amount: core.Units(40)},
		{Name: "Food", Amount: core.Units(40)},
	}, ByCategory(list, may))
}

func TestComputeMatchesIndividualFunctions(t *testing.T) {
	list := example()
	k := Compute(list, may)
	assert.Equal(t, may, k.Month)
	assert.Equal(t, MonthlyTotal(list, may), k.Total)
	assert.Equal(t, 3, k.Count)
	assert.Equal(t, AveragePerActiveDay(list, may), k.AveragePerActiveDay)
	require.NotNil(t, k.TopCategory)
	assert.Equal(t, "Food", k.TopCategory.Name)

	o := Overview(list, may)
	assert.Equal(t, core.Units(350), o.Total)
	assert.Equal(t, ByCategory(list, may), o.ByCategory)
}
