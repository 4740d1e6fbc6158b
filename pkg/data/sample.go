package data

import (
	"time"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// DefaultRange is the range shown when none is selected
const DefaultRange = "2024"

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul"}

// sales, revenue per month
var salesByYear = map[string][][2]float64{
	"2024": {{4500, 2800}, {3200, 1700}, {5500, 10200}, {3000, 4200}, {2100, 5200}, {2600, 4000}, {3700, 4600}},
	"2023": {{4200, 2600}, {3100, 1500}, {5200, 10000}, {2900, 4100}, {2000, 5000}, {2500, 3900}, {3600, 4500}},
	"2022": {{4000, 2400}, {3000, 1398}, {5000, 9800}, {2780, 3908}, {1890, 4800}, {2390, 3800}, {3490, 4300}},
}

// SampleDatasets returns the dashboard's built-in datasets.
// Year ranges come first, newest first, followed by "yoy" and "acquisition".
func SampleDatasets() []*model.Dataset {
	out := make([]*model.Dataset, 0, 5)
	for _, year := range []string{"2024", "2023", "2022"} {
		out = append(out, yearDataset(year))
	}
	out = append(out, yearOverYearDataset(), acquisitionDataset())
	return out
}

func yearDataset(year string) *model.Dataset {
	rows := salesByYear[year]
	records := make([]model.PeriodRecord, len(rows))
	for i, r := range rows {
		records[i] = model.NewRecord(monthLabels[i], map[string]float64{"sales": r[0], "revenue": r[1]})
	}

	y, _ := time.Parse("2006", year)
	return &model.Dataset{
		Range:   year,
		Schema:  BuildSchema(model.SchemaSalesRevenue, nil),
		Records: records,
		EndsAt:  y.AddDate(0, len(rows), 0),
	}
}

func yearOverYearDataset() *model.Dataset {
	quarters := []struct {
		label    string
		cur, old float64
	}{
		{"Q1", 120, 105},
		{"Q2", 98, 110},
		{"Q3", 135, 118},
		{"Q4", 150, 127},
	}

	records := make([]model.PeriodRecord, len(quarters))
	for i, q := range quarters {
		records[i] = model.NewRecord(q.label, map[string]float64{"sales2024": q.cur, "sales2023": q.old}).
			WithTarget(110)
	}

	return &model.Dataset{
		Range:   "yoy",
		Schema:  BuildSchema(model.SchemaYearOverYear, []string{"sales2024", "sales2023"}),
		Records: records,
		EndsAt:  time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func acquisitionDataset() *model.Dataset {
	channels := []struct {
		name  string
		share float64
	}{
		{"Direct", 31.47},
		{"Social", 26.69},
		{"Ads", 15.69},
		{"Referral", 8.22},
	}

	records := make([]model.PeriodRecord, len(channels))
	for i, c := range channels {
		records[i] = model.NewRecord(c.name, map[string]float64{"uv": c.share})
	}

	return &model.Dataset{
		Range:   "acquisition",
		Schema:  BuildSchema(model.SchemaAcquisition, nil),
		Records: records,
		EndsAt:  time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
}

// SampleTransactions returns the recent activity shown in the transactions table
func SampleTransactions() []model.Transaction {
	base := time.Date(2024, time.July, 31, 18, 0, 0, 0, time.UTC)
	rows := []struct {
		id       string
		customer string
		email    string
		cents    int64
		status   model.TransactionStatus
	}{
		{"#1204", "Alice Johnson", "alice@example.com", 120000, model.StatusCompleted},
		{"#1205", "Bob Smith", "bob@example.com", 85000, model.StatusPending},
		{"#1206", "Charlie Brown", "char@example.com", 240000, model.StatusCompleted},
		{"#1207", "Diana Prince", "diana@example.com", 30000, model.StatusCancelled},
		{"#1208", "Evan Wright", "evan@example.com", 110000, model.StatusCompleted},
		{"#1209", "Fiona Gallagher", "fiona@example.com", 45000, model.StatusPending},
	}

	out := make([]model.Transaction, len(rows))
	for i, r := range rows {
		out[i] = model.Transaction{
			ID:          r.id,
			Customer:    r.customer,
			Email:       r.email,
			AmountCents: r.cents,
			Status:      r.status,
			// #1209 is the newest
			OccurredAt: base.Add(-time.Duration(len(rows)-1-i) * 3 * time.Hour),
		}
	}
	return out
}
