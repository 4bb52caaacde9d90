package report

import "time"

type FinancialReport struct {
	From            time.Time      `json:"from"`
	To              time.Time      `json:"to"`
	Sessions        int64          `json:"sessions"`
	Billed          int64          `json:"billed"`
	Collected       int64          `json:"collected"`
	Outstanding     int64          `json:"outstanding"`
	AverageFee      float64        `json:"averageFee"`
	ByDay           []DailyRevenue `json:"byDay"`
	ByVehicleType   []Breakdown    `json:"byVehicleType"`
	ByPaymentMethod []Breakdown    `json:"byPaymentMethod"`
	Credit          CreditSummary  `json:"credit"`
}

type DailyRevenue struct {
	Date     string `json:"date"`
	Sessions int64  `json:"sessions"`
	Billed   int64  `json:"billed"`
}

type Breakdown struct {
	Key        string  `json:"key"`
	Count      int64   `json:"count"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type CreditSummary struct {
	Charged      int64 `json:"charged"`
	Deducted     int64 `json:"deducted"`
	Refunded     int64 `json:"refunded"`
	Adjusted     int64 `json:"adjusted"`
	Transactions int64 `json:"transactions"`
}

// CreditTotal is one transaction type's sum over a period.
type CreditTotal struct {
	Type   string
	Count  int64
	Amount int64
}

type RevenueSummary struct {
	Sessions  int64
	Billed    int64
	Collected int64
}

type TrafficReport struct {
	From                   time.Time     `json:"from"`
	To                     time.Time     `json:"to"`
	Entries                int64         `json:"entries"`
	Exits                  int64         `json:"exits"`
	Cancelled              int64         `json:"cancelled"`
	ActiveSessions         int64         `json:"activeSessions"`
	AverageDurationMinutes float64       `json:"averageDurationMinutes"`
	PeakHour               int           `json:"peakHour"`
	PeakHourEntries        int64         `json:"peakHourEntries"`
	ByHour                 []HourlyCount `json:"byHour"`
	ByVehicleType          []Breakdown   `json:"byVehicleType"`
}

type TrafficSummary struct {
	Entries                int64
	Exits                  int64
	Cancelled              int64
	AverageDurationMinutes float64
}

type HourlyCount struct {
	Hour    int   `json:"hour"`
	Entries int64 `json:"entries"`
	Exits   int64 `json:"exits"`
}
