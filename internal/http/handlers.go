package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"pocketbook/internal/core"
	"pocketbook/internal/middleware/ratelimit"
	"pocketbook/internal/middleware/trace"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Requests  trace.Metrics     `json:"requests"`
	RateLimit ratelimit.Metrics `json:"rateLimit"`
}

type categoryResponse struct {
	CategoryID *uuid.UUID `json:"categoryId,omitempty"`
	Name       string     `json:"name"`
	Amount     float64    `json:"amount"`
}

type periodResponse struct {
	Label    string         `json:"label"`
	Start    time.Time      `json:"start"`
	Total    float64        `json:"total"`
	Count    int            `json:"count"`
	Expenses []core.Expense `json:"expenses,omitempty"`
}

type monthResponse struct {
	Month       int     `json:"month"`
	Name        string  `json:"name"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	Investments float64 `json:"investments"`
	ProfitLoss  float64 `json:"profitLoss"`
	Manual      bool    `json:"manual"`
}

type yearResponse struct {
	Year                               int     `json:"year"`
	TotalIncome                        float64 `json:"totalIncome"`
	TotalExpenses                      float64 `json:"totalExpenses"`
	TotalInvestments                   float64 `json:"totalInvestments"`
	TotalProfitLoss                    float64 `json:"totalProfitLoss"`
	TotalProfitLossWithoutInvestments  float64 `json:"totalProfitLossWithoutInvestments"`
	AverageMonthlyPL                   float64 `json:"averageMonthlyPL"`
	AverageMonthlyPLWithoutInvestments float64 `json:"averageMonthlyPLWithoutInvestments"`
	MonthsWithData                     int     `json:"monthsWithData"`
	BestMonth                          string  `json:"bestMonth,omitempty"`
	BestMonthPL                        float64 `json:"bestMonthPL"`
	WorstMonth                         string  `json:"worstMonth,omitempty"`
	WorstMonthPL                       float64 `json:"worstMonthPL"`

	Months []monthResponse `json:"months"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, healthResponse{
		Status:    "ok",
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.ledger.BalanceSnapshot(s.ledger.Now()))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	amounts := s.ledger.Statistics().ExpensesByCategory(s.ledger.Now())
	out := make([]categoryResponse, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, categoryResponse{CategoryID: a.CategoryID, Name: a.Name, Amount: a.Amount})
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

// handlePeriods lists budget periods newest first; ?expenses=true includes
// the expenses of each period.
func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	withExpenses := r.URL.Query().Get("expenses") == "true"
	groups := s.ledger.ExpensesByPeriod()
	out := make([]periodResponse, 0, len(groups))
	for _, g := range groups {
		p := periodResponse{Label: g.Label, Start: g.Start, Total: g.Total, Count: len(g.Expenses)}
		if withExpenses {
			p.Expenses = g.Expenses
		}
		out = append(out, p)
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r, s.ledger.Now().Year())
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	stats := s.ledger.Statistics()
	y := stats.YearlyStats(year)
	resp := yearResponse{
		Year:                               y.Year,
		TotalIncome:                        y.TotalIncome,
		TotalExpenses:                      y.TotalExpenses,
		TotalInvestments:                   y.TotalInvestments,
		TotalProfitLoss:                    y.TotalProfitLoss,
		TotalProfitLossWithoutInvestments:  y.TotalProfitLossWithoutInvestments,
		AverageMonthlyPL:                   y.AverageMonthlyPL,
		AverageMonthlyPLWithoutInvestments: y.AverageMonthlyPLWithoutInvestments,
		MonthsWithData:                     y.MonthsWithData,
		BestMonthPL:                        y.BestMonthPL,
		WorstMonthPL:                       y.WorstMonthPL,
	}
	if y.MonthsWithData > 0 {
		resp.BestMonth = y.BestMonthName()
		resp.WorstMonth = y.WorstMonthName()
	}
	for _, m := range stats.MonthlyStats(year) {
		resp.Months = append(resp.Months, monthResponse{
			Month:       m.Month,
			Name:        m.MonthName(),
			Income:      m.Income,
			Expenses:    m.Expenses,
			Investments: m.Investments,
			ProfitLoss:  m.ProfitLoss,
			Manual:      m.Manual,
		})
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string][]int{
		"years": s.ledger.Statistics().AvailableYears(s.ledger.Now()),
	})
}
