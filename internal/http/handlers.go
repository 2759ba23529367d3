package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SDhanushDev/fet/internal/core"
	"github.com/SDhanushDev/fet/internal/export"
)

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := s.svc.Wallet(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if wallet == nil {
		respondError(w, http.StatusNotFound, "wallet not initialized")
		return
	}
	respondJSON(w, http.StatusOK, wallet)
}

func (s *Server) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wallet, err := s.svc.TopUp(r.Context(), req.Amount)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, wallet)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.svc.Logs(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if logs == nil {
		logs = []core.MealLog{}
	}
	respondJSON(w, http.StatusOK, logs)
}

type commitResponse struct {
	Log    core.MealLog `json:"log"`
	Wallet core.Wallet  `json:"wallet"`
}

func (s *Server) handleCommitLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date   string `json:"date"`
		Tiffin bool   `json:"tiffin"`
		Lunch  bool   `json:"lunch"`
		Dinner bool   `json:"dinner"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sel := core.MealSelection{Tiffin: req.Tiffin, Lunch: req.Lunch, Dinner: req.Dinner}

	var (
		log    core.MealLog
		wallet core.Wallet
		err    error
	)
	if req.Date == "" {
		log, wallet, err = s.svc.CommitToday(r.Context(), sel)
	} else {
		log, wallet, err = s.svc.CommitDailyLog(r.Context(), req.Date, sel)
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, commitResponse{Log: log, Wallet: wallet})
}

func (s *Server) handleTodayLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.svc.TodayLog(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if log == nil {
		respondError(w, http.StatusNotFound, "no log for today")
		return
	}
	respondJSON(w, http.StatusOK, log)
}

func (s *Server) handleLogForDate(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	log, err := s.svc.LogForDate(r.Context(), date)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if log == nil {
		respondError(w, http.StatusNotFound, "no log for date "+date)
		return
	}
	respondJSON(w, http.StatusOK, log)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Summary(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.svc.Prices(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prices)
}

func (s *Server) handleUpdatePrices(w http.ResponseWriter, r *http.Request) {
	var prices core.MealPrices
	if err := decodeJSON(r, &prices); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.svc.UpdatePrices(r.Context(), prices); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prices)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.svc.Plan(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handleSavePlan(w http.ResponseWriter, r *http.Request) {
	var plan core.RegularMealPlan
	if err := decodeJSON(r, &plan); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.svc.SavePlan(r.Context(), plan); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Settings(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.NotificationSettings
	if err := decodeJSON(r, &settings); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.svc.SaveSettings(r.Context(), settings); err != nil {
		respondDomainError(w, r, err)
		return
	}

	if s.reminders != nil {
		if err := s.reminders.Schedule(r.Context(), settings); err != nil {
			slog.ErrorContext(r.Context(), "Failed to reschedule reminders", "error", err)
		}
	}
	respondJSON(w, http.StatusOK, settings)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	content, err := s.svc.ExportCSV(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// handleExportFile writes the CSV document under the export directory and
// returns the path, mirroring the original save-then-share flow.
func (s *Server) handleExportFile(w http.ResponseWriter, r *http.Request) {
	if s.exportDir == "" {
		respondError(w, http.StatusConflict, "file export disabled: no export directory configured")
		return
	}
	content, err := s.svc.ExportCSV(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	path, err := export.WriteFile(s.exportDir, content, time.Now())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Ledger exported to file", "path", path)
	respondJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context()); err != nil {
		respondDomainError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Ledger reset to first-run state")
	w.WriteHeader(http.StatusNoContent)
}
