package reminder

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/physia/backend/internal/schedule"
)

// TargetDate is midnight of the day daysAhead after now, in loc.
func TargetDate(now time.Time, loc *time.Location, daysAhead int) time.Time {
	now = now.In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, daysAhead)
}

// LoadLocation resolves name, falling back to UTC when it is unknown.
func LoadLocation(name string, logger zerolog.Logger) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn().Err(err).Str("tz", name).Msg("unknown reminder timezone, using UTC")
		return time.UTC
	}
	return loc
}

// Server exposes a trigger endpoint so an external scheduler can run the reminders.
type Server struct {
	Store     Store
	Sender    Sender
	APIKey    string
	Location  *time.Location
	DaysAhead int
	Log       zerolog.Logger
	Now       func() time.Time
}

// Handler serves GET /health and POST /trigger[?date=YYYY-MM-DD][&dry_run=1].
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	r.HandleFunc("/trigger", s.trigger).Methods(http.MethodPost)
	return r
}

func (s *Server) trigger(w http.ResponseWriter, r *http.Request) {
	if s.APIKey != "" && r.Header.Get("X-API-Key") != s.APIKey {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	date := TargetDate(now(), loc, s.DaysAhead)
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation(schedule.DateLayout, d, loc)
		if err != nil {
			http.Error(w, `{"error":"date must be YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		date = parsed
	}
	res, err := SendAppointmentReminders(r.Context(), s.Store, s.Sender, date, Options{
		DryRun: r.URL.Query().Get("dry_run") == "1",
		Logger: s.Log,
	})
	if err != nil {
		s.Log.Error().Err(err).Str("date", date.Format(schedule.DateLayout)).Msg("reminder trigger")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"date":    date.Format(schedule.DateLayout),
		"sent":    res.Sent,
		"skipped": res.Skipped,
		"failed":  res.Failed,
	})
}
