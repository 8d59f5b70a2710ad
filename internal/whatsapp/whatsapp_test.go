package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var sample = Reminder{Phone: "+34612345678", ClientName: "Ana", Organization: "Fisio Centro", Professional: "Dr. Ruiz", Date: "11/06/2024", Time: "09:30"}

func TestSendReminder_NotConfigured_ReturnsNil(t *testing.T) {
	c := NewClient(Config{})
	if err := c.SendReminder(context.Background(), sample); err != nil {
		t.Errorf("unconfigured client should be a no-op, got %v", err)
	}
	if err := NewClient(Config{APIKey: "k"}).SendReminder(context.Background(), sample); err != nil {
		t.Errorf("missing campaign should be a no-op, got %v", err)
	}
}

func TestSendReminder_PostsCampaign(t *testing.T) {
	var got campaignRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "key", Campaign: "reminder_v1", URL: srv.URL})
	if err := c.SendReminder(context.Background(), sample); err != nil {
		t.Fatal(err)
	}
	if got.APIKey != "key" || got.CampaignName != "reminder_v1" || got.Destination != "+34612345678" || got.UserName != "Ana" {
		t.Errorf("payload = %+v", got)
	}
	want := []string{"Ana", "Fisio Centro", "11/06/2024", "09:30", "Dr. Ruiz"}
	if strings.Join(got.TemplateParams, "|") != strings.Join(want, "|") {
		t.Errorf("templateParams = %v, want %v", got.TemplateParams, want)
	}
}

func TestSendReminder_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"campaign not live"}`, http.StatusBadRequest)
	}))
	defer srv.Close()
	err := NewClient(Config{APIKey: "key", Campaign: "c", URL: srv.URL}).SendReminder(context.Background(), sample)
	if err == nil || !strings.Contains(err.Error(), "campaign not live") {
		t.Errorf("err = %v", err)
	}
}

func TestSendReminder_EmptyDestination(t *testing.T) {
	r := sample
	r.Phone = " "
	err := NewClient(Config{APIKey: "k", Campaign: "c"}).SendReminder(context.Background(), r)
	if !errors.Is(err, ErrEmptyDestination) {
		t.Errorf("err = %v", err)
	}
}
