package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"GrantReport/internal/config"
	"GrantReport/internal/domain"
)

func itemJSON(id string, status string, actioned string) string {
	actionedField := `null`
	if actioned != "" {
		actionedField = strconv.Quote(actioned)
	}
	return fmt.Sprintf(`{
		"application_id": %q,
		"lead_applicant_name": "Ada",
		"lead_applicant_email": null,
		"organisation_name": "Lab",
		"amount_awarded": 1000,
		"research_area": "mental_health",
		"status": %q,
		"submitted_date": "2023-01-01",
		"actioned_date": %s
	}`, id, status, actionedField)
}

func newTestClient(serverURL, token string, pageSize int) *Client {
	return NewClient(config.UpstreamConfig{URL: serverURL + "/applications", Token: token, PageSize: pageSize}, nil, nil)
}

func TestBuildPageURL(t *testing.T) {
	t.Parallel()

	u, err := buildPageURL("https://grants.example.org/applications?region=uk", 100, 50)
	if err != nil {
		t.Fatalf("buildPageURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}

	q := parsed.Query()
	if q.Get("skip") != "100" || q.Get("limit") != "50" || q.Get("region") != "uk" {
		t.Fatalf("unexpected query: %s", parsed.RawQuery)
	}
}

func TestFetchAllPaginates(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		switch r.URL.Query().Get("skip") {
		case "0":
			fmt.Fprintf(w, `{"available_records": 3, "items": [%s, %s]}`,
				itemJSON("a", "approved", "2023-02-01"), itemJSON("b", "submitted", ""))
		case "2":
			fmt.Fprintf(w, `{"available_records": 3, "items": [%s]}`, itemJSON("c", "rejected", ""))
		default:
			t.Errorf("unexpected skip %q", r.URL.Query().Get("skip"))
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	var progress []int
	apps, err := newTestClient(server.URL, "secret", 2).FetchAll(context.Background(), func(loaded, total int) {
		progress = append(progress, loaded)
		if total != 3 {
			t.Errorf("unexpected total %d", total)
		}
	})
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	if len(apps) != 3 {
		t.Fatalf("expected 3 applications, got %d", len(apps))
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 page requests, got %d", calls)
	}
	if len(progress) != 2 || progress[1] != 3 {
		t.Fatalf("unexpected progress %v", progress)
	}

	first := apps[0]
	if first.ApplicationID != "a" || first.Status != domain.StatusApproved || first.ActionedDate != "2023-02-01" {
		t.Fatalf("unexpected first application: %+v", first)
	}
	if first.LeadApplicantName != "Ada" || first.LeadApplicantEmail != "" || first.OrganisationName != "Lab" {
		t.Fatalf("unexpected optional fields: %+v", first)
	}
	if apps[1].HasActionedDate() {
		t.Fatalf("expected null actioned date to map to empty: %+v", apps[1])
	}
}

func TestFetchAllStopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"available_records": 10, "items": []}`))
	}))
	defer server.Close()

	apps, err := newTestClient(server.URL, "secret", 2).FetchAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if len(apps) != 0 {
		t.Fatalf("expected no applications, got %d", len(apps))
	}
}

func TestFetchAllRequiresToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected without a token")
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, "", 10).FetchAll(context.Background(), nil)
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestFetchAllErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "status",
			status: http.StatusForbidden,
			body:   "bad token",
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("expected StatusError, got %v", err)
				}
				if statusErr.Code != http.StatusForbidden || statusErr.Body != "bad token" {
					t.Fatalf("unexpected status error %+v", statusErr)
				}
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   "<html></html>",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUnexpectedPayload) {
					t.Fatalf("expected ErrUnexpectedPayload, got %v", err)
				}
			},
		},
		{
			name:   "missing items",
			status: http.StatusOK,
			body:   `{"available_records": 2}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUnexpectedPayload) {
					t.Fatalf("expected ErrUnexpectedPayload, got %v", err)
				}
			},
		},
		{
			name:   "invalid item",
			status: http.StatusOK,
			body:   `{"available_records": 1, "items": [` + strings.Replace(itemJSON("x", "pending", ""), `"2023-01-01"`, `"01/01/2023"`, 1) + `]}`,
			check: func(t *testing.T, err error) {
				var itemErr *InvalidItemError
				if !errors.As(err, &itemErr) {
					t.Fatalf("expected InvalidItemError, got %v", err)
				}
				if itemErr.ApplicationID != "x" || itemErr.Index != 0 || len(itemErr.Reasons) < 2 {
					t.Fatalf("unexpected item error %+v", itemErr)
				}
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, "secret", 10).FetchAll(context.Background(), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			tc.check(t, err)
		})
	}
}

func TestDecodeItemReportsApplicationID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		raw    string
		wantID string
	}{
		{
			name:   "bad status keeps id",
			raw:    itemJSON("x-1", "pending", ""),
			wantID: "x-1",
		},
		{
			name:   "non string id",
			raw:    strings.Replace(itemJSON("x-2", "approved", ""), `"x-2"`, `42`, 1),
			wantID: "",
		},
		{
			name:   "not an object",
			raw:    `["x-3"]`,
			wantID: "",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := decodeItem(compiledItemSchema, 7, json.RawMessage(tc.raw))
			var itemErr *InvalidItemError
			if !errors.As(err, &itemErr) {
				t.Fatalf("expected InvalidItemError, got %v", err)
			}
			if itemErr.Index != 7 || itemErr.ApplicationID != tc.wantID || len(itemErr.Reasons) == 0 {
				t.Fatalf("unexpected item error %+v", itemErr)
			}
		})
	}
}

func TestDecodeItemValid(t *testing.T) {
	t.Parallel()

	app, err := decodeItem(compiledItemSchema, 0, json.RawMessage(itemJSON("ok", "rejected", "")))
	if err != nil {
		t.Fatalf("decodeItem error: %v", err)
	}
	if app.ApplicationID != "ok" || app.Status != domain.StatusRejected || app.AmountAwarded != 1000 {
		t.Fatalf("unexpected application %+v", app)
	}
}
