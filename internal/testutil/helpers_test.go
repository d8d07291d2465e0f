package testutil_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fjacquet/hrdir/internal/testutil"
)

const errMsgCloseBody = "Failed to close response body: %v"

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(errMsgCloseBody, err)
		}
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return resp, string(body)
}

func TestMockServerBuilder_Sequence(t *testing.T) {
	server := testutil.NewMockServer().
		WithSequence("/users/1",
			testutil.Reply(http.StatusTooManyRequests, nil).WithHeader(testutil.RetryAfterHeader, "3"),
			testutil.Reply(http.StatusOK, testutil.Item(1)),
		).Build()
	defer server.Close()

	resp, _ := get(t, http.DefaultClient, server.URL+"/users/1")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("first status = %d, want 429", resp.StatusCode)
	}
	if got := resp.Header.Get(testutil.RetryAfterHeader); got != "3" {
		t.Errorf("Retry-After = %q, want 3", got)
	}

	for i := 0; i < 2; i++ {
		resp, body := get(t, http.DefaultClient, server.URL+"/users/1")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200 (last reply repeats)", resp.StatusCode)
		}
		testutil.AssertContains(t, body, `"item-1"`)
	}

	if n := server.RequestCount("/users/1"); n != 3 {
		t.Errorf("RequestCount = %d, want 3", n)
	}
}

func TestMockServerBuilder_PagedEndpoint(t *testing.T) {
	server := testutil.NewMockServer().
		WithPagedEndpoint("/statuses", "statuses", [][]interface{}{testutil.Items(1, 2), testutil.Items(3)}).
		Build()
	defer server.Close()

	_, body := get(t, http.DefaultClient, server.URL+"/statuses?page=2")
	var envelope struct {
		Statuses []map[string]interface{} `json:"statuses"`
		Meta     map[string]struct {
			Page      int `json:"page"`
			PageCount int `json:"page_count"`
		} `json:"meta"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if len(envelope.Statuses) != 1 {
		t.Errorf("items = %d, want 1", len(envelope.Statuses))
	}
	if m := envelope.Meta["statuses"]; m.Page != 2 || m.PageCount != 2 {
		t.Errorf("meta = %+v, want page 2 of 2", m)
	}

	resp, _ := get(t, http.DefaultClient, server.URL+"/statuses?page=3")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("out of range status = %d, want 404", resp.StatusCode)
	}

	reqs := server.Requests()
	if len(reqs) != 2 || reqs[0].RawQuery != "page=2" {
		t.Errorf("recorded requests = %+v", reqs)
	}
}

func TestMockServerBuilder_TLSAndErrors(t *testing.T) {
	server := testutil.NewMockServer().
		WithTLS().
		WithErrorResponse("/users/9", http.StatusNotFound).
		WithCustomEndpoint("/custom", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}).
		Build()
	defer server.Close()

	if !strings.HasPrefix(server.URL, "https://") {
		t.Errorf("URL = %s, want https", server.URL)
	}

	resp, body := get(t, server.Client(), server.URL+"/users/9")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	testutil.AssertContains(t, body, "Not Found")

	resp, _ = get(t, server.Client(), server.URL+"/custom")
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want 418", resp.StatusCode)
	}

	resp, body = get(t, server.Client(), server.URL+"/unknown")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	testutil.AssertContains(t, body, "Endpoint not found")
}

func TestPageEnvelope_NilItems(t *testing.T) {
	env := testutil.PageEnvelope("users", nil, 1, 0)
	raw, err := json.Marshal(env)
	testutil.AssertNoError(t, err)
	testutil.AssertContains(t, string(raw), `"users":[]`)
}

func TestRecordingTimer(t *testing.T) {
	timer := testutil.NewRecordingTimer()
	timer.Start(3 * time.Second)

	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	timer.Start(0)
	<-timer.C()
	timer.Stop()

	waits := timer.Waits()
	if len(waits) != 2 || waits[0] != 3*time.Second || waits[1] != 0 {
		t.Errorf("Waits() = %v", waits)
	}
}
