package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// startAPIStub serves canned JSON and records the last request.
func startAPIStub(t *testing.T, status int, body string) (*httptest.Server, *http.Request, *[]byte) {
	t.Helper()
	var last http.Request
	var lastBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		lastBody = buf.Bytes()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &last, &lastBody
}

func TestRecordWrite_PostsPayload(t *testing.T) {
	srv, last, lastBody := startAPIStub(t, 200, `{"key":"ab","version_seq":1,"changed":true}`)

	cmd := newRecordWriteCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--type", "customer", "--tenant", "acme", "--key", "cust-1", "--payload", `{"name":"Ada"}`})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if last.URL.Path != "/v1/records/write" {
		t.Fatalf("path: %s", last.URL.Path)
	}
	var sent map[string]any
	if err := json.Unmarshal(*lastBody, &sent); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if sent["entity_type"] != "customer" || sent["business_key"] != "cust-1" {
		t.Fatalf("unexpected request body: %v", sent)
	}
	if !strings.Contains(buf.String(), "version_seq") {
		t.Fatalf("expected result in output, got: %s", buf.String())
	}
}

func TestRecordCurrent_BuildsQuery(t *testing.T) {
	srv, last, _ := startAPIStub(t, 200, `{"identity":{},"version":{"seq":1}}`)

	cmd := newRecordCurrentCommand(func() string { return srv.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--type", "customer", "--tenant", "acme", "--key", "cust-1"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	q := last.URL.Query()
	if q.Get("entity_type") != "customer" || q.Get("tenant") != "acme" || q.Get("business_key") != "cust-1" {
		t.Fatalf("query: %v", q)
	}
}

func TestRecordCurrent_SurfacesServerError(t *testing.T) {
	srv, _, _ := startAPIStub(t, http.StatusNotFound, `{"error":"not found"}`)

	cmd := newRecordCurrentCommand(func() string { return srv.URL })
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--type", "customer", "--tenant", "acme", "--key", "missing"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestRecordWrite_PayloadFromStdin(t *testing.T) {
	srv, _, lastBody := startAPIStub(t, 200, `{"changed":true}`)

	cmd := newRecordWriteCommand(func() string { return srv.URL })
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(`{"name":"Ada"}`))
	cmd.SetArgs([]string{"--type", "customer", "--tenant", "acme", "--key", "cust-1", "--payload", "-"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(string(*lastBody), `"name":"Ada"`) {
		t.Fatalf("stdin payload not forwarded: %s", string(*lastBody))
	}
}

func TestAuditTail_BuildsFilterQuery(t *testing.T) {
	srv, last, _ := startAPIStub(t, 200, `{"entries":[],"next_seq":0}`)

	cmd := newAuditTailCommand(func() string { return srv.URL })
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--filter", `tenant == "acme"`, "--limit", "10", "--start-seq", "5"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	q := last.URL.Query()
	if q.Get("filter") != `tenant == "acme"` || q.Get("limit") != "10" || q.Get("start_seq") != "5" {
		t.Fatalf("query: %v", q)
	}
}
