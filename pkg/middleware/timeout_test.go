package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRequestTimeout_SlowHandlerGets503(t *testing.T) {
	handler := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("expected JSON content type, got %q", got)
	}
	if !strings.Contains(rr.Body.String(), "Request timeout") {
		t.Errorf("expected timeout body, got %q", rr.Body.String())
	}
}

func TestRequestTimeout_FastHandlerPassesThrough(t *testing.T) {
	handler := RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if rr.Body.String() != `{"id":1}` {
		t.Errorf("expected handler body untouched, got %q", rr.Body.String())
	}
}

func TestRequestTimeout_HonorsTighterCallerDeadline(t *testing.T) {
	callerDeadline := time.Now().Add(30 * time.Millisecond)
	ctx, cancel := context.WithDeadline(context.Background(), callerDeadline)
	defer cancel()

	var observed time.Time
	handler := RequestTimeout(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observed, _ = r.Context().Deadline()
		<-r.Context().Done()
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	start := time.Now()
	handler.ServeHTTP(rr, req)

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("caller deadline was extended, request took %s", elapsed)
	}
	if observed.After(callerDeadline) {
		t.Errorf("handler deadline %s is looser than the caller's %s", observed, callerDeadline)
	}
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 once the deadline passed, got %d", rr.Code)
	}
}

func TestRequestTimeout_StartedResponseIsNotOverwritten(t *testing.T) {
	handler := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		<-r.Context().Done()
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected the handler's status to stand, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "Request timeout") {
		t.Errorf("timeout body must not be appended to a started response, got %q", rr.Body.String())
	}
}

func TestRequestTimeout_ClientCancelWritesNoBody(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	handler := RequestTimeout(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	handler.ServeHTTP(rr, req)

	if rr.Body.Len() != 0 {
		t.Errorf("expected no body for a cancelled request, got %q", rr.Body.String())
	}
}
