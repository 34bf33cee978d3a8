package notifier_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/secretwatch/expiry-tracker/internal/domain"
	"github.com/secretwatch/expiry-tracker/internal/notifier"
	"github.com/secretwatch/expiry-tracker/internal/repository"
	"github.com/secretwatch/expiry-tracker/internal/teams"
	"github.com/secretwatch/expiry-tracker/internal/webhook"
)

var now = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

// mockDispatcher records every delivery and fails for configured URLs.
type mockDispatcher struct {
	mu       sync.Mutex
	calls    []deliveryCall
	failURLs map[string]bool
}

type deliveryCall struct {
	url string
	msg *teams.Message
}

func (d *mockDispatcher) Deliver(_ context.Context, url string, msg *teams.Message) webhook.Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, deliveryCall{url: url, msg: msg})
	if d.failURLs[url] {
		return webhook.Outcome{Status: 500}
	}
	return webhook.Outcome{Success: true, Status: 200}
}

func (d *mockDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type fixture struct {
	notifier   *notifier.Notifier
	customers  *repository.MockCustomerRepository
	secrets    *repository.MockSecretRepository
	dispatcher *mockDispatcher
}

func newFixture(workers int) *fixture {
	customers := repository.NewMockCustomerRepository()
	secrets := repository.NewMockSecretRepository(customers)
	dispatcher := &mockDispatcher{failURLs: make(map[string]bool)}

	n := notifier.New(secrets, dispatcher, nil, zap.NewNop(),
		14, "http://localhost:3000", workers, notifier.Hooks{})
	return &fixture{notifier: n, customers: customers, secrets: secrets, dispatcher: dispatcher}
}

func (f *fixture) addCustomer(t *testing.T, id, name, url string) {
	t.Helper()
	err := f.customers.Create(context.Background(), &domain.Customer{
		ID: id, Name: name, WebhookURL: url,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) addSecret(t *testing.T, id, name, customerID string, daysAhead int) {
	t.Helper()
	err := f.secrets.Create(context.Background(), &domain.Secret{
		ID: id, Name: name, CustomerID: customerID,
		ExpiryDate: now.AddDate(0, 0, daysAhead),
		CreatedAt:  now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunOnce_GroupsAndCounts(t *testing.T) {
	f := newFixture(1)
	f.addCustomer(t, "a", "Customer A", "https://hooks.example.com/a")
	f.addCustomer(t, "b", "Customer B", "https://hooks.example.com/b")
	f.addSecret(t, "s1", "cert A", "a", 3)
	f.addSecret(t, "s2", "cert B1", "b", 10)
	f.addSecret(t, "s3", "cert B2", "b", 20) // outside the 14-day horizon

	result, err := f.notifier.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalCustomers != 2 {
		t.Fatalf("expected totalCustomers=2, got %d", result.TotalCustomers)
	}
	if result.NotificationsSent != 2 {
		t.Fatalf("expected notificationsSent=2, got %d", result.NotificationsSent)
	}
	if len(result.Details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(result.Details))
	}

	// Groups come back ordered by nearest expiry: A (3 days) before B (10).
	if result.Details[0].CustomerID != "a" || result.Details[1].CustomerID != "b" {
		t.Fatalf("unexpected detail order: %+v", result.Details)
	}
	// B's 20-day secret is outside the window; only one secret counts.
	if result.Details[1].SecretsCount != 1 {
		t.Fatalf("expected customer B to have 1 qualifying secret, got %d", result.Details[1].SecretsCount)
	}
	if f.dispatcher.callCount() != 2 {
		t.Fatalf("expected 2 deliveries, got %d", f.dispatcher.callCount())
	}
}

func TestRunOnce_DeliveryFailureIsIndependent(t *testing.T) {
	f := newFixture(1)
	f.addCustomer(t, "a", "Customer A", "https://hooks.example.com/a")
	f.addCustomer(t, "b", "Customer B", "https://hooks.example.com/b")
	f.addSecret(t, "s1", "cert A", "a", 2)
	f.addSecret(t, "s2", "cert B", "b", 5)
	f.dispatcher.failURLs["https://hooks.example.com/a"] = true

	result, err := f.notifier.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Details) != 2 {
		t.Fatalf("expected both customers in details, got %d", len(result.Details))
	}
	if result.NotificationsSent != 1 {
		t.Fatalf("expected notificationsSent=1, got %d", result.NotificationsSent)
	}
	if result.Details[0].Success {
		t.Fatal("expected customer A delivery to be recorded as failed")
	}
	if !result.Details[1].Success {
		t.Fatal("expected customer B delivery to succeed despite A's failure")
	}
}

func TestRunOnce_RepositoryFailureAbortsRun(t *testing.T) {
	f := newFixture(1)
	f.addCustomer(t, "a", "Customer A", "https://hooks.example.com/a")
	f.addSecret(t, "s1", "cert A", "a", 2)
	f.secrets.FindExpiringErr = errors.New("connection refused")

	result, err := f.notifier.RunOnce(context.Background(), now)
	if err == nil {
		t.Fatal("expected error on repository failure")
	}
	if result != nil {
		t.Fatalf("expected no partial RunResult, got %+v", result)
	}
	if f.dispatcher.callCount() != 0 {
		t.Fatalf("dispatcher must not be called on repository failure, got %d calls", f.dispatcher.callCount())
	}
}

func TestRunOnce_NoExpiringSecrets(t *testing.T) {
	f := newFixture(1)
	f.addCustomer(t, "a", "Customer A", "https://hooks.example.com/a")
	f.addSecret(t, "s1", "far future", "a", 60)

	result, err := f.notifier.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCustomers != 0 || result.NotificationsSent != 0 {
		t.Fatalf("expected empty run, got %+v", result)
	}
	if f.dispatcher.callCount() != 0 {
		t.Fatal("no deliveries expected for an empty window")
	}
}

// The rendered card must list a customer's secrets in repository order
// (ascending expiry), one fact per qualifying secret.
func TestRunOnce_CardContent(t *testing.T) {
	f := newFixture(1)
	f.addCustomer(t, "a", "Customer A", "https://hooks.example.com/a")
	f.addSecret(t, "s2", "later", "a", 9)
	f.addSecret(t, "s1", "sooner", "a", 4)

	if _, err := f.notifier.RunOnce(context.Background(), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.dispatcher.callCount() != 1 {
		t.Fatalf("expected 1 delivery, got %d", f.dispatcher.callCount())
	}
	msg := f.dispatcher.calls[0].msg
	facts := msg.Sections[0].Facts
	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(facts))
	}
	if facts[0].Name != "sooner" || facts[1].Name != "later" {
		t.Fatalf("facts not in ascending-expiry order: %+v", facts)
	}
}

func TestRunOnce_ConcurrentDeliveriesAllCollected(t *testing.T) {
	f := newFixture(4)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("cust-%02d", i)
		f.addCustomer(t, id, "Customer "+id, "https://hooks.example.com/"+id)
		f.addSecret(t, "s-"+id, "cert "+id, id, 1+i%14)
	}

	result, err := f.notifier.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCustomers != 20 {
		t.Fatalf("expected 20 customers, got %d", result.TotalCustomers)
	}
	if result.NotificationsSent != 20 {
		t.Fatalf("expected every delivery collected before finishing, got %d", result.NotificationsSent)
	}
	for _, d := range result.Details {
		if d.CustomerID == "" {
			t.Fatal("found an unfilled detail slot: the run finished before all deliveries resolved")
		}
	}
}

func TestPreview_IsIdempotentAndSideEffectFree(t *testing.T) {
	f := newFixture(1)
	f.addCustomer(t, "a", "Customer A", "https://hooks.example.com/a")
	f.addSecret(t, "s1", "cert", "a", 3)
	f.addSecret(t, "s2", "other", "a", 25)

	first, err := f.notifier.Preview(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.notifier.Preview(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != 1 || first[0].ID != "s1" {
		t.Fatalf("expected only the in-window secret, got %+v", first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("preview must be idempotent with no intervening mutation")
	}
	if f.dispatcher.callCount() != 0 {
		t.Fatalf("preview must never trigger a delivery, got %d calls", f.dispatcher.callCount())
	}
}
